package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miditape/miditape/internal/playback"
	"github.com/miditape/miditape/sdk/contracts"
	"github.com/miditape/miditape/sdk/midi"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input devices and output ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := midi.NewMIDIClient(contracts.WithLogger(log))
		if err != nil {
			return err
		}
		defer client.Stop()

		devices, err := client.ListDevices()
		if err != nil {
			return fmt.Errorf("no MIDI input devices: %w", err)
		}
		fmt.Println("Input devices:")
		for i, d := range devices {
			if d.Manufacturer != "" {
				fmt.Printf("  [%d] %s (%s)\n", i, d.Name, d.Manufacturer)
			} else {
				fmt.Printf("  [%d] %s\n", i, d.Name)
			}
		}

		fmt.Println("Output ports:")
		outs := playback.OutPortNames()
		if len(outs) == 0 {
			fmt.Println("  (none)")
		}
		for i, name := range outs {
			fmt.Printf("  [%d] %s\n", i, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
