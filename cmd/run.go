package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/miditape/miditape/internal/playback"
	"github.com/miditape/miditape/sdk/contracts"
	"github.com/miditape/miditape/sdk/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the capture pipeline until interrupted",
	Long: `Open the configured MIDI input device, start the capture, recorder,
and playback stages, and run until Ctrl+C. With output enabled the live
stream is mirrored to a MIDI out port as it is played.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := startSession()
		if err != nil {
			return err
		}

		fmt.Printf("Capturing from %q. Press Ctrl+C to stop.\n", s.Recorder().InputPortName())
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		rec := s.Recorder()
		count := rec.Len()
		fmt.Printf("Stopping. %d recording(s) captured.\n", count)
		for i := 0; i < count; i++ {
			r := rec.Recording(i)
			var length float64
			if last, ok := r.Last(); ok {
				length = last.Elapsed
			}
			fmt.Printf("  #%d: %d events, %.1fs\n", i+1, r.Len(), length)
		}
		return s.Stop()
	},
}

// startSession builds the sink from config and starts the pipeline.
// Shared by run and monitor.
func startSession() (*session.Session, error) {
	var sink contracts.Sink
	if cfg.Output.Enabled {
		ps, err := playback.OpenPortSink(cfg.Output.Port, uint8(cfg.Output.Channel), log)
		if err != nil {
			return nil, fmt.Errorf("output path failed to initialize: %w", err)
		}
		sink = ps
	}
	return session.Start(session.Config{
		Device:       cfg.Input.Device,
		DeviceName:   cfg.Input.Name,
		IdleTimeout:  cfg.Recorder.IdleTimeout,
		CaptureRoute: contracts.ParseRoute(cfg.Recorder.Route),
		Sink:         sink,
		Logger:       log,
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
}
