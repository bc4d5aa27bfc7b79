//go:build darwin
// +build darwin

// Package mididarwin implements the MIDI input client on macOS via CoreMIDI.
package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youpy/go-coremidi"

	"github.com/miditape/miditape/sdk/contracts"
)

var (
	ErrNoMIDIDevices        = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice    = errors.New("invalid MIDI device")
	ErrMIDIConnectionError  = errors.New("error connecting to MIDI device")
	ErrCreateInputPort      = errors.New("error creating input port")
	ErrIncompleteMIDIPacket = errors.New("incomplete MIDI packet")
)

// portConnection is the disconnect handle CoreMIDI gives us back.
type portConnection interface {
	Disconnect()
}

// Client manages MIDI capture on Darwin. CoreMIDI delivers packets on
// its own thread; the event channel is stored atomically so the
// delivery callback never takes the client mutex.
type Client struct {
	logger       contracts.Logger
	eventChannel atomic.Value
	client       coremidi.Client
	inputPort    coremidi.InputPort
	portConn     portConnection
	filter       *contracts.MIDIEventFilter
	config       *contracts.CoreMIDIConfig
	mu           sync.Mutex
	capturing    bool
	wg           sync.WaitGroup
	stopOnce     sync.Once
}

// NewMIDIClient creates the CoreMIDI-backed input client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("CoreMIDI client created")
	return &Client{
		logger: options.Logger,
		client: client,
		filter: options.MIDIEventFilter,
		config: options.CoreMIDIConfig,
	}, nil
}

// ListDevices returns the available MIDI sources. An empty list is an
// error: the pipeline has no degraded capture-less mode.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		c.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects the input port to the source at deviceID,
// disconnecting any previous source first.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		c.logger.Error(ErrInvalidMIDIDevice.Error())
		return ErrInvalidMIDIDevice
	}

	if c.portConn != nil {
		c.portConn.Disconnect()
		c.portConn = nil
	}

	source := sources[deviceID]
	c.inputPort, err = coremidi.NewInputPort(c.client, "Input Port", c.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}
	c.portConn, err = c.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	c.logger.Info("MIDI device connected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", source.Name()))
	return nil
}

// handlePacket runs on the CoreMIDI delivery thread. Short messages
// become events; anything shorter than three bytes is dropped with a
// warning. Delivery into a full channel drops the event rather than
// blocking the CoreMIDI thread.
func (c *Client) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	c.wg.Add(1)
	defer c.wg.Done()

	eventChannel, _ := c.eventChannel.Load().(chan contracts.MIDI)
	if eventChannel == nil {
		return
	}
	if len(packet.Data) < 3 {
		c.logger.Warn(ErrIncompleteMIDIPacket.Error())
		return
	}

	event := contracts.MIDI{
		Timestamp: uint64(time.Now().UTC().UnixNano()),
		Command:   packet.Data[0],
		Note:      packet.Data[1],
		Velocity:  packet.Data[2],
	}
	if c.filter != nil && !commandAllowed(event.Command, c.filter.Commands) {
		return
	}
	select {
	case eventChannel <- event:
	default:
		c.logger.Warn("event buffer full; dropping MIDI event")
	}
}

// commandAllowed matches the status byte against the filter, ignoring
// the channel nibble.
func commandAllowed(command byte, allowed []contracts.MIDICommand) bool {
	for _, a := range allowed {
		if command&0xF0 == byte(a) {
			return true
		}
	}
	return false
}

// StartCapture publishes the event channel so the delivery callback
// starts forwarding packets.
func (c *Client) StartCapture(eventChannel chan contracts.MIDI) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eventChannel == nil {
		c.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	if c.capturing {
		c.logger.Warn("capture already started")
		return
	}
	c.logger.Info("starting MIDI event capture")
	c.eventChannel.Store(eventChannel)
	c.capturing = true
}

// Stop disconnects the source and waits for in-flight deliveries to
// drain. Safe to call more than once.
func (c *Client) Stop() error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if !c.capturing {
			return
		}
		c.capturing = false
		if c.portConn != nil {
			c.portConn.Disconnect()
			c.portConn = nil
		}
		// Swap in an unused channel so late deliveries have nowhere to go.
		c.eventChannel.Store(make(chan contracts.MIDI))
		c.logger.Info("MIDI capture stopped")
		c.wg.Wait()
	})
	return nil
}
