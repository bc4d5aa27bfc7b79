// Package session wires the full capture pipeline: input device ->
// capture queue -> session recorder -> playback queue -> output sink.
// Start returns the recorder handle, which doubles as the shared
// control surface UI callers poll and command through.
package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/miditape/miditape/internal/eventq"
	"github.com/miditape/miditape/internal/logger"
	"github.com/miditape/miditape/internal/pipeline"
	"github.com/miditape/miditape/internal/playback"
	"github.com/miditape/miditape/internal/recorder"
	"github.com/miditape/miditape/sdk/contracts"
	"github.com/miditape/miditape/sdk/midi"
)

// eventBuffer sizes the channel between the transport callback and the
// capture stage. The transport drops events rather than block when the
// capture stage falls this far behind.
const eventBuffer = 256

// Config collects everything Start needs. The zero value selects the
// first input device, the default idle timeout, and a null sink.
type Config struct {
	// Device is the input device index used when DeviceName is empty.
	Device int
	// DeviceName selects the first input device whose name contains
	// this string, case-insensitive. Overrides Device when non-empty.
	DeviceName string
	// IdleTimeout is the session boundary threshold in seconds;
	// <= 0 means recorder.DefaultIdleTimeout.
	IdleTimeout float64
	// CaptureRoute tags events as they enter the pipeline.
	CaptureRoute contracts.Route
	// Sink receives the live-monitoring stream. Nil means discard.
	Sink contracts.Sink
	// Logger defaults to the zap-backed logger.
	Logger contracts.Logger
	// ClientOptions are forwarded to the MIDI input client.
	ClientOptions []contracts.Option
}

// Session owns the three pipeline goroutines and their shared quit flag.
type Session struct {
	rec    *recorder.Recorder
	client contracts.ClientMIDI
	sink   contracts.Sink
	logger contracts.Logger
	quit   atomic.Bool
	wg     sync.WaitGroup
}

// Start opens the input device, builds the queues and recorder, and
// launches the capture, monitor, and playback goroutines. Any failure
// here is fatal to the caller: there is no pipeline without an input.
func Start(cfg Config) (*Session, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewZapLogger()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = playback.NullSink{}
	}
	if cfg.CaptureRoute == contracts.RouteNone {
		cfg.CaptureRoute = contracts.RouteBoth
	}

	opts := append([]contracts.Option{contracts.WithLogger(log)}, cfg.ClientOptions...)
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create MIDI client: %w", err)
	}

	devices, err := client.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("discover input devices: %w", err)
	}
	deviceID, err := pickDevice(devices, cfg.Device, cfg.DeviceName)
	if err != nil {
		return nil, err
	}
	if err := client.SelectDevice(deviceID); err != nil {
		return nil, fmt.Errorf("open input device %d: %w", deviceID, err)
	}

	captureQ := eventq.New[contracts.Event]()
	playbackQ := eventq.New[contracts.Event]()
	rec := recorder.New(cfg.IdleTimeout, playbackQ, devices[deviceID].Name, log)

	s := &Session{
		rec:    rec,
		client: client,
		sink:   sink,
		logger: log,
	}

	events := make(chan contracts.MIDI, eventBuffer)
	client.StartCapture(events)

	pipeline.Spawn(&s.wg, func() {
		pipeline.RunCapture(events, captureQ, cfg.CaptureRoute, &s.quit)
	})
	pipeline.Spawn(&s.wg, func() {
		pipeline.RunMonitor(captureQ, rec, &s.quit)
	})
	pipeline.Spawn(&s.wg, func() {
		pipeline.RunPlayback(playbackQ, sink, log, &s.quit)
	})

	log.Info("session pipeline started",
		log.Field().String("device", devices[deviceID].Name),
		log.Field().Float64("idleTimeout", rec.IdleTimeout()))
	return s, nil
}

// Recorder returns the shared control surface handle. Safe to use from
// any goroutine; every operation takes the recorder's own lock.
func (s *Session) Recorder() *recorder.Recorder {
	return s.rec
}

// Stop signals the quit flag, stops the transport, waits for the stage
// goroutines, and closes the sink. Events still sitting in the queues
// when the flag flips are dropped, which is acceptable for a
// best-effort monitoring path.
func (s *Session) Stop() error {
	s.quit.Store(true)
	err := s.client.Stop()
	s.wg.Wait()
	if cerr := s.sink.Close(); err == nil {
		err = cerr
	}
	s.logger.Info("session pipeline stopped",
		s.logger.Field().Int("recordings", s.rec.Len()))
	return err
}

// pickDevice resolves the configured device selection against the
// discovered list: name substring match first, index otherwise.
func pickDevice(devices []contracts.DeviceInfo, index int, name string) (int, error) {
	if len(devices) == 0 {
		return 0, fmt.Errorf("no MIDI input devices available")
	}
	if name != "" {
		lower := strings.ToLower(name)
		for i, d := range devices {
			if strings.Contains(strings.ToLower(d.Name), lower) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no MIDI input device matching %q", name)
	}
	if index < 0 || index >= len(devices) {
		return 0, fmt.Errorf("input device index %d out of range (have %d devices)", index, len(devices))
	}
	return index, nil
}
