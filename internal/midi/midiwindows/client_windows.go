//go:build windows
// +build windows

// Package midiwindows implements the MIDI input client on Windows via winmm.
package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/miditape/miditape/sdk/contracts"
)

// HMIDIIN is the winmm MIDI input device handle.
type HMIDIIN windows.Handle

const (
	callbackFunction = 0x00030000 // dwCallback is a function pointer
	midiIOStatus     = 0x00000020
)

// winmm window messages delivered to the input callback.
const (
	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

// midiInCaps mirrors MIDIINCAPSW.
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Client manages MIDI capture on Windows.
type Client struct {
	logger       contracts.Logger
	eventChannel atomic.Value
	handle       HMIDIIN
	connected    bool
	mu           sync.Mutex
	callback     uintptr
	filter       *contracts.MIDIEventFilter
}

// NewMIDIClient creates the winmm-backed input client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("winmm MIDI client created")
	return &Client{
		logger: options.Logger,
		filter: options.MIDIEventFilter,
	}, nil
}

// ListDevices enumerates winmm input devices. Zero devices is an error.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		c.logger.Warn("no MIDI devices found")
		return nil, errors.New("no MIDI devices found")
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			c.logger.Warn("failed to query MIDI device",
				c.logger.Field().Int("deviceID", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// SelectDevice opens the input device at deviceID with our callback,
// closing any previously opened device first.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		if err := c.closeDevice(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	c.callback = windows.NewCallback(midiInCallback)
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&c.handle)),
		uintptr(deviceID),
		c.callback,
		uintptr(unsafe.Pointer(c)),
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	c.connected = true
	c.logger.Info("MIDI device connected",
		c.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture publishes the event channel and starts the winmm stream.
func (c *Client) StartCapture(eventChannel chan contracts.MIDI) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		c.logger.Error("cannot start capture: no MIDI device selected")
		return
	}
	if _, ok := c.eventChannel.Load().(chan contracts.MIDI); ok {
		c.logger.Warn("capture already started")
		return
	}
	c.eventChannel.Store(eventChannel)

	r1, _, err := procMidiInStart.Call(uintptr(c.handle))
	if r1 != 0 {
		c.logger.Error("failed to start MIDI capture",
			c.logger.Field().Error("error", err))
		return
	}
	c.logger.Info("MIDI capture started")
}

// midiInCallback runs on the winmm callback thread. dwInstance is the
// *Client registered in SelectDevice; dwParam1 packs status and data
// bytes of a short message.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	c := (*Client)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case mimOpen:
		c.logger.Info("MIDI device opened")
	case mimClose:
		c.logger.Info("MIDI device closed")
	case mimData:
		event := contracts.MIDI{
			Timestamp: uint64(time.Now().UTC().UnixNano()),
			Command:   byte(dwParam1 & 0xFF),
			Note:      byte((dwParam1 >> 8) & 0xFF),
			Velocity:  byte((dwParam1 >> 16) & 0xFF),
		}
		if c.filter != nil && !commandAllowed(event.Command, c.filter.Commands) {
			return 0
		}
		if ch, ok := c.eventChannel.Load().(chan contracts.MIDI); ok && ch != nil {
			select {
			case ch <- event:
			default:
				c.logger.Warn("event buffer full; dropping MIDI event")
			}
		}
	case mimError, mimLongError:
		c.logger.Error("MIDI input error",
			c.logger.Field().Uint64("msg", uint64(wMsg)))
	case mimMoreData:
		// Driver backlog notification; the next mimData carries the event.
	}
	return 0
}

func commandAllowed(command byte, allowed []contracts.MIDICommand) bool {
	for _, a := range allowed {
		if command&0xF0 == byte(a) {
			return true
		}
	}
	return false
}

// Stop halts capture and closes the device. Safe to call when nothing
// is connected.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	if err := c.closeDevice(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	c.logger.Info("MIDI capture stopped and device closed")
	return nil
}

func (c *Client) closeDevice() error {
	if c.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}
	if r1, _, err := procMidiInStop.Call(uintptr(c.handle)); r1 != 0 {
		return err
	}
	if r1, _, err := procMidiInClose.Call(uintptr(c.handle)); r1 != 0 {
		return err
	}
	c.connected = false
	c.handle = 0
	c.eventChannel.Store((chan contracts.MIDI)(nil))
	return nil
}
