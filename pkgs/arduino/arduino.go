// Package arduino drives the MFA lamp panel over the Leonardo's USB serial
// port. The line protocol is fire-and-forget ASCII: "LED:<n>:<0|1>\n" per
// lamp and "OFF\n" to extinguish everything; the sketch never answers.
//
// A last-sent cache suppresses duplicate lines so the panel only sees real
// changes. Write failures mark the port disconnected and a background loop
// reopens it with exponential backoff.
package arduino

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/rules"
)

const (
	baudRate = 115200

	backoffStart = time.Second
	backoffMax   = 16 * time.Second
)

// leonardoIDs lists the USB VID/PID pairs auto-detection accepts. Genuine
// Leonardo boards and the common bootloader/CDC variants.
var leonardoIDs = []struct{ vid, pid string }{
	{"2341", "8036"},
	{"2341", "0036"},
	{"2341", "8037"},
	{"2A03", "8036"},
}

// DetectPort scans the USB serial ports for a known Leonardo and returns its
// device name.
func DetectPort() (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fault.Wrap(fault.SerialIO, err, "cannot enumerate serial ports")
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		for _, id := range leonardoIDs {
			if strings.EqualFold(p.VID, id.vid) && strings.EqualFold(p.PID, id.pid) {
				logrus.Infof("Detected Arduino Leonardo on %s (VID=%s PID=%s)", p.Name, p.VID, p.PID)
				return p.Name, nil
			}
		}
	}
	return "", fault.New(fault.SerialIO, "no Arduino Leonardo found on any USB serial port")
}

// lampState is the per-lamp cache value; unknown until first send.
type lampState int8

const (
	lampUnknown lampState = -1
	lampOff     lampState = 0
	lampOn      lampState = 1
)

// NewTransport constructor. portName "auto" (or "") enables USB detection on
// every (re)connect; anything else is used verbatim.
func NewTransport(portName string) *Transport {
	t := &Transport{portName: portName, backoff: backoffStart}
	t.resetCache()
	return t
}

// Transport owns the serial handle exclusively.
type Transport struct {
	portName string

	// OnReconnect is called after every successful (re)open. Used for
	// metrics; may be nil.
	OnReconnect func()

	mu        sync.Mutex
	port      serial.Port
	cache     [rules.NumLamps]lampState
	backoff   time.Duration
	connected bool
}

// Connected reports whether the port is currently open.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *Transport) resetCache() {
	for i := range t.cache {
		t.cache[i] = lampUnknown
	}
}

// Open opens the serial port and normalizes the panel with one OFF.
func (t *Transport) Open() error {
	name := t.portName
	if name == "" || name == "auto" {
		detected, err := DetectPort()
		if err != nil {
			return err
		}
		name = detected
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return fault.Wrap(fault.SerialIO, err, "cannot open serial port %q", name)
	}

	t.mu.Lock()
	t.port = port
	t.connected = true
	t.backoff = backoffStart
	t.resetCache()
	t.mu.Unlock()

	logrus.Infof("Arduino connected on %s", name)
	return t.AllOff()
}

// Apply sends the difference between the desired lamp map and the last-sent
// state. Identical maps produce zero bytes on the wire.
func (t *Transport) Apply(m rules.LampMap) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return
	}
	for i, lit := range m {
		want := lampOff
		if lit {
			want = lampOn
		}
		if t.cache[i] == want {
			continue
		}
		if err := t.writeLine(fmt.Sprintf("LED:%d:%d\n", i+1, want)); err != nil {
			t.dropLocked(err)
			return
		}
		t.cache[i] = want
	}
}

// AllOff extinguishes the whole panel.
func (t *Transport) AllOff() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return fault.New(fault.SerialIO, "serial port not connected")
	}
	if err := t.writeLine("OFF\n"); err != nil {
		t.dropLocked(err)
		return err
	}
	for i := range t.cache {
		t.cache[i] = lampOff
	}
	return nil
}

// writeLine must be called with the mutex held.
func (t *Transport) writeLine(line string) error {
	_, err := t.port.Write([]byte(line))
	return fault.Wrap(fault.SerialIO, err, "serial write failed")
}

// dropLocked marks the port dead and discards the cache; must be called with
// the mutex held.
func (t *Transport) dropLocked(err error) {
	logrus.Errorf("arduino: %s", err)
	_ = t.port.Close()
	t.port = nil
	t.connected = false
	t.resetCache()
}

// Run keeps the port open: whenever it is down, it retries with exponential
// backoff (1 s doubling to 16 s). Returns when ctx is cancelled.
func (t *Transport) Run(ctx context.Context) {
	for {
		t.mu.Lock()
		connected := t.connected
		wait := t.backoff
		t.mu.Unlock()

		if connected {
			wait = time.Second
		} else {
			if err := t.Open(); err != nil {
				logrus.Debugf("arduino reconnect failed: %s", err)
				t.mu.Lock()
				wait = t.backoff
				t.backoff *= 2
				if t.backoff > backoffMax {
					t.backoff = backoffMax
				}
				t.mu.Unlock()
			} else {
				if t.OnReconnect != nil {
					t.OnReconnect()
				}
				continue
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// Close sends a final OFF and releases the port.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		_, _ = t.port.Write([]byte("OFF\n"))
		_ = t.port.Close()
		t.port = nil
	}
	t.connected = false
	t.resetCache()
}
