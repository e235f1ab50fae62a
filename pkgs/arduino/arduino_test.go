package arduino

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/giako888/trainbridge/pkgs/rules"
)

// fakePort records written bytes and can simulate a dead port.
type fakePort struct {
	written strings.Builder
	dead    bool
	closed  bool
}

func (f *fakePort) Write(p []byte) (int, error) {
	if f.dead {
		return 0, errors.New("input/output error")
	}
	f.written.Write(p)
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error)                         { return 0, nil }
func (f *fakePort) Close() error                                       { f.closed = true; return nil }
func (f *fakePort) SetMode(mode *serial.Mode) error                    { return nil }
func (f *fakePort) Drain() error                                       { return nil }
func (f *fakePort) ResetInputBuffer() error                            { return nil }
func (f *fakePort) ResetOutputBuffer() error                           { return nil }
func (f *fakePort) SetDTR(dtr bool) error                              { return nil }
func (f *fakePort) SetRTS(rts bool) error                              { return nil }
func (f *fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (f *fakePort) SetReadTimeout(t time.Duration) error               { return nil }
func (f *fakePort) Break(d time.Duration) error                        { return nil }

func newTestTransport(port serial.Port) *Transport {
	t := NewTransport("fake")
	t.port = port
	t.connected = true
	return t
}

func lines(f *fakePort) []string {
	s := strings.TrimSuffix(f.written.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestApplySendsOnlyChanges(t *testing.T) {
	port := &fakePort{}
	tr := newTestTransport(port)

	// Open normalizes the panel with OFF in production; mirror that here so
	// the cache starts from a known state
	if err := tr.AllOff(); err != nil {
		t.Fatalf("AllOff: %s", err)
	}
	port.written.Reset()

	var m rules.LampMap
	m[0] = true  // LED1
	m[11] = true // LED12
	tr.Apply(m)

	got := lines(port)
	want := []string{"LED:1:1", "LED:12:1"}
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	// identical map: zero bytes on the wire
	before := port.written.Len()
	tr.Apply(m)
	if port.written.Len() != before {
		t.Errorf("duplicate apply wrote %d extra bytes", port.written.Len()-before)
	}

	// one lamp off: exactly one line
	m[0] = false
	tr.Apply(m)
	got = lines(port)
	if last := got[len(got)-1]; last != "LED:1:0" {
		t.Errorf("last line = %q, want LED:1:0", last)
	}
	if len(got) != 3 {
		t.Errorf("total lines = %d, want 3", len(got))
	}
}

func TestAllOffNormalizesCache(t *testing.T) {
	port := &fakePort{}
	tr := newTestTransport(port)

	if err := tr.AllOff(); err != nil {
		t.Fatalf("AllOff: %s", err)
	}
	if got := lines(port); len(got) != 1 || got[0] != "OFF" {
		t.Fatalf("lines = %v, want [OFF]", got)
	}

	// after OFF every lamp is cached as off: an all-off map writes nothing
	before := port.written.Len()
	tr.Apply(rules.LampMap{})
	if port.written.Len() != before {
		t.Error("apply of an all-off map after OFF should write nothing")
	}
}

func TestWriteFailureDropsConnection(t *testing.T) {
	port := &fakePort{dead: true}
	tr := newTestTransport(port)

	var m rules.LampMap
	m[0] = true
	tr.Apply(m)

	if tr.Connected() {
		t.Error("transport should be disconnected after a write failure")
	}
	if !port.closed {
		t.Error("dead port should have been closed")
	}

	// lamp state keeps flowing without a port; Apply is a no-op, not a panic
	tr.Apply(m)
}

func TestCloseSendsFinalOff(t *testing.T) {
	port := &fakePort{}
	tr := newTestTransport(port)

	var m rules.LampMap
	m[3] = true
	tr.Apply(m)

	tr.Close()
	got := lines(port)
	if got[len(got)-1] != "OFF" {
		t.Errorf("last line = %q, want OFF", got[len(got)-1])
	}
	if !port.closed {
		t.Error("port should be closed")
	}
	if tr.Connected() {
		t.Error("transport should report disconnected")
	}
}
