package zusi

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/giako888/trainbridge/pkgs/state"
)

// fakeServer answers the handshake like a real Zusi3 and then hands the
// connection to feed for test-driven telemetry.
func fakeServer(t *testing.T, version string, feed func(conn net.Conn)) (host string, port uint16) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %s", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := ReadMessage(conn); err != nil {
			return
		}
		_ = WriteMessage(conn, &Node{
			ID: MsgConnecting,
			Children: []*Node{{
				ID: CmdAckHello,
				Attributes: []Attribute{
					StringAttribute(1, version),
					StringAttribute(3, "Fahrplan info"),
				},
			}},
		})

		if _, err := ReadMessage(conn); err != nil {
			return
		}
		_ = WriteMessage(conn, &Node{
			ID:       MsgFahrpult,
			Children: []*Node{{ID: CmdAckNeededData}},
		})

		if feed != nil {
			feed(conn)
		} else {
			time.Sleep(100 * time.Millisecond)
		}
	}()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(portStr)
	return "127.0.0.1", uint16(p)
}

func TestHandshake(t *testing.T) {
	host, port := fakeServer(t, "3.5.0.0", nil)

	client := NewClient(host, port)
	if err := client.Connect("test", nil); err != nil {
		t.Fatalf("connect: %s", err)
	}
	defer client.Close()

	if client.Phase() != PhaseRunning {
		t.Errorf("phase = %s, want running", client.Phase())
	}
	if client.ServerVersion() != "3.5.0.0" {
		t.Errorf("server version = %q, want 3.5.0.0", client.ServerVersion())
	}
	if client.ConnectionInfo() != "Fahrplan info" {
		t.Errorf("connection info = %q", client.ConnectionInfo())
	}
}

func TestReceiveLoopDispatchesUpdates(t *testing.T) {
	ftd := &Node{
		ID: CmdDataFtd,
		Children: []*Node{{
			ID: uint16(FsStatusTueren),
			Attributes: []Attribute{
				{ID: 2, Payload: []byte{2}}, // left open
				{ID: 3, Payload: []byte{0}},
			},
		}},
	}
	msg := &Node{ID: MsgFahrpult, Children: []*Node{ftd}}

	host, port := fakeServer(t, "3.5.0.0", func(conn net.Conn) {
		_ = WriteMessage(conn, msg)
		time.Sleep(300 * time.Millisecond)
	})

	client := NewClient(host, port)
	updates := make(chan struct{}, 4)
	client.OnStateUpdate = func(st state.TrainState) {
		if st.DoorsLeft == state.DoorOpen {
			updates <- struct{}{}
		}
	}
	if err := client.Connect("test", nil); err != nil {
		t.Fatalf("connect: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Run(ctx) }()

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no state update received")
	}
	cancel()
}
