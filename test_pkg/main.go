// Standalone fake Zusi3 server for manual bridge testing without the
// simulator. It accepts Fahrpult clients, answers the HELLO / NEEDED_DATA
// handshake and then streams synthetic telemetry: a speed ramp, a SIFA light
// that is lit three seconds in every ten and a door cycle.
//
// Usage:
//
//	go run ./test_pkg &
//	trainbridge run --source zusi3 --zusi-host 127.0.0.1 --zusi-port 1436
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"os"
	"time"

	"github.com/giako888/trainbridge/pkgs/zusi"
)

func main() {
	addr := "127.0.0.1:1436"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("fake Zusi3 listening on %s\n", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			fmt.Fprintf(os.Stderr, "accept: %s\n", err)
			continue
		}
		go serve(conn)
	}
}

func serve(conn net.Conn) {
	defer conn.Close()
	fmt.Printf("client %s connected\n", conn.RemoteAddr())

	// HELLO -> ACK_HELLO
	if _, err := zusi.ReadMessage(conn); err != nil {
		fmt.Fprintf(os.Stderr, "hello: %s\n", err)
		return
	}
	ack := &zusi.Node{
		ID: zusi.MsgConnecting,
		Children: []*zusi.Node{{
			ID: zusi.CmdAckHello,
			Attributes: []zusi.Attribute{
				zusi.StringAttribute(1, "3.5.0.0"),
				zusi.StringAttribute(2, "0"),
				zusi.StringAttribute(3, "Fake Zusi"),
			},
		}},
	}
	if err := zusi.WriteMessage(conn, ack); err != nil {
		return
	}

	// NEEDED_DATA -> ACK_NEEDED_DATA
	if _, err := zusi.ReadMessage(conn); err != nil {
		fmt.Fprintf(os.Stderr, "needed_data: %s\n", err)
		return
	}
	ackNeeded := &zusi.Node{
		ID:       zusi.MsgFahrpult,
		Children: []*zusi.Node{{ID: zusi.CmdAckNeededData}},
	}
	if err := zusi.WriteMessage(conn, ackNeeded); err != nil {
		return
	}

	// telemetry loop at 5 Hz
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()

	for range ticker.C {
		elapsed := time.Since(start).Seconds()

		// speed ramps 0..160 km/h and back over two minutes
		speedKMH := 80 * (1 - math.Cos(elapsed*math.Pi/60))
		doorsOpen := int(elapsed)%30 < 5
		sifaBlink := int(elapsed)%10 < 3

		msg := dataFtd(speedKMH/3.6, doorsOpen, sifaBlink)
		if err := zusi.WriteMessage(conn, msg); err != nil {
			fmt.Printf("client %s gone\n", conn.RemoteAddr())
			return
		}
	}
}

func dataFtd(speedMS float64, doorsOpen, sifaLicht bool) *zusi.Node {
	ftd := &zusi.Node{ID: zusi.CmdDataFtd}
	ftd.Attributes = append(ftd.Attributes, f32Attr(uint16(zusi.FsGeschwindigkeit), float32(speedMS)))

	sifa := &zusi.Node{ID: uint16(zusi.FsSifa)}
	sifa.Attributes = append(sifa.Attributes, zusi.Attribute{ID: 2, Payload: []byte{boolByte(sifaLicht)}})
	ftd.Children = append(ftd.Children, sifa)

	doors := &zusi.Node{ID: uint16(zusi.FsStatusTueren)}
	doorState := byte(0)
	if doorsOpen {
		doorState = 2
	}
	doors.Attributes = append(doors.Attributes,
		zusi.Attribute{ID: 2, Payload: []byte{doorState}},
		zusi.Attribute{ID: 3, Payload: []byte{0}},
	)
	ftd.Children = append(ftd.Children, doors)

	return &zusi.Node{ID: zusi.MsgFahrpult, Children: []*zusi.Node{ftd}}
}

func f32Attr(id uint16, v float32) zusi.Attribute {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, math.Float32bits(v))
	return zusi.Attribute{ID: id, Payload: p}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
