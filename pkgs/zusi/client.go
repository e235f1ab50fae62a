package zusi

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giako888/trainbridge/pkgs/fault"
	"github.com/giako888/trainbridge/pkgs/state"
)

// Phase is the client connection state.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseHelloSent
	PhaseNeededSent
	PhaseRunning
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseHelloSent:
		return "hello-sent"
	case PhaseNeededSent:
		return "needed-sent"
	case PhaseRunning:
		return "running"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

const (
	connectTimeout = 10 * time.Second
	readTimeout    = time.Second

	protocolVersion = 2
	clientFahrpult  = 2
	clientVersion   = "1.0"
)

// NewClient constructor.
func NewClient(host string, port uint16) *Client {
	return &Client{host: host, port: port}
}

// Client is the Zusi3 Fahrpult client. It owns the TCP connection; the
// receive loop decodes DATA_FTD messages into a TrainState snapshot and
// invokes OnStateUpdate after each message that modified state.
type Client struct {
	host string
	port uint16

	// OnStateUpdate receives a copy of the train state after every DATA_FTD
	// message that changed it. Set before Connect.
	OnStateUpdate func(state.TrainState)

	mu      sync.Mutex
	conn    net.Conn
	phase   Phase
	lastErr error
	st      state.TrainState

	serverVersion  string
	connectionInfo string
}

// Phase returns the current connection phase.
func (c *Client) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Connected reports whether the receive loop is up.
func (c *Client) Connected() bool {
	return c.Phase() == PhaseRunning
}

// LastError returns the error that moved the client out of running, if any.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ServerVersion returns the version string reported in ACK_HELLO.
func (c *Client) ServerVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverVersion
}

// ConnectionInfo returns the connection info string reported in ACK_HELLO.
func (c *Client) ConnectionInfo() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionInfo
}

// State returns a copy of the current train state.
func (c *Client) State() state.TrainState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

func (c *Client) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	logrus.Debugf("zusi3 client: %s", p)
}

// Connect performs the HELLO / NEEDED_DATA handshake and leaves the
// connection ready for Run. fsData nil subscribes the default set.
func (c *Client) Connect(clientName string, fsData []FsData) error {
	c.setPhase(PhaseConnecting)

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		c.fail(fault.Wrap(fault.TransportClosed, err, "cannot connect to Zusi3 at %s", addr))
		return c.LastError()
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// === HELLO ===
	if err := WriteMessage(conn, helloMessage(clientName)); err != nil {
		c.fail(err)
		return c.LastError()
	}
	c.setPhase(PhaseHelloSent)

	_ = conn.SetReadDeadline(time.Now().Add(connectTimeout))
	ack, err := ReadMessage(conn)
	if err != nil {
		c.fail(err)
		return c.LastError()
	}
	version, info, ok := parseAckHello(ack)
	if !ok {
		c.fail(fault.New(fault.ProtocolViolation, "invalid ACK_HELLO"))
		return c.LastError()
	}
	c.mu.Lock()
	c.serverVersion = version
	c.connectionInfo = info
	c.mu.Unlock()
	logrus.Infof("Connected to Zusi3 %s", version)

	// === NEEDED_DATA ===
	if fsData == nil {
		fsData = DefaultSubscription()
	}
	if err := WriteMessage(conn, neededDataMessage(fsData)); err != nil {
		c.fail(err)
		return c.LastError()
	}
	c.setPhase(PhaseNeededSent)

	_ = conn.SetReadDeadline(time.Now().Add(connectTimeout))
	ackNeeded, err := ReadMessage(conn)
	if err != nil {
		c.fail(err)
		return c.LastError()
	}
	if !isAckNeededData(ackNeeded) {
		c.fail(fault.New(fault.ProtocolViolation, "invalid ACK_NEEDED_DATA"))
		return c.LastError()
	}

	c.setPhase(PhaseRunning)
	return nil
}

// Run is the receive loop. It blocks until ctx is cancelled or the transport
// fails; the one-second read deadline bounds how long cancellation can take.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fault.New(fault.TransportClosed, "not connected")
	}

	for {
		select {
		case <-ctx.Done():
			c.Close()
			c.setPhase(PhaseDisconnected)
			return nil
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		msg, err := ReadMessage(conn)
		if err != nil {
			if ne, ok := unwrapNetErr(err); ok && ne.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				c.setPhase(PhaseDisconnected)
				return nil
			}
			c.fail(err)
			c.Close()
			return err
		}
		c.processMessage(msg)
	}
}

// Close tears down the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.phase = PhaseFailed
	c.mu.Unlock()
	logrus.Errorf("zusi3 client: %s", err)
}

func (c *Client) processMessage(msg *Node) {
	if msg.ID != MsgFahrpult {
		return
	}
	for _, child := range msg.Children {
		if child.ID == CmdDataFtd {
			c.mu.Lock()
			changed := ApplyFtd(child, &c.st)
			snapshot := c.st
			cb := c.OnStateUpdate
			c.mu.Unlock()
			if changed && cb != nil {
				cb(snapshot)
			}
		}
	}
}

func unwrapNetErr(err error) (net.Error, bool) {
	for err != nil {
		if ne, ok := err.(net.Error); ok {
			return ne, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

func helloMessage(clientName string) *Node {
	return &Node{
		ID: MsgConnecting,
		Children: []*Node{{
			ID: CmdHello,
			Attributes: []Attribute{
				U16Attribute(1, protocolVersion),
				U16Attribute(2, clientFahrpult),
				StringAttribute(3, clientName),
				StringAttribute(4, clientVersion),
			},
		}},
	}
}

func parseAckHello(msg *Node) (version, info string, ok bool) {
	if msg.ID != MsgConnecting {
		return "", "", false
	}
	ack := msg.Child(CmdAckHello)
	if ack == nil {
		return "", "", false
	}
	if a, found := ack.Attr(1); found {
		version = a.AsString()
	}
	if a, found := ack.Attr(3); found {
		info = a.AsString()
	}
	return version, info, true
}

func neededDataMessage(fsData []FsData) *Node {
	fs := &Node{ID: NodeFuehrerstand}
	for _, fd := range fsData {
		fs.Attributes = append(fs.Attributes, U16Attribute(1, uint16(fd)))
	}
	return &Node{
		ID: MsgFahrpult,
		Children: []*Node{{
			ID:       CmdNeededData,
			Children: []*Node{fs},
		}},
	}
}

func isAckNeededData(msg *Node) bool {
	return msg.ID == MsgFahrpult && msg.Child(CmdAckNeededData) != nil
}
