// Package zusi implements the Zusi3 TCP protocol: the binary node/attribute
// tree codec and the Fahrpult client that subscribes to Führerstand data and
// decodes it into the unified train state.
//
// Wire format (little-endian throughout):
//
//	0x00000000            node start marker
//	<u16 node id>
//	elements, each prefixed with a u32 length word:
//	  0x00000000          -> a child node follows (recursive)
//	  0xFFFFFFFF          -> end of the current node
//	  L                   -> attribute: u16 attribute id + (L-2) payload bytes
//
// A Message on the stream is exactly one top-level node. Unknown node and
// attribute IDs are preserved as opaque bytes; only framing errors fail.
package zusi

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/giako888/trainbridge/pkgs/fault"
)

const (
	nodeStart = 0x00000000
	nodeEnd   = 0xFFFFFFFF

	// maxDepth bounds decode recursion; deeper inputs are rejected to cap
	// stack use on hostile or corrupted streams.
	maxDepth = 16

	// maxAttrLen rejects absurd attribute length words before allocating.
	maxAttrLen = 1 << 20
)

// Attribute is a single id+payload element inside a node. The payload is kept
// raw; typed accessors interpret it on demand.
type Attribute struct {
	ID      uint16
	Payload []byte
}

// Node is one element of the Zusi3 message tree.
type Node struct {
	ID         uint16
	Attributes []Attribute
	Children   []*Node
}

// Child returns the first child with the given id, or nil.
func (n *Node) Child(id uint16) *Node {
	for _, c := range n.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Attr returns the first attribute with the given id.
func (n *Node) Attr(id uint16) (Attribute, bool) {
	for _, a := range n.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return Attribute{}, false
}

func (a Attribute) AsU8() uint8 {
	if len(a.Payload) < 1 {
		return 0
	}
	return a.Payload[0]
}

func (a Attribute) AsU16() uint16 {
	if len(a.Payload) < 2 {
		return uint16(a.AsU8())
	}
	return binary.LittleEndian.Uint16(a.Payload)
}

func (a Attribute) AsI16() int16 {
	return int16(a.AsU16())
}

func (a Attribute) AsF32() float64 {
	if len(a.Payload) < 4 {
		return 0
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(a.Payload)))
}

func (a Attribute) AsString() string {
	return string(a.Payload)
}

// U16Attribute builds a 2-byte little-endian attribute.
func U16Attribute(id uint16, value uint16) Attribute {
	p := make([]byte, 2)
	binary.LittleEndian.PutUint16(p, value)
	return Attribute{ID: id, Payload: p}
}

// StringAttribute builds a UTF-8 attribute.
func StringAttribute(id uint16, value string) Attribute {
	return Attribute{ID: id, Payload: []byte(value)}
}

// WriteMessage encodes the node tree onto w as one message.
func WriteMessage(w io.Writer, n *Node) error {
	buf := appendNode(nil, n)
	if _, err := w.Write(buf); err != nil {
		return fault.Wrap(fault.TransportClosed, err, "cannot write message")
	}
	return nil
}

// Encode renders the node tree to its wire bytes.
func Encode(n *Node) []byte {
	return appendNode(nil, n)
}

func appendNode(buf []byte, n *Node) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, nodeStart)
	buf = binary.LittleEndian.AppendUint16(buf, n.ID)
	for _, a := range n.Attributes {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(a.Payload)+2))
		buf = binary.LittleEndian.AppendUint16(buf, a.ID)
		buf = append(buf, a.Payload...)
	}
	for _, c := range n.Children {
		buf = appendNode(buf, c)
	}
	return binary.LittleEndian.AppendUint32(buf, nodeEnd)
}

// ReadMessage reads exactly one message from r. A short read anywhere yields
// a transport-closed fault; a bad start marker or over-deep nesting yields a
// protocol-violation fault.
func ReadMessage(r io.Reader) (*Node, error) {
	marker, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if marker != nodeStart {
		return nil, fault.New(fault.ProtocolViolation, "expected node start marker, got 0x%08X", marker)
	}
	return readNode(r, 1)
}

func readNode(r io.Reader, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fault.New(fault.ProtocolViolation, "node nesting deeper than %d", maxDepth)
	}

	id, err := readU16(r)
	if err != nil {
		return nil, err
	}
	node := &Node{ID: id}

	for {
		length, err := readU32(r)
		if err != nil {
			return nil, err
		}
		switch {
		case length == nodeEnd:
			return node, nil
		case length == nodeStart:
			child, err := readNode(r, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		case length < 2 || length > maxAttrLen:
			return nil, fault.New(fault.ProtocolViolation, "bad attribute length %d in node 0x%04X", length, id)
		default:
			attrID, err := readU16(r)
			if err != nil {
				return nil, err
			}
			payload := make([]byte, length-2)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, fault.Wrap(fault.TransportClosed, err, "truncated attribute 0x%04X", attrID)
			}
			node.Attributes = append(node.Attributes, Attribute{ID: attrID, Payload: payload})
		}
	}
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fault.Wrap(fault.TransportClosed, err, "truncated stream")
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fault.Wrap(fault.TransportClosed, err, "truncated stream")
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
