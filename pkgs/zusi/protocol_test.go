package zusi

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/giako888/trainbridge/pkgs/fault"
)

func sampleTree() *Node {
	return &Node{
		ID: MsgFahrpult,
		Attributes: []Attribute{
			{ID: 1, Payload: []byte{0x01, 0x02}},
		},
		Children: []*Node{
			{
				ID: CmdDataFtd,
				Attributes: []Attribute{
					{ID: 2, Payload: []byte{0xAA}},
					{ID: 3, Payload: []byte("text")},
				},
				Children: []*Node{
					{ID: 0x64, Attributes: []Attribute{{ID: 2, Payload: []byte{1}}}},
				},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []*Node{
		{ID: 1},
		{ID: 2, Attributes: []Attribute{{ID: 7, Payload: []byte{}}}},
		sampleTree(),
	}

	for _, n := range cases {
		encoded := Encode(n)
		decoded, err := ReadMessage(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("decode(encode(%d)) failed: %s", n.ID, err)
		}
		if !reflect.DeepEqual(normalize(n), normalize(decoded)) {
			t.Errorf("round trip mismatch for node 0x%04X:\n  in:  %+v\n  out: %+v", n.ID, n, decoded)
		}
	}
}

// normalize maps nil and empty slices onto each other so DeepEqual compares
// structure, not allocation history.
func normalize(n *Node) *Node {
	out := &Node{ID: n.ID}
	for _, a := range n.Attributes {
		p := a.Payload
		if len(p) == 0 {
			p = nil
		}
		out.Attributes = append(out.Attributes, Attribute{ID: a.ID, Payload: p})
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, normalize(c))
	}
	return out
}

func TestTruncatedStreamFails(t *testing.T) {
	encoded := Encode(sampleTree())

	for cut := 0; cut < len(encoded); cut++ {
		_, err := ReadMessage(bytes.NewReader(encoded[:cut]))
		if err == nil {
			t.Fatalf("decoding %d of %d bytes succeeded, want failure", cut, len(encoded))
		}
		if !fault.Is(err, fault.TransportClosed) {
			t.Fatalf("truncation at %d: kind = %s, want transport-closed", cut, fault.KindOf(err))
		}
	}
}

func TestBadStartMarker(t *testing.T) {
	_, err := ReadMessage(bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00}))
	if !fault.Is(err, fault.ProtocolViolation) {
		t.Errorf("kind = %s, want protocol-violation", fault.KindOf(err))
	}
}

func TestNestingDepthBounded(t *testing.T) {
	// build a chain deeper than the decoder allows
	root := &Node{ID: 1}
	cur := root
	for i := 0; i < maxDepth+2; i++ {
		child := &Node{ID: uint16(i + 2)}
		cur.Children = append(cur.Children, child)
		cur = child
	}

	_, err := ReadMessage(bytes.NewReader(Encode(root)))
	if !fault.Is(err, fault.ProtocolViolation) {
		t.Errorf("kind = %s, want protocol-violation", fault.KindOf(err))
	}
}

func TestUnknownIDsArePreserved(t *testing.T) {
	n := &Node{
		ID:         0x7777,
		Attributes: []Attribute{{ID: 0x6666, Payload: []byte{1, 2, 3}}},
	}
	decoded, err := ReadMessage(bytes.NewReader(Encode(n)))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if decoded.ID != 0x7777 {
		t.Errorf("node id = 0x%04X, want 0x7777", decoded.ID)
	}
	attr, ok := decoded.Attr(0x6666)
	if !ok || !bytes.Equal(attr.Payload, []byte{1, 2, 3}) {
		t.Errorf("unknown attribute not preserved: %+v", decoded.Attributes)
	}
}

func TestAttributeAccessors(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		check   func(a Attribute) bool
	}{
		{"u8", []byte{0x2A}, func(a Attribute) bool { return a.AsU8() == 42 }},
		{"u16", []byte{0x34, 0x12}, func(a Attribute) bool { return a.AsU16() == 0x1234 }},
		{"i16", []byte{0xFF, 0xFF}, func(a Attribute) bool { return a.AsI16() == -1 }},
		{"f32", []byte{0x00, 0x00, 0x20, 0x41}, func(a Attribute) bool { return a.AsF32() == 10.0 }},
		{"string", []byte("3.5.0.0"), func(a Attribute) bool { return a.AsString() == "3.5.0.0" }},
	}

	for _, c := range cases {
		if !c.check(Attribute{ID: 1, Payload: c.payload}) {
			t.Errorf("%s accessor failed for % X", c.name, c.payload)
		}
	}
}
