package healthlink

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

// ErrNoMessages is returned when input holds nothing that looks like a message.
var ErrNoMessages = errors.New("no messages found")

// Summary describes one message read back from generated output.
type Summary struct {
	HL7Type   string   `json:"hl7_type" yaml:"hl7_type"`
	ControlID string   `json:"message_control_id" yaml:"message_control_id"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"`
	MRN       string   `json:"mrn,omitempty" yaml:"mrn,omitempty"`
	Segments  []string `json:"segments" yaml:"segments"`
	Framed    bool     `json:"framed" yaml:"framed"`
	Bytes     int      `json:"bytes" yaml:"bytes"`
}

// SplitOutput cuts the output of a generate run into message payloads.
// Framed input is split on frame boundaries. Otherwise a message starts at
// every line that opens an element in the first column, which covers both
// one-line raw XML and indented XML.
func SplitOutput(data []byte) (payloads [][]byte, framed bool) {
	if bytes.IndexByte(data, hl7v2.StartBlock) >= 0 {
		rest := data
		for {
			payload, remaining, found := hl7v2.Unframe(rest)
			if !found {
				break
			}
			payloads = append(payloads, payload)
			rest = remaining
		}
		return payloads, true
	}

	var cur []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.HasPrefix(line, []byte("<")) && !bytes.HasPrefix(line, []byte("</")) && len(cur) > 0 {
			payloads = append(payloads, cur)
			cur = nil
		}
		if len(cur) > 0 {
			cur = append(cur, '\n')
		}
		cur = append(cur, line...)
	}
	if len(cur) > 0 {
		payloads = append(payloads, cur)
	}
	return payloads, false
}

// Inspect parses one message payload and summarizes its header and
// segments.
func Inspect(payload []byte) (*Summary, error) {
	root, err := hl7v2.Parse(payload)
	if err != nil {
		return nil, err
	}
	msh := root.Child("MSH")
	if msh == nil {
		return nil, fmt.Errorf("%s: missing MSH segment", root.Tag)
	}

	s := &Summary{
		HL7Type:   root.Tag,
		ControlID: leafText(msh.Child("MSH.10")),
		Timestamp: leafText(msh.Child("MSH.7")),
		Bytes:     len(payload),
	}
	if mt := leafText(msh.Path("MSH.9", "MSG.3")); mt != root.Tag {
		return nil, fmt.Errorf("%s: MSH.9 names %q", root.Tag, mt)
	}

	// Segment names carry no dot; groups and fields do.
	root.Walk(func(n *hl7v2.Node) bool {
		if n != root && !strings.Contains(n.Tag, ".") {
			s.Segments = append(s.Segments, n.Tag)
		}
		return true
	})

	if pid := root.Find("PID"); pid != nil {
		for _, cx := range pid.FindAll("PID.3") {
			if leafText(cx.Child("CX.5")) == "MRN" {
				s.MRN = leafText(cx.Child("CX.1"))
				break
			}
		}
	}
	return s, nil
}

// InspectOutput splits data and summarizes every message in it.
func InspectOutput(data []byte) ([]*Summary, error) {
	payloads, framed := SplitOutput(data)
	if len(payloads) == 0 {
		return nil, ErrNoMessages
	}
	out := make([]*Summary, 0, len(payloads))
	for i, p := range payloads {
		s, err := Inspect(p)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i+1, err)
		}
		s.Framed = framed
		out = append(out, s)
	}
	return out, nil
}

func leafText(n *hl7v2.Node) string {
	if n == nil {
		return ""
	}
	return n.Text
}
