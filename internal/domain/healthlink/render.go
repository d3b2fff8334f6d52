package healthlink

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/norrisp90/HL7SyntGen/internal/platform/analytics"
	"github.com/norrisp90/HL7SyntGen/internal/platform/hl7v2"
)

// Format selects how a generated message is returned.
type Format string

const (
	FormatXML  Format = "xml"
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
)

// Content types written for each rendering.
const (
	ContentTypeXML    = "application/xml"
	ContentTypeText   = "text/plain"
	ContentTypeJSON   = "application/json"
	ContentTypeFramed = "application/octet-stream"
)

// ErrInvalidFormat is returned by ParseFormat for unknown selectors.
var ErrInvalidFormat = errors.New("healthlink: invalid format, use 'xml', 'raw', 'hl7' or 'json'")

// ParseFormat accepts the format selector case-insensitively. An empty value
// selects XML; "hl7" is accepted as an alias for raw.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xml":
		return FormatXML, nil
	case "raw", "hl7":
		return FormatRaw, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", ErrInvalidFormat
	}
}

// Envelope is the JSON rendering of a message and its metadata.
type Envelope struct {
	MessageTypeID  int                `json:"message_type_id"`
	MessageType    string             `json:"message_type"`
	HL7Type        string             `json:"hl7_type"`
	RequestID      string             `json:"request_id,omitempty"`
	ControlID      string             `json:"message_control_id"`
	XMLMessage     string             `json:"xml_message"`
	TCPFramedBytes string             `json:"tcp_framed_bytes,omitempty"`
	FramingInfo    *hl7v2.FramingInfo `json:"framing_info,omitempty"`
}

// Output is a rendered message ready to be written to a response or file.
type Output struct {
	ContentType string
	Body        []byte
}

// NewEnvelope serializes msg compactly and wraps it with its metadata. When
// framing is set the framed indented form is included hex-encoded.
func NewEnvelope(msg *Message, framing bool, requestID string) (*Envelope, error) {
	data, err := hl7v2.Serialize(msg.Root, false)
	if err != nil {
		return nil, err
	}

	env := &Envelope{
		MessageTypeID: msg.Type.ID,
		MessageType:   msg.Type.Name,
		HL7Type:       msg.Type.HL7Type,
		RequestID:     requestID,
		ControlID:     msg.ControlID,
		XMLMessage:    string(data),
	}
	if framing {
		framed, err := frameMessage(msg)
		if err != nil {
			return nil, err
		}
		info := hl7v2.DescribeFrame(len(framed) - hl7v2.FrameOverhead)
		env.TCPFramedBytes = hex.EncodeToString(framed)
		env.FramingInfo = &info
	}
	return env, nil
}

// frameMessage frames the indented serialization, the form sent on the wire.
func frameMessage(msg *Message) ([]byte, error) {
	data, err := hl7v2.Serialize(msg.Root, true)
	if err != nil {
		return nil, err
	}
	return hl7v2.Frame(data), nil
}

// Render serializes msg in the requested format. With framing, both xml and
// raw return the framed indented XML.
func Render(msg *Message, format Format, framing bool, requestID string) (*Output, error) {
	switch format {
	case FormatJSON:
		env, err := NewEnvelope(msg, framing, requestID)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode envelope: %w", err)
		}
		return &Output{ContentType: ContentTypeJSON, Body: body}, nil

	case FormatXML, FormatRaw:
		if framing {
			framed, err := frameMessage(msg)
			if err != nil {
				return nil, err
			}
			return &Output{ContentType: ContentTypeFramed, Body: framed}, nil
		}
		data, err := hl7v2.Serialize(msg.Root, format == FormatXML)
		if err != nil {
			return nil, err
		}
		switch {
		case format == FormatXML:
			return &Output{ContentType: ContentTypeXML, Body: data}, nil
		default:
			return &Output{ContentType: ContentTypeText, Body: data}, nil
		}

	default:
		return nil, ErrInvalidFormat
	}
}

// NewGenerationMetric describes one render of msg for the usage tracker. A
// nil out marks the generation as failed.
func NewGenerationMetric(msg *Message, format Format, framing bool, took time.Duration, out *Output) *analytics.GenerationMetric {
	m := &analytics.GenerationMetric{
		MessageTypeID: msg.Type.ID,
		HL7Type:       msg.Type.HL7Type,
		Format:        string(format),
		Framed:        framing,
		Duration:      took,
		Failed:        out == nil,
	}
	if out != nil {
		m.Bytes = int64(len(out.Body))
	}
	return m
}
