package hl7v2

import "bytes"

const (
	// StartBlock opens a framed message (VT, vertical tab).
	StartBlock = 0x0B

	// EndBlock closes a framed message (FS, file separator).
	EndBlock = 0x1C

	// CarriageReturn trails the end block.
	CarriageReturn = 0x0D

	// FrameOverhead is the number of bytes framing adds to a payload.
	FrameOverhead = 3
)

// FramingInfo describes a framed payload for JSON envelopes.
type FramingInfo struct {
	StartBlock    string `json:"start_block"`
	EndBlock      string `json:"end_block"`
	Terminator    string `json:"terminator"`
	TotalLength   int    `json:"total_length"`
	PayloadLength int    `json:"xml_length"`
	FrameOverhead int    `json:"frame_overhead"`
}

// Frame wraps a payload for transmission over a persistent connection:
//
//	<0x0B> + payload + <0x1C><0x0D>
func Frame(data []byte) []byte {
	frame := make([]byte, 0, len(data)+FrameOverhead)
	frame = append(frame, StartBlock)
	frame = append(frame, data...)
	frame = append(frame, EndBlock, CarriageReturn)
	return frame
}

// Unframe extracts the first complete frame from data. It returns the
// payload, any bytes after the frame, and whether a complete frame was found.
func Unframe(data []byte) (payload []byte, rest []byte, found bool) {
	startIdx := bytes.IndexByte(data, StartBlock)
	if startIdx == -1 {
		return nil, data, false
	}

	endIdx := bytes.Index(data[startIdx+1:], []byte{EndBlock, CarriageReturn})
	if endIdx == -1 {
		return nil, data, false
	}
	endIdx = startIdx + 1 + endIdx

	return data[startIdx+1 : endIdx], data[endIdx+2:], true
}

// DescribeFrame reports the framing envelope around a payload of the given
// length.
func DescribeFrame(payloadLen int) FramingInfo {
	return FramingInfo{
		StartBlock:    "0x0B (VT - Vertical Tab)",
		EndBlock:      "0x1C (FS - File Separator)",
		Terminator:    "0x0D (CR - Carriage Return)",
		TotalLength:   payloadLen + FrameOverhead,
		PayloadLength: payloadLen,
		FrameOverhead: FrameOverhead,
	}
}
