package display

import (
	"errors"
	"fmt"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdSetPixel byte = 0x20
	CmdClear    byte = 0x21
	CmdScroll   byte = 0x22
	CmdShow     byte = 0x23

	// MaxPayload keeps LEN (payload + CMD byte) within one byte.
	MaxPayload = 254
)

var (
	ErrShortFrame = errors.New("frame: short frame")
	ErrBadSync    = errors.New("frame: bad start of frame")
	ErrChecksum   = errors.New("frame: checksum mismatch")
)

// Frame is one command for the matrix controller.
type Frame struct {
	Cmd     byte
	Payload []byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][payload...][CKS]
//
// LEN counts the CMD byte plus payload. CKS is the XOR of LEN, CMD and every
// payload byte. Payloads longer than MaxPayload are truncated.
func (f Frame) Encode() []byte {
	payload := f.Payload
	if len(payload) > MaxPayload {
		payload = payload[:MaxPayload]
	}

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ f.Cmd
	for _, b := range payload {
		cks ^= b
	}

	out := make([]byte, 0, len(payload)+5)
	out = append(out, SOF0, SOF1, length, f.Cmd)
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// DecodeFrame parses a single encoded frame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < 5 {
		return Frame{}, ErrShortFrame
	}
	if b[0] != SOF0 || b[1] != SOF1 {
		return Frame{}, ErrBadSync
	}
	length := int(b[2])
	if length < 1 || len(b) < 4+length {
		return Frame{}, fmt.Errorf("%w: want %d bytes, have %d", ErrShortFrame, 4+length, len(b))
	}
	cmd := b[3]
	payload := b[4 : 3+length]
	cks := b[2] ^ cmd
	for _, p := range payload {
		cks ^= p
	}
	if cks != b[3+length] {
		return Frame{}, ErrChecksum
	}
	return Frame{Cmd: cmd, Payload: append([]byte(nil), payload...)}, nil
}

func setPixelFrame(x, y int, c Color) Frame {
	return Frame{Cmd: CmdSetPixel, Payload: []byte{byte(x), byte(y), c.R, c.G, c.B}}
}

func clearFrame(c Color) Frame {
	return Frame{Cmd: CmdClear, Payload: []byte{c.R, c.G, c.B}}
}

// scrollFrame carries the color, the per-column speed and the text. Text that
// would overflow the payload is cut on a rune boundary.
func scrollFrame(text string, c Color, speedMs int) Frame {
	payload := []byte{c.R, c.G, c.B, byte(speedMs)}
	for _, r := range text {
		enc := []byte(string(r))
		if len(payload)+len(enc) > MaxPayload {
			break
		}
		payload = append(payload, enc...)
	}
	return Frame{Cmd: CmdScroll, Payload: payload}
}

func showFrame() Frame {
	return Frame{Cmd: CmdShow}
}
