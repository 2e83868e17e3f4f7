package esphome

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame is one message on the wire: a zero preamble, then payload length and
// message type as LEB128 varints, then the payload itself.
type Frame struct {
	Type    uint64
	Payload []byte
}

var ErrNeedMoreData = errors.New("need more data")
var ErrBadPreamble = errors.New("bad preamble")

func EncodeFrame(f Frame) []byte {
	buf := make([]byte, 0, len(f.Payload)+11)
	buf = append(buf, 0x00)
	buf = protowire.AppendVarint(buf, uint64(len(f.Payload)))
	buf = protowire.AppendVarint(buf, f.Type)
	return append(buf, f.Payload...)
}

// DecodeFrame reads one frame off the head of buf and reports how many bytes
// it consumed. ErrNeedMoreData means buf holds a prefix of a valid frame and
// nothing was consumed, so the caller can retry with more input.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) == 0 {
		return Frame{}, 0, ErrNeedMoreData
	}

	if buf[0] != 0x00 {
		return Frame{}, 0, fmt.Errorf("%w: 0x%02x", ErrBadPreamble, buf[0])
	}

	offset := 1

	length, n, err := consumeVarint(buf[offset:])
	if err != nil {
		return Frame{}, 0, err
	}
	offset += n

	msgType, n, err := consumeVarint(buf[offset:])
	if err != nil {
		return Frame{}, 0, err
	}
	offset += n

	if uint64(len(buf)-offset) < length {
		return Frame{}, 0, ErrNeedMoreData
	}

	payload := make([]byte, length)
	copy(payload, buf[offset:offset+int(length)])

	return Frame{Type: msgType, Payload: payload}, offset + int(length), nil
}

func consumeVarint(buf []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
			return 0, 0, ErrNeedMoreData
		}
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}
