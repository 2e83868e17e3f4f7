package esphome

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestFrameRoundtrip(t *testing.T) {
	is := is.New(t)

	encoded := EncodeFrame(Frame{Type: TypeHelloRequest, Payload: []byte{0x0a, 0x03, 'h', 'u', 'b'}})

	frame, n, err := DecodeFrame(encoded)
	is.NoErr(err)
	is.Equal(n, len(encoded))
	is.Equal(frame.Type, TypeHelloRequest)
	is.Equal(frame.Payload, []byte{0x0a, 0x03, 'h', 'u', 'b'})
}

func TestFrameEmptyPayload(t *testing.T) {
	is := is.New(t)

	encoded := EncodeFrame(Frame{Type: TypePingRequest})
	is.Equal(encoded, []byte{0x00, 0x00, 0x07})

	frame, n, err := DecodeFrame(encoded)
	is.NoErr(err)
	is.Equal(n, 3)
	is.Equal(frame.Type, TypePingRequest)
	is.Equal(len(frame.Payload), 0)
}

func TestFrameConcatenatedDecodeInOrder(t *testing.T) {
	is := is.New(t)

	first := EncodeFrame(Frame{Type: TypePingResponse})
	second := EncodeFrame(Frame{Type: TypeSensorStateResponse, Payload: []byte{0x0d, 1, 2, 3, 4}})
	buf := append(append([]byte{}, first...), second...)

	frame, n, err := DecodeFrame(buf)
	is.NoErr(err)
	is.Equal(frame.Type, TypePingResponse)

	buf = buf[n:]
	frame, n, err = DecodeFrame(buf)
	is.NoErr(err)
	is.Equal(frame.Type, TypeSensorStateResponse)
	is.Equal(frame.Payload, []byte{0x0d, 1, 2, 3, 4})
	is.Equal(len(buf[n:]), 0)
}

func TestFrameTruncatedConsumesNothing(t *testing.T) {
	is := is.New(t)

	encoded := EncodeFrame(Frame{Type: TypeDeviceInfoResponse, Payload: []byte{1, 2, 3, 4, 5, 6}})

	for cut := 0; cut < len(encoded); cut++ {
		_, n, err := DecodeFrame(encoded[:cut])
		is.True(errors.Is(err, ErrNeedMoreData))
		is.Equal(n, 0)
	}
}

func TestFrameBadPreamble(t *testing.T) {
	is := is.New(t)

	_, _, err := DecodeFrame([]byte{0x42, 0x00, 0x07})
	is.True(errors.Is(err, ErrBadPreamble))
}

func TestFramePayloadIsCopied(t *testing.T) {
	is := is.New(t)

	encoded := EncodeFrame(Frame{Type: TypeSwitchStateResponse, Payload: []byte{9, 9}})

	frame, _, err := DecodeFrame(encoded)
	is.NoErr(err)

	encoded[len(encoded)-1] = 0xff
	is.Equal(frame.Payload, []byte{9, 9})
}
