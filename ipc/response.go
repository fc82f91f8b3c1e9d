package ipc

import (
	"bytes"
	"fmt"
)

// HeaderSize is the encoded size of a ResponseHeader.
const HeaderSize = 8

// MaxMessageSize bounds the completion text a client accepts, terminator
// included. Longer messages are truncated on read.
const MaxMessageSize = 256

// ResponseHeader precedes the completion text on a response channel.
type ResponseHeader struct {
	// Code is 0 on success, a positive errno on failure. Negative values
	// are never written by a well-behaved daemon.
	Code int32
	// Length is the size of the text that follows, terminator included.
	Length int32
}

// EncodeResponse returns the header and body for a completion. They are
// written with one write each.
func EncodeResponse(code int32, msg string) (header, body []byte) {
	body = make([]byte, len(msg)+1)
	copy(body, msg)

	header = make([]byte, HeaderSize)
	wireOrder.PutUint32(header[0:4], uint32(code))
	wireOrder.PutUint32(header[4:8], uint32(len(body)))
	return header, body
}

// DecodeHeader decodes a ResponseHeader. A short buffer means no response
// was delivered.
func DecodeHeader(b []byte) (ResponseHeader, error) {
	if len(b) < HeaderSize {
		return ResponseHeader{}, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  fmt.Sprintf("response header is %d bytes, want %d", len(b), HeaderSize),
		}
	}
	h := ResponseHeader{
		Code:   int32(wireOrder.Uint32(b[0:4])),
		Length: int32(wireOrder.Uint32(b[4:8])),
	}
	if h.Length < 0 {
		return ResponseHeader{}, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("negative message length %d", h.Length),
		}
	}
	return h, nil
}

// MessageLen returns how many body bytes a reader should consume.
func (h ResponseHeader) MessageLen() int {
	return min(int(h.Length), MaxMessageSize)
}

// DecodeMessage returns the text up to its terminator.
func DecodeMessage(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
