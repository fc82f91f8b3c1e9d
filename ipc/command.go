package ipc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pithecene-io/amlctl/types"
)

// CommandSize is the encoded size of a Command. It stays below PIPE_BUF so a
// single write to the command channel is never interleaved with another
// writer's record.
var CommandSize = binary.Size(types.Command{})

// PipeBuf is the POSIX minimum atomic pipe write size.
const PipeBuf = 512

// wireOrder matches the daemon, which reads records in host byte order.
var wireOrder = binary.NativeEndian

// EncodeCommand returns the wire form of cmd. The sender does not check
// Magic; readers do.
func EncodeCommand(cmd *types.Command) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, CommandSize))
	if err := binary.Write(buf, wireOrder, cmd); err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCommand decodes one record and checks its magic.
func DecodeCommand(b []byte) (*types.Command, error) {
	if len(b) < CommandSize {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  fmt.Sprintf("command record is %d bytes, want %d", len(b), CommandSize),
		}
	}

	var cmd types.Command
	if err := binary.Read(bytes.NewReader(b[:CommandSize]), wireOrder, &cmd); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode command",
			Err:  err,
		}
	}
	if cmd.Magic != types.CommandMagic {
		return nil, &FrameError{
			Kind: FrameErrorBadMagic,
			Msg:  fmt.Sprintf("command magic %#x, want %#x", cmd.Magic, types.CommandMagic),
		}
	}
	return &cmd, nil
}

// CommandDecoder reads fixed-size Command records from a stream.
type CommandDecoder struct {
	reader io.Reader
	buf    []byte
}

// NewCommandDecoder creates a new command decoder.
func NewCommandDecoder(r io.Reader) *CommandDecoder {
	return &CommandDecoder{reader: r, buf: make([]byte, CommandSize)}
}

// ReadCommand reads a single record.
//
// Errors:
//   - io.EOF: stream ended cleanly (all writers closed)
//   - *FrameError with Kind=FrameErrorPartial: stream ended mid-record
//   - *FrameError with Kind=FrameErrorBadMagic: record is not a Command;
//     the record has been consumed and the stream is still aligned
func (d *CommandDecoder) ReadCommand() (*types.Command, error) {
	_, err := io.ReadFull(d.reader, d.buf)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read command record",
			Err:  err,
		}
	}
	return DecodeCommand(d.buf)
}

// The layout must fit one atomic pipe write.
func init() {
	if CommandSize <= 0 || CommandSize > PipeBuf {
		panic(fmt.Sprintf("ipc: command record size %d outside (0, %d]", CommandSize, PipeBuf))
	}
}
