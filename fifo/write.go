package fifo

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/ipc"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/metrics"
	"github.com/pithecene-io/amlctl/types"
)

// Default response write retry policy.
const (
	DefaultRetryCount    = 3
	DefaultRetryInterval = time.Second
)

const (
	completedMessage = "completed"
	unknownMessage   = "unknown error"
)

// Writer delivers completions to requesters. It is the daemon side of a
// response channel: it opens, writes once and closes, and never creates
// or removes the pipe.
type Writer struct {
	// FS is the filesystem to use. Nil means OSFS.
	FS FS
	// Dir holds the response channels. Empty means os.TempDir().
	Dir string
	// RetryCount is the total number of open attempts while the requester
	// has not opened its read end yet. Zero means DefaultRetryCount.
	RetryCount int
	// RetryInterval is the pause between attempts. Zero means
	// DefaultRetryInterval.
	RetryInterval time.Duration

	Logger  *log.Logger
	Metrics *metrics.Collector
}

func (w *Writer) retryCount() int {
	if w.RetryCount <= 0 {
		return DefaultRetryCount
	}
	return w.RetryCount
}

func (w *Writer) retryInterval() time.Duration {
	if w.RetryInterval <= 0 {
		return DefaultRetryInterval
	}
	return w.RetryInterval
}

// CompletionMessage returns msg, or the canonical text for code when msg is
// empty.
func CompletionMessage(code int32, msg string) string {
	if msg != "" {
		return msg
	}
	if code == 0 {
		return completedMessage
	}
	text := unix.Errno(code).Error()
	if text == "" || strings.HasPrefix(text, "errno ") {
		return unknownMessage
	}
	return text
}

// truncateMessage cuts msg to fit MaxMessageSize with its terminator,
// backing up to a rune boundary.
func truncateMessage(msg string) string {
	limit := ipc.MaxMessageSize - 1
	if len(msg) <= limit {
		return msg
	}
	for limit > 0 && !utf8.RuneStart(msg[limit]) {
		limit--
	}
	return msg[:limit]
}

// WriteResponse delivers (code, msg) on id's channel and reports whether it
// was delivered. Delivery is best effort: failures are logged, never
// returned.
//
// A sentinel id is a no-op. On delivery the id is consumed so a second
// call is also a no-op.
func (w *Writer) WriteResponse(ctx context.Context, id *types.CorrelationID, code int32, msg string) bool {
	if id == nil || id.IsSentinel() {
		return false
	}

	dir := w.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	path := id.Path(dir)
	logger := w.Logger.With("path", path)
	fsys := orOS(w.FS)

	msg = truncateMessage(CompletionMessage(code, msg))

	f, err := w.openWithRetry(ctx, fsys, path, logger)
	if err != nil {
		logger.Warn("completion not delivered", map[string]any{
			"code":  code,
			"error": err.Error(),
		})
		w.Metrics.IncResponseDropped()
		return false
	}
	defer iox.DiscardClose(f)

	header, body := ipc.EncodeResponse(code, msg)
	if _, err := f.Write(header); err != nil {
		logger.Warn("completion header write failed", map[string]any{"error": err.Error()})
		w.Metrics.IncResponseDropped()
		return false
	}
	if _, err := f.Write(body); err != nil {
		logger.Warn("completion message write failed", map[string]any{"error": err.Error()})
		w.Metrics.IncResponseDropped()
		return false
	}

	id.Consume()
	w.Metrics.IncResponseDelivered()
	logger.Debug("completion delivered", map[string]any{"code": code, "message": msg})
	return true
}

// openWithRetry opens path for a non-blocking write. Only a missing reader
// is retried; any other failure returns at once.
func (w *Writer) openWithRetry(ctx context.Context, fsys FS, path string, logger *log.Logger) (File, error) {
	attempts := w.retryCount()
	for attempt := 1; ; attempt++ {
		f, err := fsys.OpenFile(path, writeNonBlock, 0)
		if err == nil {
			return f, nil
		}
		if !isNoReader(err) || attempt >= attempts {
			return nil, newChannelError(ErrIO, "open", path, err)
		}

		w.Metrics.IncResponseRetry()
		logger.Debug("response channel has no reader, retrying", map[string]any{
			"attempt": attempt,
		})
		if err := sleep(ctx, w.retryInterval()); err != nil {
			return nil, cancelError(err, path)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
