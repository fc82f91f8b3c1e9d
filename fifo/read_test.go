package fifo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/amlctl/types"
)

// fastWriter retries often enough to wait for a reader in tests.
func fastWriter(dir string) *Writer {
	return &Writer{Dir: dir, RetryCount: 500, RetryInterval: 10 * time.Millisecond}
}

func TestReadResponse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		code int32
		msg  string
		want string
	}{
		{name: "completed", code: 0, msg: "completed", want: "completed"},
		{name: "custom message", code: 0, msg: "labeled ABC123", want: "labeled ABC123"},
		{name: "default text", code: 0, msg: "", want: "completed"},
		{name: "errno", code: 17, msg: "", want: CompletionMessage(17, "")},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := &Channels{Dir: dir}
			id := testID(int32(i))

			ch, err := c.Create(id)
			if err != nil {
				t.Fatal(err)
			}
			defer ch.Close()

			delivered := make(chan bool, 1)
			go func() {
				wid := id
				delivered <- fastWriter(dir).WriteResponse(context.Background(), &wid, tt.code, tt.msg)
			}()

			got, err := c.ReadResponse(context.Background(), id, 5*time.Second)
			if err != nil {
				t.Fatalf("ReadResponse failed: %v", err)
			}
			if got.Code != tt.code || got.Message != tt.want {
				t.Errorf("got (%d, %q), want (%d, %q)", got.Code, got.Message, tt.code, tt.want)
			}
			if !<-delivered {
				t.Error("writer reported not delivered")
			}
		})
	}
}

func TestReadResponse_TruncatesLongMessage(t *testing.T) {
	dir := t.TempDir()
	c := &Channels{Dir: dir}
	id := testID(9)

	ch, err := c.Create(id)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	go func() {
		wid := id
		fastWriter(dir).WriteResponse(context.Background(), &wid, 5, strings.Repeat("x", 1000))
	}()

	got, err := c.ReadResponse(context.Background(), id, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Message) != 255 {
		t.Errorf("message length = %d, want 255", len(got.Message))
	}
}

func TestReadResponse_TimesOut(t *testing.T) {
	c := &Channels{Dir: t.TempDir()}
	id := testID(10)

	ch, err := c.Create(id)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	start := time.Now()
	_, err = c.ReadResponse(context.Background(), id, 200*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("error = %v, want ErrTimedOut", err)
	}
	if errors.Is(err, ErrInterrupted) {
		t.Error("timeout also matched ErrInterrupted")
	}
	if elapsed < 200*time.Millisecond || elapsed > 3*time.Second {
		t.Errorf("elapsed = %v, want close to 200ms", elapsed)
	}
}

func TestReadResponse_Interrupted(t *testing.T) {
	c := &Channels{Dir: t.TempDir()}
	id := testID(11)

	ch, err := c.Create(id)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err = c.ReadResponse(ctx, id, 0)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("error = %v, want ErrInterrupted", err)
	}
}

func TestReadResponse_AlreadyCancelled(t *testing.T) {
	spy := &spyFS{}
	c := &Channels{FS: spy, Dir: t.TempDir()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadResponse(ctx, testID(12), time.Second)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("error = %v, want ErrInterrupted", err)
	}
	if spy.openCount() != 0 {
		t.Errorf("opens = %d, want 0", spy.openCount())
	}
}

func TestReadResponse_WriterClosesEarly(t *testing.T) {
	dir := t.TempDir()
	c := &Channels{Dir: dir}
	id := testID(13)

	ch, err := c.Create(id)
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	// A writer that opens and closes without writing.
	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			f, err := OSFS{}.OpenFile(ch.Path(), writeNonBlock, 0)
			if err == nil {
				_ = f.Close()
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	_, err = c.ReadResponse(context.Background(), id, 5*time.Second)
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("error = %v, want ErrNoResponse", err)
	}
	if !errors.Is(err, ErrIO) {
		t.Errorf("ErrNoResponse does not match ErrIO: %v", err)
	}
}

func TestReadResponse_Sentinel(t *testing.T) {
	c := &Channels{Dir: t.TempDir()}
	_, err := c.ReadResponse(context.Background(), types.CorrelationID{}, time.Second)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error = %v, want ErrIO", err)
	}
}
