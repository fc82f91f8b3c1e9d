package responder

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/pithecene-io/amlctl/iox"
	"github.com/pithecene-io/amlctl/log"
	"github.com/pithecene-io/amlctl/types"
)

// ReloadingScript is a Script that follows its file. Watch replaces the
// active script whenever the file is written or replaced; a script that
// fails to parse leaves the previous one in effect.
type ReloadingScript struct {
	path   string
	logger *log.Logger
	cur    atomic.Pointer[Script]
}

// NewReloadingScript loads path once. The initial load must succeed.
func NewReloadingScript(path string, logger *log.Logger) (*ReloadingScript, error) {
	r := &ReloadingScript{path: filepath.Clean(path), logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the script file.
func (r *ReloadingScript) Reload() error {
	s, err := LoadScript(r.path)
	if err != nil {
		return err
	}
	r.cur.Store(s)
	return nil
}

// Current returns the active script.
func (r *ReloadingScript) Current() *Script {
	return r.cur.Load()
}

// Handle answers cmd from the active script.
func (r *ReloadingScript) Handle(ctx context.Context, cmd *types.Command) types.Completion {
	return r.cur.Load().Handle(ctx, cmd)
}

// Watch reloads the script on change until ctx is done. The parent
// directory is watched so editors that rename over the file are seen.
// ready, if non-nil, is closed once the watch is in place.
func (r *ReloadingScript) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch script: %w", err)
	}
	defer iox.DiscardClose(watcher)

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch script: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.Warn("script reload failed, keeping previous", map[string]any{
					"path":  r.path,
					"error": err.Error(),
				})
				continue
			}
			r.logger.Info("script reloaded", map[string]any{"path": r.path})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("script watch error", map[string]any{"error": err.Error()})
		}
	}
}

var _ Handler = (*ReloadingScript)(nil)
