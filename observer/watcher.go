package observer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// FileWatcher is a Subject whose messages are file system events, as
// "<op> <path>", e.g. "write /tmp/notes.md". Chmod-only events are dropped.
type FileWatcher struct {
	*Channel
	watcher *fsnotify.Watcher
	include []string
}

type FileWatcherOptions struct {
	// Paths to watch. Directories are watched non-recursively.
	Paths []string
	// Doublestar patterns matched against the file's base name. Empty
	// means every file.
	Include []string
}

func NewFileWatcher(name string, opts FileWatcherOptions) (*FileWatcher, error) {
	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	for _, p := range opts.Paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, fmt.Errorf("error watching %s: %w", p, err)
		}
	}
	return &FileWatcher{
		Channel: NewChannel(name),
		watcher: w,
		include: opts.Include,
	}, nil
}

// Run publishes events until ctx is done or the watcher is closed.
func (fw *FileWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if msg, ok := fw.message(evt); ok {
				fw.Notify(msg)
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				Log.Warn("watcher overflow, events were dropped", "channel", fw.Name())
				continue
			}
			Log.Error("watcher error", "channel", fw.Name(), "error", err)
		}
	}
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}

func (fw *FileWatcher) message(evt fsnotify.Event) (string, bool) {
	if evt.Name == "" || !fw.included(evt.Name) {
		return "", false
	}
	var op string
	switch {
	case evt.Has(fsnotify.Create):
		op = "create"
	case evt.Has(fsnotify.Write):
		op = "write"
	case evt.Has(fsnotify.Remove):
		op = "remove"
	case evt.Has(fsnotify.Rename):
		op = "rename"
	default:
		return "", false
	}
	return op + " " + evt.Name, true
}

func (fw *FileWatcher) included(path string) bool {
	if len(fw.include) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, p := range fw.include {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
