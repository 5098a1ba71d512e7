package main

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mnglab/mng"
)

// watcher reports the names of files that change on disk, as returned by
// match. Bursts of events for the same file within debounce are reported
// once.
type watcher struct {
	watcher *fsnotify.Watcher
	match   func(path string) (string, bool)
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

const debounce = 100 * time.Millisecond

func newWatcher(match func(path string) (string, bool), dirs ...string) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	ret := &watcher{
		watcher: w,
		match:   match,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go ret.run()
	return ret, nil
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, ok := w.match(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[name] = now
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func bundleName(path string) (string, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, mng.BundleExtension) {
		return "", false
	}
	return strings.TrimSuffix(base, ext), true
}

// sameFile returns a matcher for the single file at path.
func sameFile(path string) func(string) (string, bool) {
	want := filepath.Clean(path)
	return func(p string) (string, bool) {
		return want, filepath.Clean(p) == want
	}
}
