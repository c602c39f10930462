package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reports changes to a single file. It watches the parent
// directory so editors that save via rename are still seen.
type ConfigWatcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	onChange func()

	closeOnce sync.Once
	done      chan struct{}
}

// NewConfigWatcher starts watching path. onChange runs on a timer goroutine
// after writes settle for the debounce window.
func NewConfigWatcher(path string, debounce time.Duration, onChange func()) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	cw := &ConfigWatcher{
		path:     abs,
		fsw:      fsw,
		debounce: NewDebouncer(debounce),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case <-cw.done:
			return
		case ev, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				cw.debounce.Trigger(cw.fire)
			}
		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: config watcher: %v", err)
		}
	}
}

func (cw *ConfigWatcher) fire() {
	select {
	case <-cw.done:
		return
	default:
	}
	if cw.onChange != nil {
		cw.onChange()
	}
}

// Path returns the watched file
func (cw *ConfigWatcher) Path() string {
	return cw.path
}

// Close stops watching. Pending callbacks are dropped.
func (cw *ConfigWatcher) Close() error {
	var err error
	cw.closeOnce.Do(func() {
		close(cw.done)
		cw.debounce.Cancel()
		err = cw.fsw.Close()
	})
	return err
}
