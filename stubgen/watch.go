package stubgen

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sbvh/pyxstub/errors"
	"github.com/sbvh/pyxstub/logger"
)

// Watcher re-runs generation whenever the watched manifest file changes.
// Rapid successive writes (editors, snapshot dumps) are debounced.
type Watcher struct {
	path           string
	watcher        *fsnotify.Watcher
	onChange       func()
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewWatcher watches path and calls onChange after each settled change.
func NewWatcher(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watching %s", path)
	}
	return &Watcher{
		path:           path,
		watcher:        fsw,
		onChange:       onChange,
		debouncePeriod: 500 * time.Millisecond,
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				logger.Infow("Manifest change detected",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleRegen()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Manifest watcher error",
				"error", err)
		}
	}
}

// scheduleRegen debounces rapid changes before firing the callback.
func (w *Watcher) scheduleRegen() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.onChange)
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
