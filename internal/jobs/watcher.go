package jobs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SnapshotWatcher watches the snapshot directory and fires onChange after
// writes settle for a debounce period, so a multi-file export triggers a
// single reimport.
type SnapshotWatcher struct {
	dir      string
	onChange func()
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	lastSeen time.Time
	dirty    bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewSnapshotWatcher(dir string, debounce time.Duration, logger *slog.Logger, onChange func()) (*SnapshotWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &SnapshotWatcher{
		dir:      dir,
		onChange: onChange,
		logger:   logger,
		watcher:  fsw,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins processing file events in a goroutine.
func (w *SnapshotWatcher) Start() {
	go w.loop()
}

// Stop stops the watcher and waits for the loop to finish.
func (w *SnapshotWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.watcher.Close()
	})
}

func (w *SnapshotWatcher) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.dirty = true
			w.lastSeen = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Snapshot watcher error", slog.Any("error", err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *SnapshotWatcher) flush() {
	w.mu.Lock()
	ready := w.dirty && time.Since(w.lastSeen) >= w.debounce
	if ready {
		w.dirty = false
	}
	w.mu.Unlock()

	if ready {
		w.logger.Info("Snapshot directory changed, triggering reimport", slog.String("dir", w.dir))
		w.onChange()
	}
}
