package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"image-processor/internal/logging"
)

// DefaultSettle is how long a file must stay quiet after a write before
// the change is reported.
const DefaultSettle = 300 * time.Millisecond

// FileWatcher reports when the image file on disk changes, so the editor
// can offer to reload it. The parent directory is watched because editors
// often save by replacing the file.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	settle   time.Duration
	timer    *time.Timer
	onChange func(path string)
	done     chan struct{}
}

// NewFileWatcher starts a watcher. onChange is called from a background
// goroutine once per burst of writes.
func NewFileWatcher(settle time.Duration, onChange func(path string)) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw := &FileWatcher{
		watcher:  w,
		settle:   settle,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// Watch switches to path. An empty path stops watching.
func (fw *FileWatcher) Watch(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if path != "" {
		path = filepath.Clean(path)
	}
	if path == fw.path {
		return nil
	}
	if fw.dir != "" {
		_ = fw.watcher.Remove(fw.dir)
	}
	fw.path, fw.dir = path, ""
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.path = ""
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fw.dir = dir
	return nil
}

// Close stops the watcher.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	err := fw.watcher.Close()
	<-fw.done
	return err
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fw.touched(filepath.Clean(ev.Name))
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Logger().Warn("file watcher error", "err", err)
		}
	}
}

// touched restarts the settle timer when name is the watched file.
func (fw *FileWatcher) touched(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if name != fw.path {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	path := fw.path
	fw.timer = time.AfterFunc(fw.settle, func() {
		logging.Logger().Debug("image changed on disk", "path", path)
		if fw.onChange != nil {
			fw.onChange(path)
		}
	})
}
