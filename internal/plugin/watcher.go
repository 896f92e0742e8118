package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Watcher polls a plugin directory for descriptor changes and triggers a
// callback when an XML file appears, disappears, or is rewritten. Polling
// keeps the watcher portable across filesystems.
type Watcher struct {
	dir           string
	checkInterval time.Duration
	stopCh        chan struct{}
	snapshot      map[string]time.Time
	onChange      func()
}

// NewWatcher creates a watcher over dir. The directory does not need to
// exist yet; it is re-checked on every tick.
func NewWatcher(dir string, checkInterval time.Duration) *Watcher {
	w := &Watcher{
		dir:           dir,
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
	w.snapshot = w.scan()
	return w
}

// OnChange sets the callback to invoke when the directory contents change.
// The callback is called from a background goroutine.
func (w *Watcher) OnChange(callback func()) {
	w.onChange = callback
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

func (w *Watcher) watchLoop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForUpdate() && w.onChange != nil {
				w.onChange()
			}
		}
	}
}

// checkForUpdate rescans the directory and reports whether the set of
// descriptor files or any mod time changed since the last scan.
func (w *Watcher) checkForUpdate() bool {
	current := w.scan()
	changed := len(current) != len(w.snapshot)
	if !changed {
		for name, mtime := range current {
			if prev, ok := w.snapshot[name]; !ok || !prev.Equal(mtime) {
				changed = true
				break
			}
		}
	}
	w.snapshot = current
	return changed
}

func (w *Watcher) scan() map[string]time.Time {
	out := make(map[string]time.Time)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out[entry.Name()] = info.ModTime()
	}
	return out
}
