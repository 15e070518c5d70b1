package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileChangeType indicates what type of change occurred.
type FileChangeType string

const (
	FileChangeCreated  FileChangeType = "created"
	FileChangeModified FileChangeType = "modified"
	FileChangeDeleted  FileChangeType = "deleted"
)

// FileChangeKind indicates what kind of file changed.
type FileChangeKind string

const (
	FileChangeKindTemplate FileChangeKind = "template"
	FileChangeKindStatic   FileChangeKind = "static"
	FileChangeKindUnknown  FileChangeKind = "unknown"
)

// FileChange is one debounced change under the watched directory.
type FileChange struct {
	Type FileChangeType `json:"type"`
	Kind FileChangeKind `json:"kind"`
	Path string         `json:"path"` // relative to the watched directory
}

// ChangeSubscriber receives file change notifications.
type ChangeSubscriber interface {
	OnFileChange(change FileChange)
}

// TemplateWatcher watches the template directory in dev mode so pages can be
// edited without restarting the server. It never watches record data.
type TemplateWatcher struct {
	watcher     *fsnotify.Watcher
	dir         string
	logger      *zap.Logger
	mu          sync.RWMutex
	subscribers []ChangeSubscriber
	debounce    map[string]*time.Timer
	debounceMu  sync.Mutex
	stopCh      chan struct{}
	stopped     bool // Once stopped, cannot restart
	running     bool
}

// NewTemplateWatcher creates a watcher for dir.
func NewTemplateWatcher(dir string, logger *zap.Logger) (*TemplateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TemplateWatcher{
		watcher:  watcher,
		dir:      dir,
		logger:   logger,
		debounce: make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}, nil
}

// Subscribe adds a subscriber. Subscribers are notified in subscription order.
func (fw *TemplateWatcher) Subscribe(sub ChangeSubscriber) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.subscribers = append(fw.subscribers, sub)
}

// Unsubscribe removes a subscriber.
func (fw *TemplateWatcher) Unsubscribe(sub ChangeSubscriber) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for i, s := range fw.subscribers {
		if s == sub {
			fw.subscribers = append(fw.subscribers[:i], fw.subscribers[i+1:]...)
			return
		}
	}
}

// Start begins watching.
func (fw *TemplateWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("file watcher cannot be restarted after stop")
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.addWatchesRecursive(fw.dir); err != nil {
		return err
	}

	go fw.run()
	return nil
}

// Stop stops watching. A stopped watcher cannot be restarted.
func (fw *TemplateWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	wasRunning := fw.running
	fw.running = false
	fw.stopped = true
	fw.mu.Unlock()

	// Pending debounce timers must not fire after stop.
	fw.debounceMu.Lock()
	for path, timer := range fw.debounce {
		timer.Stop()
		delete(fw.debounce, path)
	}
	fw.debounceMu.Unlock()

	if wasRunning {
		close(fw.stopCh)
	}
	return fw.watcher.Close()
}

func (fw *TemplateWatcher) addWatchesRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Directory might not exist yet
		}
		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				fw.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
}

func (fw *TemplateWatcher) run() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))

		case <-fw.stopCh:
			return
		}
	}
}

func (fw *TemplateWatcher) handleEvent(event fsnotify.Event) {
	// Editors write temp and backup files next to the real one.
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = fw.watcher.Add(event.Name)
		}
	}

	// Coalesce bursts of writes to the same file.
	fw.debounceMu.Lock()
	if timer, exists := fw.debounce[event.Name]; exists {
		timer.Stop()
	}
	fw.debounce[event.Name] = time.AfterFunc(100*time.Millisecond, func() {
		fw.emitChange(event)
		fw.debounceMu.Lock()
		delete(fw.debounce, event.Name)
		fw.debounceMu.Unlock()
	})
	fw.debounceMu.Unlock()
}

func (fw *TemplateWatcher) emitChange(event fsnotify.Event) {
	fw.mu.RLock()
	if fw.stopped {
		fw.mu.RUnlock()
		return
	}
	subs := make([]ChangeSubscriber, len(fw.subscribers))
	copy(subs, fw.subscribers)
	fw.mu.RUnlock()

	change := fw.classifyChange(event)
	if change.Kind == FileChangeKindUnknown {
		return
	}
	fw.logger.Debug("file changed", zap.String("path", change.Path), zap.String("type", string(change.Type)))

	for _, sub := range subs {
		sub.OnFileChange(change)
	}
}

func (fw *TemplateWatcher) classifyChange(event fsnotify.Event) FileChange {
	relPath, err := filepath.Rel(fw.dir, event.Name)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return FileChange{Kind: FileChangeKindUnknown}
	}

	change := FileChange{Path: filepath.ToSlash(relPath)}

	switch {
	case event.Op&fsnotify.Create != 0:
		change.Type = FileChangeCreated
	case event.Op&fsnotify.Write != 0:
		change.Type = FileChangeModified
	case event.Op&fsnotify.Remove != 0:
		change.Type = FileChangeDeleted
	case event.Op&fsnotify.Rename != 0:
		change.Type = FileChangeDeleted // Rename source is effectively deleted
	default:
		return FileChange{Kind: FileChangeKindUnknown}
	}

	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".html", ".tmpl":
		change.Kind = FileChangeKindTemplate
	case ".css", ".js", ".svg":
		change.Kind = FileChangeKindStatic
	default:
		return FileChange{Kind: FileChangeKindUnknown}
	}
	return change
}
