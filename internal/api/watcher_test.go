package api

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/forts/testutil"
)

func TestClassifyChange(t *testing.T) {
	fw := &TemplateWatcher{dir: "/app/templates"}

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		wantKind FileChangeKind
		wantType FileChangeType
		wantPath string
	}{
		{"template created", "/app/templates/list.html", fsnotify.Create, FileChangeKindTemplate, FileChangeCreated, "list.html"},
		{"template modified", "/app/templates/partials/card.html", fsnotify.Write, FileChangeKindTemplate, FileChangeModified, "partials/card.html"},
		{"template removed", "/app/templates/old.tmpl", fsnotify.Remove, FileChangeKindTemplate, FileChangeDeleted, "old.tmpl"},
		{"rename is a delete", "/app/templates/detail.html", fsnotify.Rename, FileChangeKindTemplate, FileChangeDeleted, "detail.html"},
		{"stylesheet", "/app/templates/site.css", fsnotify.Write, FileChangeKindStatic, FileChangeModified, "site.css"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := fw.classifyChange(fsnotify.Event{Name: filepath.FromSlash(tt.path), Op: tt.op})
			assert.Equal(t, tt.wantKind, change.Kind)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, tt.wantPath, change.Path)
		})
	}
}

func TestClassifyChange_Unknown(t *testing.T) {
	fw := &TemplateWatcher{dir: "/app/templates"}

	for _, path := range []string{"/app/templates/notes.txt", "/app/other/list.html", "/app/templates/data.json"} {
		change := fw.classifyChange(fsnotify.Event{Name: path, Op: fsnotify.Write})
		assert.Equal(t, FileChangeKindUnknown, change.Kind, path)
	}
	change := fw.classifyChange(fsnotify.Event{Name: "/app/templates/list.html", Op: fsnotify.Chmod})
	assert.Equal(t, FileChangeKindUnknown, change.Kind)
}

type recordingSubscriber struct {
	mu      sync.Mutex
	changes []FileChange
}

func (r *recordingSubscriber) OnFileChange(change FileChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func TestTemplateWatcher_SubscribeUnsubscribe(t *testing.T) {
	fw := &TemplateWatcher{}
	a, b := &recordingSubscriber{}, &recordingSubscriber{}

	fw.Subscribe(a)
	fw.Subscribe(b)
	fw.Unsubscribe(a)

	require.Len(t, fw.subscribers, 1)
	assert.Same(t, b, fw.subscribers[0])
}

func TestTemplateWatcher_StoppedPreventsRestart(t *testing.T) {
	fw := &TemplateWatcher{stopped: true}
	assert.Error(t, fw.Start())
}

func TestTemplateWatcher_EmitsDebouncedChange(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	fw, err := NewTemplateWatcher(dir, nil)
	require.NoError(t, err)
	sub := &recordingSubscriber{}
	fw.Subscribe(sub)
	require.NoError(t, fw.Start())
	defer fw.Stop()

	path := filepath.Join(dir, "list.html")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("<p>v"+string(rune('0'+i))+"</p>"), 0644))
	}

	require.Eventually(t, func() bool { return sub.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	sub.mu.Lock()
	assert.Equal(t, FileChangeKindTemplate, sub.changes[0].Kind)
	assert.Equal(t, "list.html", sub.changes[0].Path)
	sub.mu.Unlock()
}

func TestTemplateWatcher_StopIsIdempotent(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	fw, err := NewTemplateWatcher(dir, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start())

	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop())
}
