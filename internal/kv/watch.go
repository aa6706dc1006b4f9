package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher notices when a File document is rewritten by another process. It
// only reports; the store keeps its last-writer-wins behaviour.
type Watcher struct {
	file *File
	fw   *fsnotify.Watcher
}

// Watch starts watching the document's directory. The rename-based save
// replaces the inode, so watching the file itself would go stale after the
// first write.
func (f *File) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("kv: start watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(f.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("kv: watch %s: %w", filepath.Dir(f.path), err)
	}
	return &Watcher{file: f, fw: fw}, nil
}

// Run calls onChange for every foreign modification until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.file.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			data, err := os.ReadFile(w.file.path)
			if err != nil || w.file.wroteLast(data) {
				continue
			}
			onChange()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("kv: watcher: %w", err)
		}
	}
}
