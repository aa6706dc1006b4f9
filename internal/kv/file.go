package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File keeps every key in a single JSON document on disk, the same way a
// browser's localStorage keeps string values. The document is re-read on
// each call so writes made by other processes are visible; nothing stops two
// processes from overwriting each other.
type File struct {
	mu        sync.Mutex
	path      string
	lastWrite []byte
}

var _ Backend = (*File)(nil)

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("kv: file backend needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kv: create data directory: %w", err)
	}
	return &File{path: filepath.Clean(path)}, nil
}

// Path of the backing document.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[key] = string(value)
	return f.save(doc)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.save(doc)
}

func (f *File) Close() error { return nil }

func (f *File) load() (map[string]string, error) {
	doc := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: read %s: %w", f.path, err)
	}
	// an empty file reads as an empty document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kv: decode %s: %w", f.path, err)
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the
// document so readers never observe a half-written file.
func (f *File) save(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("kv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("kv: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("kv: replace %s: %w", f.path, err)
	}
	f.lastWrite = data
	return nil
}

// wroteLast reports whether data is exactly what this instance last wrote.
func (f *File) wroteLast(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWrite != nil && bytes.Equal(f.lastWrite, data)
}
