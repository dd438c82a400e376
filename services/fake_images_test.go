package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"smartpyme-api/storage"
)

// fakeImages is an in-memory ImageStore
type fakeImages struct {
	mu    sync.Mutex
	seq   int
	files map[string][]byte
}

func newFakeImages() *fakeImages {
	return &fakeImages{files: map[string][]byte{}}
}

func (f *fakeImages) Save(_ context.Context, ext string, r io.Reader) (string, error) {
	if ext != ".png" && ext != ".jpg" {
		return "", storage.ErrUnsupportedType
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	path := fmt.Sprintf("img-%d%s", f.seq, ext)
	f.files[path] = data
	return path, nil
}

func (f *fakeImages) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *fakeImages) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok
}

func (f *fakeImages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}
