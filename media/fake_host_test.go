package media

import (
	"context"
	"errors"
	"io"
	"sync"
)

var errHostDown = errors.New("host unavailable")

// fakeHost records calls and fails Remove for ids listed in failures, the
// given number of times.
type fakeHost struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	removed   []string
	removeErr int
	failures  map[string]int
	uploadErr error
}

func newFakeHost() *fakeHost {
	return &fakeHost{uploads: map[string][]byte{}, failures: map[string]int{}}
}

func (h *fakeHost) Name() string {
	return "fake"
}

func (h *fakeHost) Upload(_ context.Context, id string, upload Upload) (string, error) {
	if h.uploadErr != nil {
		return "", h.uploadErr
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uploads[id] = data
	return "https://cdn.example.com/images/" + id + extension(upload), nil
}

func (h *fakeHost) Remove(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures[id] > 0 {
		h.failures[id]--
		h.removeErr++
		return errHostDown
	}
	h.removed = append(h.removed, id)
	return nil
}

func (h *fakeHost) removedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.removed...)
}
