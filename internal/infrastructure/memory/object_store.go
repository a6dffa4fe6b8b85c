package memory

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

// ObjectStore keeps uploaded images in memory and serves URLs under BaseURL.
type ObjectStore struct {
	mu      sync.RWMutex
	BaseURL string
	objects map[string]Object
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string]Object{}}
}

func (o *ObjectStore) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[key] = Object{ContentType: contentType, Data: data}
	return o.BaseURL + "/" + key, nil
}

func (o *ObjectStore) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.objects, key)
	return nil
}

func (o *ObjectStore) KeyFromURL(url string) (string, bool) {
	prefix := o.BaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (o *ObjectStore) Get(key string) (Object, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	obj, ok := o.objects[key]
	return obj, ok
}

func (o *ObjectStore) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.objects)
}
