package session

import (
	"context"
	"sync"
)

// Storage is the durable key-value port the Store persists records through.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Renewer is implemented by storage keyed by an identifier the visitor
// presents, such as a visitor cookie. Renew switches the storage to a
// freshly issued identifier.
type Renewer interface {
	Renew(ctx context.Context) error
}

// Backend hands out Storage scoped to a namespace, such as one visitor
// of the web shell or one CLI profile.
type Backend interface {
	Scope(namespace string) Storage
}

// MemoryBackend keeps every namespace in process memory.
type MemoryBackend struct {
	mutex      sync.Mutex
	namespaces map[string]map[string]string
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{namespaces: make(map[string]map[string]string)}
}

// NewMemoryStorage returns a single in-memory namespace.
func NewMemoryStorage() Storage {
	return NewMemoryBackend().Scope("")
}

// Scope returns the storage for namespace.
func (backend *MemoryBackend) Scope(namespace string) Storage {
	return &memoryStorage{backend: backend, namespace: namespace}
}

type memoryStorage struct {
	backend   *MemoryBackend
	namespace string
}

func (storage *memoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	storage.backend.mutex.Lock()
	defer storage.backend.mutex.Unlock()
	value, ok := storage.backend.namespaces[storage.namespace][key]
	return value, ok, nil
}

func (storage *memoryStorage) Set(ctx context.Context, key string, value string) error {
	storage.backend.mutex.Lock()
	defer storage.backend.mutex.Unlock()
	entries, ok := storage.backend.namespaces[storage.namespace]
	if !ok {
		entries = make(map[string]string)
		storage.backend.namespaces[storage.namespace] = entries
	}
	entries[key] = value
	return nil
}

func (storage *memoryStorage) Delete(ctx context.Context, key string) error {
	storage.backend.mutex.Lock()
	defer storage.backend.mutex.Unlock()
	entries, ok := storage.backend.namespaces[storage.namespace]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(storage.backend.namespaces, storage.namespace)
	}
	return nil
}
