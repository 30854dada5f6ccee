package meta

import (
	"sync"
)

// Loader caches interface files for one compilation. Units sharing a
// dependency decode its file once; the cache is never invalidated
// because inputs are immutable for the compilation's lifetime.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]*Module
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Module)}
}

// Load returns the module stored at path, reading it on first use.
// Concurrent callers for the same path may both read the file; the
// first store wins and later callers get the cached document.
func (l *Loader) Load(path string) (*Module, error) {
	l.mu.RLock()
	mod, ok := l.cache[path]
	l.mu.RUnlock()
	if ok {
		return mod, nil
	}

	mod, err := ReadModule(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if prev, ok := l.cache[path]; ok {
		return prev, nil
	}
	l.cache[path] = mod
	return mod, nil
}

// Len returns the number of cached modules.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}
