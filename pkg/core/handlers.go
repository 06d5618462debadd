package core

import (
	"context"
	"sync"
)

// InprocHandler is the signature for in-process handlers.
// 'in' is the raw request body, 'status' is HTTP status code to send.
type InprocHandler func(ctx context.Context, in []byte) (out []byte, status int, err error)

var (
	handlersMu sync.RWMutex
	handlers   = map[string]InprocHandler{}
)

// Register makes a handler available under a name referenced in manifest.toml
func Register(name string, h InprocHandler) {
	handlersMu.Lock()
	handlers[name] = h
	handlersMu.Unlock()
}

// Lookup retrieves a registered in-proc handler by name.
func Lookup(name string) (InprocHandler, bool) {
	handlersMu.RLock()
	defer handlersMu.RUnlock()
	h, ok := handlers[name]
	return h, ok
}
