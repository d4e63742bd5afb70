// Package storage is the durable key/value medium that stands in for a browser's
// localStorage. Every browser context gets its own prefixed Namespace on a shared Backend.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Backend is a durable string key/value store shared by all browser contexts.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// KV is the narrow read/write contract consumers depend on.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

const keyPrefix = "rms"

// Namespace scopes a Backend to one browser context and one logical region
// (session, wizard). Two namespaces never see each other's keys.
type Namespace struct {
	backend Backend
	prefix  string
}

var _ KV = (*Namespace)(nil)

func NewNamespace(backend Backend, clientID, name string) *Namespace {
	return &Namespace{
		backend: backend,
		prefix:  strings.Join([]string{keyPrefix, clientID, name}, ":") + ":",
	}
}

func (n *Namespace) key(k string) string { return n.prefix + k }

func (n *Namespace) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := n.backend.Get(ctx, n.key(key))
	if err != nil {
		return "", false, fmt.Errorf("storage get %s: %w", key, err)
	}
	return v, ok, nil
}

func (n *Namespace) Set(ctx context.Context, key, value string) error {
	if err := n.backend.Set(ctx, n.key(key), value); err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

func (n *Namespace) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.key(k)
	}
	if err := n.backend.Delete(ctx, full...); err != nil {
		return fmt.Errorf("storage delete %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}
