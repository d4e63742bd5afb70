package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Memory keeps values in a go-cache instance and snapshots them to a gob file on Close,
// so a restart of a single-node deployment keeps every browser's session.
type Memory struct {
	items        *cache.Cache
	snapshotPath string
	logger       *zap.Logger
}

var _ Backend = (*Memory)(nil)

// NewMemory creates the backend. An empty snapshotPath disables persistence.
func NewMemory(snapshotPath string, logger *zap.Logger) (*Memory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Memory{
		items:        cache.New(cache.NoExpiration, 0),
		snapshotPath: snapshotPath,
		logger:       logger,
	}
	if snapshotPath == "" {
		return m, nil
	}
	if err := m.items.LoadFile(snapshotPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No storage snapshot found, starting empty", zap.String("path", snapshotPath))
			return m, nil
		}
		return nil, fmt.Errorf("failed to load storage snapshot: %w", err)
	}
	logger.Info("Storage snapshot loaded",
		zap.String("path", snapshotPath),
		zap.Int("items", m.items.ItemCount()))
	return m, nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("unexpected value type %T for key %s", v, key)
	}
	return s, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

// Close writes the snapshot file when persistence is enabled.
func (m *Memory) Close() error {
	if m.snapshotPath == "" {
		return nil
	}
	if err := m.items.SaveFile(m.snapshotPath); err != nil {
		return fmt.Errorf("failed to save storage snapshot: %w", err)
	}
	m.logger.Info("Storage snapshot saved",
		zap.String("path", m.snapshotPath),
		zap.Int("items", m.items.ItemCount()))
	return nil
}
