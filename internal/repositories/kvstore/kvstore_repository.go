// Package kvstore implements the repository interfaces on top of the
// document store adapter.
package kvstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/store"
)

// KVRepository implements the main Repository interface
type KVRepository struct {
	adapter store.Adapter

	user  repositories.UserRepository
	class repositories.ClassRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	Adapter store.Adapter
	Logger  *slog.Logger
}

// NewKVRepository creates a new repository aggregate with all sub-repositories
func NewKVRepository(config RepositoryConfig) repositories.Repository {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &KVRepository{
		adapter: config.Adapter,
		user:    NewUserKV(config.Adapter, logger),
		class:   NewClassKV(config.Adapter, logger),
	}
}

func (r *KVRepository) User() repositories.UserRepository {
	return r.user
}

func (r *KVRepository) Class() repositories.ClassRepository {
	return r.class
}

func (r *KVRepository) Ping(ctx context.Context) error {
	return r.adapter.Ping(ctx)
}

func (r *KVRepository) Close() error {
	return r.adapter.Close()
}

// DefaultRepositoryManager manages the repository lifecycle
type DefaultRepositoryManager struct {
	repository repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &DefaultRepositoryManager{
		repository: NewKVRepository(config),
	}
}

func (m *DefaultRepositoryManager) GetRepository() repositories.Repository {
	if m.repository == nil {
		panic("repository manager not initialized")
	}
	return m.repository
}

func (m *DefaultRepositoryManager) HealthCheck(ctx context.Context) error {
	if err := m.repository.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check: %w", err)
	}
	return nil
}

func (m *DefaultRepositoryManager) Shutdown(ctx context.Context) error {
	return m.repository.Close()
}
