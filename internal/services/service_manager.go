package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/guardian-service/internal/cache"
	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	cacheHelper    *cache.CacheHelper
	logger         *slog.Logger
	validator      *validator.Validator

	// Service instances
	linkService         LinkService
	searchService       SearchService
	parentService       ParentService
	classService        ClassService
	importExportService ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, eventPublisher events.EventPublisher, cacheHelper *cache.CacheHelper, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	return &serviceManager{
		repo:           repo,
		eventPublisher: eventPublisher,
		cacheHelper:    cacheHelper,
		logger:         logger,
		validator:      validator,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.linkService = NewLinkService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.searchService = NewSearchService(sm.repo, sm.cacheHelper, sm.logger, sm.validator)
	sm.parentService = NewParentService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.classService = NewClassService(sm.repo, sm.logger, sm.validator)
	sm.importExportService = NewImportExportService(sm.repo, sm.eventPublisher, sm.logger, sm.validator, sm.searchService)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) ensureInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Link() LinkService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.linkService
}

func (sm *serviceManager) Search() SearchService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.searchService
}

func (sm *serviceManager) Parent() ParentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.parentService
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.classService
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ensureInitialized()
	return sm.importExportService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Warn("failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	return nil
}
