package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/guardian-service/internal/cache"
	"github.com/SAP-F-2025/guardian-service/internal/events"
	"github.com/SAP-F-2025/guardian-service/internal/repositories"
	"github.com/SAP-F-2025/guardian-service/internal/repositories/kvstore"
	"github.com/SAP-F-2025/guardian-service/internal/store"
	"github.com/SAP-F-2025/guardian-service/internal/validator"
)

// testEnv wires real services against a miniredis-backed store
type testEnv struct {
	repo      repositories.Repository
	adapter   store.Adapter
	publisher *events.MockEventPublisher
	manager   ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	adapter := store.NewRedisStore(client)
	repo := kvstore.NewKVRepository(kvstore.RepositoryConfig{Adapter: adapter, Logger: logger})
	publisher := events.NewMockEventPublisher(logger)
	cacheHelper := cache.NewCacheHelper(client, "test:")

	manager := NewServiceManager(repo, publisher, cacheHelper, logger, validator.New())
	if err := manager.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize service manager: %v", err)
	}

	return &testEnv{
		repo:      repo,
		adapter:   adapter,
		publisher: publisher,
		manager:   manager,
	}
}

func (e *testEnv) seedUser(t *testing.T, id string, doc map[string]any) {
	t.Helper()
	if err := e.adapter.WriteDocument(context.Background(), "users/"+id, doc); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (e *testEnv) seedStudent(t *testing.T, id, firstName, lastName string, extra map[string]any) {
	t.Helper()
	doc := map[string]any{
		"firstName": firstName,
		"lastName":  lastName,
		"role":      "Student",
	}
	for k, v := range extra {
		doc[k] = v
	}
	e.seedUser(t, id, doc)
}

func (e *testEnv) seedParent(t *testing.T, id string, studentList []string) {
	t.Helper()
	e.seedUser(t, id, map[string]any{
		"uid":          id,
		"firstName":    "Pat",
		"lastName":     "Parent",
		"role":         "Parent",
		"studentList":  studentList,
		"studentCount": len(studentList),
	})
}

func (e *testEnv) readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := e.adapter.ReadSubtree(context.Background(), path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("document %s missing or malformed: %v", path, raw)
	}
	return doc
}

func eventTypes(evs []events.Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}
