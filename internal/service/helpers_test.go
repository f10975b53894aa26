package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/campusmedia/gallery/internal/db"
	"github.com/campusmedia/gallery/internal/kv"
	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/campusmedia/gallery/internal/model"
	"github.com/campusmedia/gallery/internal/query"
	"github.com/campusmedia/gallery/internal/repository"
	"github.com/campusmedia/gallery/internal/storage"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) repository.ResourceRepository {
	t.Helper()

	conn, err := db.Init(db.DriverSQLite, filepath.Join(t.TempDir(), "gallery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, db.DriverSQLite))
	return repository.NewResourceRepository(conn)
}

type fixture struct {
	repo      repository.ResourceRepository
	store     *kv.MemoryStore
	files     *memStorage
	views     *ViewAttributor
	resources *ResourceService
	downloads *DownloadService
	bookmarks *BookmarkService
}

// newFixture wires the services over a fresh sqlite catalog. Pass a nil
// files storage to simulate a deployment without S3.
func newFixture(t *testing.T, files *memStorage) *fixture {
	t.Helper()

	repo := newTestRepo(t)
	store := kv.NewMemoryStore()
	views := NewViewAttributor(store, DefaultViewCooldown)

	var s storage.Storage
	if files != nil {
		s = files
	}
	resources := NewResourceService(
		repo,
		query.NewEngine(query.Options{}),
		views,
		s,
		markdown.NewParser(),
		NewRenderCache(16, time.Minute),
	)

	return &fixture{
		repo:      repo,
		store:     store,
		files:     files,
		views:     views,
		resources: resources,
		downloads: NewDownloadService(repo, resources, store, 3),
		bookmarks: NewBookmarkService(resources, store),
	}
}

func (f *fixture) add(t *testing.T, records ...*model.Resource) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, f.repo.Create(context.Background(), r))
	}
}

func record(id, title string) *model.Resource {
	return &model.Resource{
		ID:         id,
		Title:      title,
		Type:       model.ResourceTypeImage,
		Categories: []string{"ภาพถ่าย"},
		Tags:       []string{},
		CreatedAt:  testNow.Add(-24 * time.Hour),
		UpdatedAt:  testNow.Add(-24 * time.Hour),
		FileURL:    "https://media.example.ac.th/" + id + ".jpg",
	}
}

// memStorage is an in-memory storage.Storage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failURL bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Save(_ context.Context, path string, file io.Reader, _ string) error {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(file)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = buf.Bytes()
	return nil
}

func (m *memStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) URL(_ context.Context, path string) (string, error) {
	if m.failURL {
		return "", errors.New("presign failed")
	}
	return "https://files.example/" + path + "?signed", nil
}

func (m *memStorage) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

// mockRepo lets a test replace single repository calls.
type mockRepo struct {
	repository.ResourceRepository
	allFn            func(ctx context.Context) ([]*model.Resource, error)
	incrementViewsFn func(ctx context.Context, id string) (int, error)
}

func (m *mockRepo) All(ctx context.Context) ([]*model.Resource, error) {
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return m.ResourceRepository.All(ctx)
}

func (m *mockRepo) IncrementViews(ctx context.Context, id string) (int, error) {
	if m.incrementViewsFn != nil {
		return m.incrementViewsFn(ctx, id)
	}
	return m.ResourceRepository.IncrementViews(ctx, id)
}
