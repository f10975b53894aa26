package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/campusmedia/gallery/internal/model"
	"github.com/campusmedia/gallery/internal/query"
	"github.com/campusmedia/gallery/internal/repository"
	"github.com/campusmedia/gallery/internal/storage"
	"github.com/campusmedia/gallery/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrNoContent          = errors.New("a file or file url is required")
)

type ResourceService struct {
	repo    repository.ResourceRepository
	engine  *query.Engine
	views   *ViewAttributor
	storage storage.Storage
	parser  *markdown.Parser
	cache   *RenderCache
}

// NewResourceService wires the catalog services. store may be nil when no
// object storage is configured.
func NewResourceService(
	repo repository.ResourceRepository,
	engine *query.Engine,
	views *ViewAttributor,
	store storage.Storage,
	parser *markdown.Parser,
	cache *RenderCache,
) *ResourceService {
	return &ResourceService{
		repo:    repo,
		engine:  engine,
		views:   views,
		storage: store,
		parser:  parser,
		cache:   cache,
	}
}

func (s *ResourceService) Engine() *query.Engine {
	return s.engine
}

// Search evaluates q against the whole catalog.
func (s *ResourceService) Search(ctx context.Context, q query.Query, now time.Time) (query.Result, error) {
	start := time.Now()
	defer func() {
		searchTotal.Inc()
		searchDuration.Observe(time.Since(start).Seconds())
	}()

	collection, err := s.repo.All(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.engine.Evaluate(collection, q, now), nil
}

func (s *ResourceService) Facets(ctx context.Context) (query.Facets, error) {
	collection, err := s.repo.All(ctx)
	if err != nil {
		return query.Facets{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.engine.Facets(collection), nil
}

func (s *ResourceService) Get(ctx context.Context, id string) (*model.Resource, error) {
	r, err := s.repo.ByID(ctx, id)
	if errors.Is(err, repository.ErrResourceNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return r, nil
}

type ResourceDetail struct {
	Resource        *model.Resource `json:"resource"`
	DescriptionHTML string          `json:"descriptionHtml"`
	View            ViewResult      `json:"view"`
}

// Detail returns a resource for its detail page and records the view.
// A counted view bumps the persisted viewCount.
func (s *ResourceService) Detail(ctx context.Context, id, visitorID string, now time.Time) (*ResourceDetail, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view := s.views.ForVisitor(visitorID).RecordView(ctx, id, now)
	if view.Counted {
		count, err := s.repo.IncrementViews(ctx, id)
		if err != nil {
			slog.Error("failed to increment view count", "error", err, "resource_id", id)
		} else {
			r.ViewCount = count
		}
	}

	return &ResourceDetail{
		Resource:        r,
		DescriptionHTML: s.renderDescription(r),
		View:            view,
	}, nil
}

func (s *ResourceService) renderDescription(r *model.Resource) string {
	if r.Description == "" {
		return ""
	}
	html, ok := s.cache.Get(r)
	if ok {
		return html
	}

	out, err := s.parser.Render([]byte(r.Description))
	if err != nil {
		slog.Warn("failed to render description", "error", err, "resource_id", r.ID)
		return ""
	}
	html = string(out)
	s.cache.Set(r, html)
	return html
}

// DownloadURL returns where the file of r can be fetched from.
func (s *ResourceService) DownloadURL(ctx context.Context, r *model.Resource) (string, error) {
	if !r.HasFile() {
		return r.FileURL, nil
	}
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	return s.storage.URL(ctx, r.StoragePath)
}

type UploadInput struct {
	Title        string
	Description  string
	Type         string
	Categories   []string
	Tags         []string
	ThumbnailURL string
	FileURL      string
	UploadedBy   string

	// File is optional. The caller validates type and size before Upload.
	File        io.Reader
	Filename    string
	ContentType string
}

// Upload creates a new resource. createdAt and updatedAt are both now.
func (s *ResourceService) Upload(ctx context.Context, in UploadInput, now time.Time) (*model.Resource, error) {
	r := &model.Resource{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Type:         strings.TrimSpace(in.Type),
		Categories:   model.NormalizeStrings(in.Categories),
		Tags:         model.NormalizeStrings(in.Tags),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
		ThumbnailURL: strings.TrimSpace(in.ThumbnailURL),
		FileURL:      strings.TrimSpace(in.FileURL),
		UploadedBy:   strings.TrimSpace(in.UploadedBy),
	}

	err := validation.ValidateResource(validation.ResourceFields{
		Title:        r.Title,
		Description:  r.Description,
		Type:         r.Type,
		Categories:   r.Categories,
		Tags:         r.Tags,
		ThumbnailURL: r.ThumbnailURL,
		FileURL:      r.FileURL,
	})
	if err != nil {
		return nil, err
	}

	if in.File == nil && r.FileURL == "" {
		return nil, ErrNoContent
	}

	if in.File != nil {
		if s.storage == nil {
			return nil, ErrStorageUnavailable
		}
		r.StoragePath = storagePath(r, in.Filename)

		err = s.storage.Save(ctx, r.StoragePath, in.File, in.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to save file: %w", err)
		}
	}

	err = s.repo.Create(ctx, r)
	if err != nil {
		if r.HasFile() {
			delErr := s.storage.Delete(ctx, r.StoragePath)
			if delErr != nil {
				slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", r.StoragePath)
			}
		}
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	slog.Info("resource uploaded", "resource_id", r.ID, "type", r.Type, "uploaded_by", r.UploadedBy)
	return r, nil
}

// storagePath groups uploads by type, e.g. resources/videos/<id>.mp4.
func storagePath(r *model.Resource, filename string) string {
	folder := strings.ToLower(r.Type)
	if folder == "" {
		folder = "other"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("resources", folder+"s", r.ID+ext)
}

// Remove deletes a resource together with its stored file (best effort)
// and its view attribution state.
func (s *ResourceService) Remove(ctx context.Context, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrResourceNotFound) {
		return ErrResourceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	if r.HasFile() && s.storage != nil {
		delErr := s.storage.Delete(ctx, r.StoragePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage", "error", delErr, "path", r.StoragePath)
		}
	}

	err = s.views.Forget(ctx, id)
	if err != nil {
		slog.Warn("failed to clear view state", "error", err, "resource_id", id)
	}
	s.cache.Forget(id)

	slog.Info("resource removed", "resource_id", id)
	return nil
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Import upserts records in order. Existing ids keep their position and
// their counters never go down.
func (s *ResourceService) Import(ctx context.Context, records []*model.Resource) (ImportResult, error) {
	var result ImportResult
	for _, r := range records {
		_, err := s.repo.ByID(ctx, r.ID)
		exists := err == nil
		if err != nil && !errors.Is(err, repository.ErrResourceNotFound) {
			return result, fmt.Errorf("failed to look up %s: %w", r.ID, err)
		}

		err = s.repo.Upsert(ctx, r)
		if err != nil {
			return result, fmt.Errorf("failed to import %s: %w", r.ID, err)
		}
		if exists {
			result.Updated++
		} else {
			result.Created++
		}
	}
	return result, nil
}

// Seed imports records only into an empty catalog.
func (s *ResourceService) Seed(ctx context.Context, records []*model.Resource) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count resources: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	result, err := s.Import(ctx, records)
	if err != nil {
		return false, err
	}
	slog.Info("catalog seeded", "created", result.Created)
	return true, nil
}
