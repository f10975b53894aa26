package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusmedia/gallery/internal/kv"
	"github.com/campusmedia/gallery/internal/model"
)

const bookmarkKeyPrefix = "bookmarks:"

type BookmarkService struct {
	resources *ResourceService
	store     kv.Store
}

func NewBookmarkService(resources *ResourceService, store kv.Store) *BookmarkService {
	return &BookmarkService{
		resources: resources,
		store:     store,
	}
}

func bookmarkKey(visitorID string) string {
	return bookmarkKeyPrefix + visitorID
}

// Toggle adds the bookmark when absent and removes it otherwise. It
// reports whether the resource is bookmarked afterwards.
func (s *BookmarkService) Toggle(ctx context.Context, visitorID, resourceID string, now time.Time) (bool, error) {
	if visitorID == "" {
		return false, ErrNoVisitor
	}

	// Looked up before the store transaction: the catalog and the store may
	// share one database connection.
	_, lookupErr := s.resources.Get(ctx, resourceID)

	var bookmarked bool
	err := s.modify(ctx, visitorID, func(list []model.Bookmark) ([]model.Bookmark, error) {
		next, removed := without(list, resourceID)
		if removed {
			bookmarked = false
			return next, nil
		}
		if lookupErr != nil {
			return nil, lookupErr
		}
		bookmarked = true
		return prepend(list, resourceID, now), nil
	})
	return bookmarked, err
}

// Add is idempotent: bookmarking twice keeps the original timestamp.
func (s *BookmarkService) Add(ctx context.Context, visitorID, resourceID string, now time.Time) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	_, err := s.resources.Get(ctx, resourceID)
	if err != nil {
		return err
	}

	return s.modify(ctx, visitorID, func(list []model.Bookmark) ([]model.Bookmark, error) {
		for _, b := range list {
			if b.ResourceID == resourceID {
				return list, nil
			}
		}
		return prepend(list, resourceID, now), nil
	})
}

func (s *BookmarkService) Remove(ctx context.Context, visitorID, resourceID string) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	return s.modify(ctx, visitorID, func(list []model.Bookmark) ([]model.Bookmark, error) {
		next, _ := without(list, resourceID)
		return next, nil
	})
}

// List returns bookmarks newest first.
func (s *BookmarkService) List(ctx context.Context, visitorID string) ([]model.Bookmark, error) {
	if visitorID == "" {
		return nil, ErrNoVisitor
	}
	current, err := s.store.Get(ctx, bookmarkKey(visitorID))
	if errors.Is(err, kv.ErrNotFound) {
		return []model.Bookmark{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	return decodeList[model.Bookmark](current, true), nil
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, visitorID, resourceID string) (bool, error) {
	list, err := s.List(ctx, visitorID)
	if err != nil {
		return false, err
	}
	for _, b := range list {
		if b.ResourceID == resourceID {
			return true, nil
		}
	}
	return false, nil
}

// Resources resolves bookmarks to records. Bookmarks of removed resources
// are skipped.
func (s *BookmarkService) Resources(ctx context.Context, visitorID string) ([]*model.Resource, error) {
	list, err := s.List(ctx, visitorID)
	if err != nil {
		return nil, err
	}

	resources := make([]*model.Resource, 0, len(list))
	for _, b := range list {
		r, err := s.resources.Get(ctx, b.ResourceID)
		if errors.Is(err, ErrResourceNotFound) {
			slog.Debug("skipping bookmark of removed resource", "resource_id", b.ResourceID)
			continue
		}
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, nil
}

func (s *BookmarkService) modify(ctx context.Context, visitorID string, fn func([]model.Bookmark) ([]model.Bookmark, error)) error {
	return kv.Modify(ctx, s.store, bookmarkKey(visitorID), func(current []byte, found bool) ([]byte, bool, error) {
		next, err := fn(decodeList[model.Bookmark](current, found))
		if err != nil {
			return nil, false, err
		}
		b, err := json.Marshal(next)
		return b, true, err
	})
}

func prepend(list []model.Bookmark, resourceID string, now time.Time) []model.Bookmark {
	next := make([]model.Bookmark, 0, len(list)+1)
	next = append(next, model.Bookmark{ResourceID: resourceID, CreatedAt: now.UTC()})
	return append(next, list...)
}

func without(list []model.Bookmark, resourceID string) ([]model.Bookmark, bool) {
	next := make([]model.Bookmark, 0, len(list))
	removed := false
	for _, b := range list {
		if b.ResourceID == resourceID {
			removed = true
			continue
		}
		next = append(next, b)
	}
	return next, removed
}
