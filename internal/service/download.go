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
	"github.com/campusmedia/gallery/internal/repository"
)

const (
	DefaultHistoryLimit = 50

	downloadKeyPrefix = "downloads:"
)

var ErrNoVisitor = errors.New("visitor id is required")

type DownloadService struct {
	repo      repository.ResourceRepository
	resources *ResourceService
	store     kv.Store
	limit     int
}

func NewDownloadService(repo repository.ResourceRepository, resources *ResourceService, store kv.Store, limit int) *DownloadService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &DownloadService{
		repo:      repo,
		resources: resources,
		store:     store,
		limit:     limit,
	}
}

type DownloadReceipt struct {
	ResourceID    string `json:"resourceId"`
	URL           string `json:"url"`
	DownloadCount int    `json:"downloadCount"`
}

// RecordDownload counts every call; downloads have no cooldown. The
// visitor history is best effort and skipped for anonymous callers.
func (s *DownloadService) RecordDownload(ctx context.Context, visitorID, resourceID string, now time.Time) (*DownloadReceipt, error) {
	r, err := s.resources.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	url, err := s.resources.DownloadURL(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download url: %w", err)
	}

	count, err := s.repo.IncrementDownloads(ctx, resourceID)
	if errors.Is(err, repository.ErrResourceNotFound) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment download count: %w", err)
	}
	downloadsTotal.Inc()

	if visitorID != "" {
		err = s.remember(ctx, visitorID, resourceID, now)
		if err != nil {
			slog.Warn("failed to update download history", "error", err, "resource_id", resourceID)
		}
	}

	return &DownloadReceipt{
		ResourceID:    resourceID,
		URL:           url,
		DownloadCount: count,
	}, nil
}

// remember moves resourceID to the front of the history and trims it.
func (s *DownloadService) remember(ctx context.Context, visitorID, resourceID string, now time.Time) error {
	return kv.Modify(ctx, s.store, downloadKeyPrefix+visitorID, func(current []byte, found bool) ([]byte, bool, error) {
		history := decodeList[model.DownloadEvent](current, found)

		next := make([]model.DownloadEvent, 0, len(history)+1)
		next = append(next, model.DownloadEvent{ResourceID: resourceID, DownloadedAt: now.UTC()})
		for _, event := range history {
			if event.ResourceID == resourceID {
				continue
			}
			next = append(next, event)
		}
		if len(next) > s.limit {
			next = next[:s.limit]
		}

		b, err := json.Marshal(next)
		return b, true, err
	})
}

// History returns the visitor's downloads, newest first.
func (s *DownloadService) History(ctx context.Context, visitorID string) ([]model.DownloadEvent, error) {
	if visitorID == "" {
		return nil, ErrNoVisitor
	}
	current, err := s.store.Get(ctx, downloadKeyPrefix+visitorID)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.DownloadEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load download history: %w", err)
	}
	return decodeList[model.DownloadEvent](current, true), nil
}

func (s *DownloadService) ClearHistory(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	err := s.store.Remove(ctx, downloadKeyPrefix+visitorID)
	if err != nil {
		return fmt.Errorf("failed to clear download history: %w", err)
	}
	return nil
}

// decodeList reads a JSON array stored in the kv store. Corrupt values
// read as empty so one bad entry never locks a visitor out.
func decodeList[T any](current []byte, found bool) []T {
	list := []T{}
	if !found {
		return list
	}
	err := json.Unmarshal(current, &list)
	if err != nil {
		slog.Warn("discarding corrupt visitor state", "error", err)
		return []T{}
	}
	return list
}
