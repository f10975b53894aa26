package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/campusmedia/gallery/internal/kv"
	"github.com/campusmedia/gallery/internal/model"
)

const (
	DefaultViewCooldown = 30 * time.Minute

	viewKeyPrefix = "views:"
)

type ViewResult struct {
	Counted  bool `json:"counted"`
	NewCount int  `json:"newCount"`
}

// ViewAttributor decides whether a detail view counts. A view counts when
// more than cooldown has passed since the last counted view of the same
// resource in the same scope.
type ViewAttributor struct {
	store    kv.Store
	cooldown time.Duration
	scope    string
}

func NewViewAttributor(store kv.Store, cooldown time.Duration) *ViewAttributor {
	if cooldown <= 0 {
		cooldown = DefaultViewCooldown
	}
	return &ViewAttributor{
		store:    store,
		cooldown: cooldown,
	}
}

// ForVisitor returns an attributor whose cooldown is tracked per visitor,
// the way a browser keeps its own local state. An empty id returns the
// shared scope.
func (a *ViewAttributor) ForVisitor(visitorID string) *ViewAttributor {
	if visitorID == "" {
		return a
	}
	return &ViewAttributor{
		store:    a.store,
		cooldown: a.cooldown,
		scope:    visitorID,
	}
}

func (a *ViewAttributor) Cooldown() time.Duration {
	return a.cooldown
}

func (a *ViewAttributor) key(resourceID string) string {
	if a.scope == "" {
		return viewKeyPrefix + resourceID
	}
	return viewKeyPrefix + a.scope + ":" + resourceID
}

// RecordView never fails. When the store cannot be read or written the
// view is counted as the first one.
func (a *ViewAttributor) RecordView(ctx context.Context, resourceID string, now time.Time) ViewResult {
	key := a.key(resourceID)
	var result ViewResult

	err := kv.Modify(ctx, a.store, key, func(current []byte, found bool) ([]byte, bool, error) {
		state := decodeViewState(key, current, found)

		if !state.LastViewedAt.IsZero() && now.Sub(state.LastViewedAt) <= a.cooldown {
			result = ViewResult{Counted: false, NewCount: state.Count}
			return nil, false, nil
		}

		state.Count++
		state.LastViewedAt = now
		result = ViewResult{Counted: true, NewCount: state.Count}

		next, err := json.Marshal(state)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		slog.Warn("view attribution store failed, counting view", "error", err, "resource_id", resourceID)
		viewsTotal.WithLabelValues("degraded").Inc()
		return ViewResult{Counted: true, NewCount: 1}
	}

	if result.Counted {
		viewsTotal.WithLabelValues("counted").Inc()
	} else {
		viewsTotal.WithLabelValues("suppressed").Inc()
	}
	return result
}

// State returns the stored attribution state of resourceID in this scope.
func (a *ViewAttributor) State(ctx context.Context, resourceID string) (model.ViewState, bool, error) {
	key := a.key(resourceID)
	current, err := a.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return model.ViewState{}, false, nil
	}
	if err != nil {
		return model.ViewState{}, false, err
	}
	return decodeViewState(key, current, true), true, nil
}

// Forget removes the attribution state of resourceID in every scope.
func (a *ViewAttributor) Forget(ctx context.Context, resourceID string) error {
	keys, err := a.store.Keys(ctx, viewKeyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if key != viewKeyPrefix+resourceID && !strings.HasSuffix(key, ":"+resourceID) {
			continue
		}
		err = a.store.Remove(ctx, key)
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeViewState treats corrupt state as never viewed.
func decodeViewState(key string, current []byte, found bool) model.ViewState {
	var state model.ViewState
	if !found {
		return state
	}
	err := json.Unmarshal(current, &state)
	if err != nil {
		slog.Warn("discarding corrupt view state", "error", err, "key", key)
		return model.ViewState{}
	}
	if state.Count < 0 {
		state.Count = 0
	}
	return state
}
