package model

import (
	"time"
)

// ViewState is the per-resource attribution record used to de-duplicate
// views inside the cooldown window.
type ViewState struct {
	LastViewedAt time.Time `json:"lastViewedAt"`
	Count        int       `json:"count"`
}

type Bookmark struct {
	ResourceID string    `json:"resourceId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DownloadEvent struct {
	ResourceID   string    `json:"resourceId"`
	DownloadedAt time.Time `json:"downloadedAt"`
}
