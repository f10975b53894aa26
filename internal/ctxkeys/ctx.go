package ctxkeys

import (
	"context"

	"github.com/campusmedia/gallery/internal/config"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	VisitorKey contextKey = "visitor_id"
	AdminKey   contextKey = "admin"
	ConfigKey  contextKey = "config"
)

// VisitorID is the anonymous id of the browser making the request.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(VisitorKey).(string)
	return id
}

func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, VisitorKey, id)
}

// Admin returns the authenticated admin username, or "" for visitors.
func Admin(ctx context.Context) string {
	name, _ := ctx.Value(AdminKey).(string)
	return name
}

func WithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, AdminKey, username)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}
