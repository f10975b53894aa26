package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campusmedia/gallery/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrResourceNotFound  = errors.New("resource not found")
	ErrDuplicateResource = errors.New("resource id already exists")
)

type ResourceRepository interface {
	// All returns every resource in collection (insertion) order.
	All(ctx context.Context) ([]*model.Resource, error)
	ByID(ctx context.Context, id string) (*model.Resource, error)
	Create(ctx context.Context, resource *model.Resource) error
	// Upsert inserts or replaces metadata. Replacing never lowers counters
	// and keeps the original collection position.
	Upsert(ctx context.Context, resource *model.Resource) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int, error)
	IncrementDownloads(ctx context.Context, id string) (int, error)
	Count(ctx context.Context) (int, error)
}

const resourceColumns = `id, seq, title, description, type, categories, tags, created_at, updated_at,
	view_count, download_count, thumbnail_url, file_url, uploaded_by, storage_path`

// resourceRow mirrors the resources table. Categories and tags are JSON
// arrays in TEXT columns so the schema works on SQLite and Postgres alike.
type resourceRow struct {
	ID            string       `db:"id"`
	Seq           int64        `db:"seq"`
	Title         string       `db:"title"`
	Description   string       `db:"description"`
	Type          string       `db:"type"`
	Categories    string       `db:"categories"`
	Tags          string       `db:"tags"`
	CreatedAt     sql.NullTime `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
	ViewCount     int          `db:"view_count"`
	DownloadCount int          `db:"download_count"`
	ThumbnailURL  string       `db:"thumbnail_url"`
	FileURL       string       `db:"file_url"`
	UploadedBy    string       `db:"uploaded_by"`
	StoragePath   string       `db:"storage_path"`
}

func (row *resourceRow) toModel() *model.Resource {
	r := &model.Resource{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Type:          row.Type,
		Categories:    decodeList(row.Categories),
		Tags:          decodeList(row.Tags),
		ViewCount:     row.ViewCount,
		DownloadCount: row.DownloadCount,
		ThumbnailURL:  row.ThumbnailURL,
		FileURL:       row.FileURL,
		UploadedBy:    row.UploadedBy,
		StoragePath:   row.StoragePath,
	}
	if row.CreatedAt.Valid {
		r.CreatedAt = row.CreatedAt.Time.UTC()
	}
	if row.UpdatedAt.Valid {
		r.UpdatedAt = row.UpdatedAt.Time.UTC()
	}
	return r
}

func decodeList(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	err := json.Unmarshal([]byte(raw), &list)
	if err != nil {
		return []string{}
	}
	return list
}

func encodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

type resourceRepository struct {
	db *sqlx.DB
}

func NewResourceRepository(db *sqlx.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) All(ctx context.Context) ([]*model.Resource, error) {
	var rows []resourceRow
	query := `SELECT ` + resourceColumns + ` FROM resources ORDER BY seq ASC`

	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	resources := make([]*model.Resource, 0, len(rows))
	for i := range rows {
		resources = append(resources, rows[i].toModel())
	}
	return resources, nil
}

func (r *resourceRepository) ByID(ctx context.Context, id string) (*model.Resource, error) {
	var row resourceRow
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return row.toModel(), nil
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	_, err := r.ByID(ctx, resource.ID)
	if err == nil {
		return ErrDuplicateResource
	}
	if !errors.Is(err, ErrResourceNotFound) {
		return err
	}

	query := `INSERT INTO resources (` + resourceColumns + `)
	          VALUES ($1, (SELECT COALESCE(MAX(seq), 0) + 1 FROM resources), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.ExecContext(ctx, query,
		resource.ID,
		resource.Title,
		resource.Description,
		resource.Type,
		encodeList(resource.Categories),
		encodeList(resource.Tags),
		nullTime(resource.CreatedAt),
		nullTime(resource.UpdatedAt),
		resource.ViewCount,
		resource.DownloadCount,
		resource.ThumbnailURL,
		resource.FileURL,
		resource.UploadedBy,
		resource.StoragePath,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Upsert(ctx context.Context, resource *model.Resource) error {
	existing, err := r.ByID(ctx, resource.ID)
	if errors.Is(err, ErrResourceNotFound) {
		return r.Create(ctx, resource)
	}
	if err != nil {
		return err
	}

	query := `UPDATE resources
	          SET title = $1, description = $2, type = $3, categories = $4, tags = $5,
	              created_at = $6, updated_at = $7, view_count = $8, download_count = $9,
	              thumbnail_url = $10, file_url = $11, uploaded_by = $12, storage_path = $13
	          WHERE id = $14`

	_, err = r.db.ExecContext(ctx, query,
		resource.Title,
		resource.Description,
		resource.Type,
		encodeList(resource.Categories),
		encodeList(resource.Tags),
		nullTime(resource.CreatedAt),
		nullTime(resource.UpdatedAt),
		max(existing.ViewCount, resource.ViewCount),
		max(existing.DownloadCount, resource.DownloadCount),
		resource.ThumbnailURL,
		resource.FileURL,
		resource.UploadedBy,
		resource.StoragePath,
		resource.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM resources WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (r *resourceRepository) IncrementViews(ctx context.Context, id string) (int, error) {
	return r.increment(ctx, id, "view_count")
}

func (r *resourceRepository) IncrementDownloads(ctx context.Context, id string) (int, error) {
	return r.increment(ctx, id, "download_count")
}

// increment bumps a counter column in one UPDATE statement so concurrent
// requests cannot lose updates. column is never user input.
func (r *resourceRepository) increment(ctx context.Context, id, column string) (int, error) {
	query := `UPDATE resources SET ` + column + ` = ` + column + ` + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ErrResourceNotFound
	}

	var count int
	err = r.db.GetContext(ctx, &count, `SELECT `+column+` FROM resources WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", column, err)
	}
	return count, nil
}

func (r *resourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM resources`)
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}
