package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusmedia/gallery/internal/ctxkeys"
	"github.com/campusmedia/gallery/internal/query"
	"github.com/campusmedia/gallery/internal/service"
)

type ResourceHandler struct {
	resourceService *service.ResourceService
	downloadService *service.DownloadService
	bookmarkService *service.BookmarkService
	now             func() time.Time
}

func NewResourceHandler(
	resourceService *service.ResourceService,
	downloadService *service.DownloadService,
	bookmarkService *service.BookmarkService,
) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		downloadService: downloadService,
		bookmarkService: bookmarkService,
		now:             time.Now,
	}
}

type listResponse struct {
	query.Result
	Query query.Query `json:"query"`
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := query.FromValues(r.URL.Query())

	result, err := h.resourceService.Search(r.Context(), q, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Result: result, Query: q})
}

func (h *ResourceHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.resourceService.Facets(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

type detailResponse struct {
	*service.ResourceDetail
	Bookmarked bool `json:"bookmarked"`
}

// Show returns one resource and records a view for the visitor.
func (h *ResourceHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	visitorID := ctxkeys.VisitorID(r.Context())

	detail, err := h.resourceService.Detail(r.Context(), id, visitorID, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	bookmarked := false
	if visitorID != "" {
		bookmarked, err = h.bookmarkService.IsBookmarked(r.Context(), visitorID, id)
		if err != nil {
			slog.Warn("failed to load bookmark state", "error", err, "resource_id", id)
		}
	}

	writeJSON(w, http.StatusOK, detailResponse{ResourceDetail: detail, Bookmarked: bookmarked})
}

// Download counts the download and returns where to fetch the file.
func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	visitorID := ctxkeys.VisitorID(r.Context())

	receipt, err := h.downloadService.RecordDownload(r.Context(), visitorID, id, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
