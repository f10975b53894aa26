package handler

import (
	"net/http"
	"time"

	"github.com/campusmedia/gallery/internal/ctxkeys"
	"github.com/campusmedia/gallery/internal/model"
	"github.com/campusmedia/gallery/internal/service"
)

// MeHandler serves the visitor's own bookmarks and download history.
type MeHandler struct {
	bookmarkService *service.BookmarkService
	downloadService *service.DownloadService
	now             func() time.Time
}

func NewMeHandler(bookmarkService *service.BookmarkService, downloadService *service.DownloadService) *MeHandler {
	return &MeHandler{
		bookmarkService: bookmarkService,
		downloadService: downloadService,
		now:             time.Now,
	}
}

type bookmarksResponse struct {
	Bookmarks []model.Bookmark  `json:"bookmarks"`
	Resources []*model.Resource `json:"resources"`
}

func (h *MeHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	visitorID := ctxkeys.VisitorID(r.Context())

	bookmarks, err := h.bookmarkService.List(r.Context(), visitorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resources, err := h.bookmarkService.Resources(r.Context(), visitorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: bookmarks, Resources: resources})
}

func (h *MeHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	bookmarked, err := h.bookmarkService.Toggle(r.Context(), ctxkeys.VisitorID(r.Context()), id, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resourceId": id, "bookmarked": bookmarked})
}

func (h *MeHandler) Downloads(w http.ResponseWriter, r *http.Request) {
	history, err := h.downloadService.History(r.Context(), ctxkeys.VisitorID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": history})
}

func (h *MeHandler) ClearDownloads(w http.ResponseWriter, r *http.Request) {
	err := h.downloadService.ClearHistory(r.Context(), ctxkeys.VisitorID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
