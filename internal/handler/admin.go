package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/campusmedia/gallery/internal/ctxkeys"
	"github.com/campusmedia/gallery/internal/service"
	"github.com/campusmedia/gallery/internal/validation"
)

type AdminHandler struct {
	authService     *service.AdminAuthService
	resourceService *service.ResourceService
	maxUploadSize   int64
	now             func() time.Time
}

func NewAdminHandler(authService *service.AdminAuthService, resourceService *service.ResourceService, maxUploadSize int64) *AdminHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 50 << 20
	}
	return &AdminHandler{
		authService:     authService,
		resourceService: resourceService,
		maxUploadSize:   maxUploadSize,
		now:             time.Now,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login accepts a JSON body or a regular form post.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	token, expiresAt, err := h.authService.Login(req.Username, req.Password, h.now())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			slog.Warn("admin login failed", "username", req.Username)
		}
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// Upload creates a resource from a multipart form. The file part is
// optional when fileUrl points at an external location.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := r.MultipartForm.Value
	in := service.UploadInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Type:         r.FormValue("type"),
		Categories:   splitValues(form["category"]),
		Tags:         splitValues(form["tags"]),
		ThumbnailURL: r.FormValue("thumbnailUrl"),
		FileURL:      r.FormValue("fileUrl"),
		UploadedBy:   r.FormValue("uploadedBy"),
	}
	if in.UploadedBy == "" {
		in.UploadedBy = ctxkeys.Admin(r.Context())
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// URL-only resource
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	default:
		defer func() { _ = file.Close() }()

		contentType, err := h.validateFile(header, in.Type)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		in.File = file
		in.Filename = header.Filename
		in.ContentType = contentType
	}

	resource, err := h.resourceService.Upload(r.Context(), in, h.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

func (h *AdminHandler) validateFile(header *multipart.FileHeader, resourceType string) (string, error) {
	constraints := validation.ConstraintsFor(resourceType)
	for i := range constraints {
		constraints[i].MaxSize = min(constraints[i].MaxSize, h.maxUploadSize)
	}
	return validation.ValidateFile(header, constraints...)
}

func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.resourceService.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// splitValues accepts repeated fields and comma separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
