package middleware

import (
	"net/http"
	"time"

	"github.com/campusmedia/gallery/internal/ctxkeys"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "visitor_id"
	visitorMaxAge = 365 * 24 * time.Hour
)

// Visitor gives every browser a stable anonymous id. Bookmarks, download
// history and the view cooldown are kept per visitor id.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			cookie, err := r.Cookie(VisitorCookie)
			if err == nil {
				parsed, err := uuid.Parse(cookie.Value)
				if err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ctxkeys.WithVisitorID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
