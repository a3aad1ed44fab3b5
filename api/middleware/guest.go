package middleware

import (
	"net/http"
	"strings"

	"github.com/nmarchetti/wearhaus-backend/api/responses"
	pkgerrors "github.com/nmarchetti/wearhaus-backend/pkg/errors"
	"github.com/nmarchetti/wearhaus-backend/pkg/logger"
)

const (
	guestIDHeader = "X-Guest-Id"
	maxGuestIDLen = 64
)

// GuestID picks up the anonymous cart identifier the storefront generates
// and carries it through the context. The header is optional; authenticated
// requests and product browsing run without one.
func GuestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guestID := strings.TrimSpace(r.Header.Get(guestIDHeader))
			if guestID == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(guestID) > maxGuestIDLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest id too long"))
				return
			}

			ctx := WithGuestID(r.Context(), guestID)
			if logg != nil {
				ctx = logg.WithGuestID(ctx, guestID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
