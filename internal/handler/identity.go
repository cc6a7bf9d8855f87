package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gyu5/Linkwallet/internal/domain"
	"github.com/gyu5/Linkwallet/pkg/response"
)

type contextKey string

const actorKey contextKey = "actor"

// Identity reads the already-resolved identity from the X-User-ID and
// X-User-Name headers set by the auth proxy. This service never
// authenticates; it only consumes the result.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get("X-User-ID")
		if rawID == "" {
			response.Unauthorized(w, "missing identity")
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			response.Unauthorized(w, "invalid identity")
			return
		}

		actor := domain.Actor{
			ID:          userID,
			DisplayName: r.Header.Get("X-User-Name"),
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
