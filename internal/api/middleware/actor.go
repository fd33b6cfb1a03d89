package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	// HeaderActor идентификатор сотрудника студии
	HeaderActor = "X-Actor"

	actorPrefix     = "admin:"
	maxActorLength  = 100
	msgMissingActor = "отсутствует заголовок X-Actor"
)

type actorKey struct{}

// Actor требует заголовок X-Actor и кладёт сотрудника в контекст как "admin:<id>"
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(HeaderActor))
		if raw == "" || len(raw) > maxActorLength {
			handlers.RespondUnauthorized(w, msgMissingActor)
			return
		}

		actor := raw
		if !strings.HasPrefix(actor, actorPrefix) {
			actor = actorPrefix + actor
		}

		ctx := context.WithValue(r.Context(), actorKey{}, domain.Actor(actor))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor возвращает сотрудника из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// WithActor кладёт сотрудника в контекст (используется в тестах обработчиков)
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}
