package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

const (
	// HeaderUserID carries the caller's id as set by the authentication gateway.
	HeaderUserID = "X-User-ID"
	// HeaderUserRole carries the caller's role as set by the authentication gateway.
	HeaderUserRole = "X-User-Role"
)

// ErrNoIdentity is returned when a request carries no usable caller identity.
var ErrNoIdentity = errors.New("missing or invalid caller identity")

type actorCtxKey struct{}

// FromContext retrieves the caller stored by the middleware.
func FromContext(ctx context.Context) (types.Actor, error) {
	actor, ok := ctx.Value(actorCtxKey{}).(types.Actor)
	if !ok {
		return types.Actor{}, ErrNoIdentity
	}
	return actor, nil
}

// WithActor stores the caller in the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// Middleware reads the caller identity from gateway headers.
// Requests without identity headers pass through anonymously.
type Middleware struct {
	logger *zap.Logger
}

// New creates a new identity middleware.
func New(logger *zap.Logger) *Middleware {
	return &Middleware{
		logger: logger.Named("identity"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware handler for identity extraction.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		rawID := req.Header.Get(HeaderUserID)
		if rawID == "" {
			return next(w, req)
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			m.logger.Debug("Ignoring invalid user id header", zap.String("value", rawID))
			return next(w, req)
		}

		role := enum.ActorRoleCitizen
		if rawRole := req.Header.Get(HeaderUserRole); rawRole != "" {
			parsed, err := enum.ActorRoleString(rawRole)
			if err != nil {
				m.logger.Debug("Unknown role header, treating caller as citizen",
					zap.String("value", rawRole))
			} else {
				role = parsed
			}
		}

		ctx := WithActor(req.Context(), types.Actor{ID: id, Role: role})
		return next(w, req.WithContext(ctx))
	}
}
