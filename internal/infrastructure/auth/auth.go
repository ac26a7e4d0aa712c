package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

const (
	// OwnerKey is the gin context key holding the caller's identity.
	OwnerKey = "user_id"
	// PrincipalKey holds the validated token claims when auth is enabled.
	PrincipalKey = "principal"

	gatewayUserHeader = "X-User-ID"
)

type tokenValidator interface {
	Validate(ctx context.Context, rawToken string) (*Principal, error)
}

// Validator resolves the caller's identity for each request.
type Validator struct {
	enabled bool
	log     zerolog.Logger
	tokens  tokenValidator
}

// NewValidator initialises JWKS validation when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	logger := log.With().Str("component", "auth").Logger()
	if !cfg.AuthEnabled {
		return &Validator{log: logger}, nil
	}

	tokens, err := NewJWKSValidator(
		ctx,
		cfg.AuthJWKSURL,
		cfg.AuthIssuer,
		cfg.AuthAudience,
		5*time.Minute, // refreshEvery
		time.Minute,   // clockSkew
		logger,
	)
	if err != nil {
		return nil, err
	}
	return &Validator{enabled: true, log: logger, tokens: tokens}, nil
}

// Middleware enforces bearer tokens when auth is enabled. When disabled, the identity
// injected by the gateway in X-User-ID is trusted and anonymous requests pass through.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || !v.enabled {
		return func(c *gin.Context) {
			if userID := strings.TrimSpace(c.GetHeader(gatewayUserHeader)); userID != "" {
				c.Set(OwnerKey, userID)
			}
			c.Next()
		}
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			platformerrors.WriteUnauthorized(c, "missing bearer token")
			return
		}

		principal, err := v.tokens.Validate(c.Request.Context(), tokenString)
		if err != nil {
			v.log.Debug().Err(err).Msg("jwt validation failed")
			platformerrors.WriteUnauthorized(c, "invalid token")
			return
		}

		c.Set(OwnerKey, principal.Subject)
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// OwnerFromContext returns the identity set by the middleware, if any.
func OwnerFromContext(c *gin.Context) string {
	return c.GetString(OwnerKey)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
