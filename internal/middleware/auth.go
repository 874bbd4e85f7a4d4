package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"followgate/internal/config"
)

const actorKey = "actor_did"

// AuthMiddleware authenticates requests via bearer tokens. Tokens are
// verified against the configured OIDC issuer when one is set, falling back
// to HS256 service tokens signed with the shared secret.
type AuthMiddleware struct {
	verifier *oidc.IDTokenVerifier
	secret   []byte
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(ctx context.Context, cfg *config.Config) (*AuthMiddleware, error) {
	m := &AuthMiddleware{}

	if cfg.OIDCIssuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, fmt.Errorf("init oidc provider: %w", err)
		}
		m.verifier = provider.Verifier(&oidc.Config{
			ClientID:          cfg.OIDCAudience,
			SkipClientIDCheck: cfg.OIDCAudience == "",
		})
	}
	if cfg.AuthSecret != "" {
		m.secret = []byte(cfg.AuthSecret)
	}

	if m.verifier == nil && m.secret == nil {
		return nil, errors.New("either OIDC_ISSUER or AUTH_SECRET must be configured")
	}
	return m, nil
}

// RequireActor authenticates the request and stores the account identifier
// for handlers to read via Actor.
func (m *AuthMiddleware) RequireActor(c fiber.Ctx) error {
	raw, ok := bearerToken(c.Get("Authorization"))
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "AuthenticationRequired",
			"message": "missing bearer token",
		})
	}

	did, err := m.subject(c.Context(), raw)
	if err != nil || !strings.HasPrefix(did, "did:") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "AuthenticationRequired",
			"message": "invalid credentials",
		})
	}

	c.Locals(actorKey, did)
	return c.Next()
}

// subject extracts the authenticated subject from a raw token.
func (m *AuthMiddleware) subject(ctx context.Context, raw string) (string, error) {
	if m.verifier != nil {
		token, err := m.verifier.Verify(ctx, raw)
		if err == nil {
			return token.Subject, nil
		}
		if m.secret == nil {
			return "", err
		}
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// bearerToken splits a bearer Authorization header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// Actor returns the authenticated account identifier set by RequireActor.
func Actor(c fiber.Ctx) string {
	did, _ := c.Locals(actorKey).(string)
	return did
}
