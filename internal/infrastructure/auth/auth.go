package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/shopvoice/function-gateway/internal/config"
)

var (
	// ErrDisabled means JWT auth is not configured.
	ErrDisabled = errors.New("jwt auth is disabled")
	// ErrMissingToken means the Authorization header carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken means the token failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Validator validates admin JWTs against a JWKS endpoint.
type Validator struct {
	issuer   string
	audience string
	keyfunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
	log      zerolog.Logger
}

// NewValidator initializes JWKS fetching when auth is enabled. A disabled
// validator rejects every token with ErrDisabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		issuer:   cfg.AuthIssuer,
		audience: cfg.AuthAudience,
		log:      log.With().Str("component", "jwt-validator").Logger(),
	}
	if !cfg.AuthEnabled {
		return v, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}
	v.jwks = jwks
	v.keyfunc = jwks.Keyfunc
	return v, nil
}

// NewStaticValidator builds a validator around a fixed key function.
func NewStaticValidator(issuer, audience string, kf jwt.Keyfunc, log zerolog.Logger) *Validator {
	return &Validator{issuer: issuer, audience: audience, keyfunc: kf, log: log}
}

// Enabled reports whether tokens can be validated at all.
func (v *Validator) Enabled() bool {
	return v != nil && v.keyfunc != nil
}

// Authenticate validates the bearer token in an Authorization header value.
func (v *Validator) Authenticate(header string) (*jwt.Token, error) {
	if !v.Enabled() {
		return nil, ErrDisabled
	}
	tokenString := BearerToken(header)
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, v.keyfunc,
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	)
	if err != nil || !token.Valid {
		v.log.Debug().Err(err).Msg("rejected admin token")
		return nil, ErrInvalidToken
	}
	return token, nil
}

// Close stops background JWKS refreshes.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
