package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

type tokenContextKey struct{}

// ContextWithToken attaches a bearer token to ctx for later session lookups.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the bearer token stored by ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok && token != ""
}

// SessionConfig defines how access tokens are verified and cached.
type SessionConfig struct {
	Secret   string
	Issuer   string
	CacheTTL time.Duration
}

// SessionService resolves bearer tokens into sessions and caller identities.
// Verified claims are cached per token until CacheTTL or token expiry, whichever is sooner.
type SessionService struct {
	cfg    SessionConfig
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(cfg SessionConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &SessionService{
		cfg:    cfg,
		cache:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ValidateToken parses and verifies an HS256 access token.
func (s *SessionService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if cached, ok := s.cache.Get(tokenString); ok {
		claims := *cached.(*models.JWTClaims)
		return &claims, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	ttl := s.cfg.CacheTTL
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		cp := *claims
		s.cache.Set(tokenString, &cp, ttl)
	}
	return claims, nil
}

// Session returns the session bound to the token carried by ctx.
func (s *SessionService) Session(ctx context.Context) (*models.Session, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	session := &models.Session{AccessToken: token, UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// CurrentUser returns the identity carried by the session token.
func (s *SessionService) CurrentUser(ctx context.Context) (*models.AuthUser, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no active session")
	}
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no user identity")
	}
	return &models.AuthUser{
		ID:       claims.UserID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
	}, nil
}

// IssueToken signs an access token for user valid for ttl.
func (s *SessionService) IssueToken(user models.AuthUser, ttl time.Duration) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}
