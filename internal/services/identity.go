package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

// IdentityService turns a bearer access token into the caller's identity.
type IdentityService interface {
	Resolve(ctx context.Context, tokenString string) (*ctxutil.RequestData, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type IdentityConfig struct {
	JWTSecret string
	Issuer    string
}

// AccessClaims mirrors the hosted auth provider's access token.
type AccessClaims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

type identityService struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewIdentityService(log *logger.Logger, cfg IdentityConfig) IdentityService {
	serviceLog := log.With("service", "IdentityService")
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		serviceLog.Warn("SUPABASE_JWT_SECRET is empty; every request will be rejected")
	}
	return &identityService{
		log:    serviceLog,
		secret: []byte(cfg.JWTSecret),
		issuer: strings.TrimSpace(cfg.Issuer),
	}
}

func (is *identityService) Resolve(ctx context.Context, tokenString string) (*ctxutil.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apierr.Unauthorized("Missing Authorization header")
	}
	if len(is.secret) == 0 {
		return nil, apierr.Unauthorized("Unauthorized")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if is.issuer != "" {
		opts = append(opts, jwt.WithIssuer(is.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return is.secret, nil
	}, opts...)
	if err != nil {
		is.log.Debug("token rejected", "error", err)
		return nil, apierr.Unauthorized("Unauthorized")
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, apierr.Unauthorized("Unauthorized")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		is.log.Debug("token subject is not a uuid", "error", err)
		return nil, apierr.Unauthorized("Unauthorized")
	}

	return &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: metadataDisplayName(claims.UserMetadata),
	}, nil
}

func (is *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	rd, err := is.Resolve(ctx, tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func metadataDisplayName(meta map[string]any) string {
	for _, key := range []string{"display_name", "full_name", "name"} {
		if v, ok := meta[key]; ok {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" && v != nil {
				return s
			}
		}
	}
	return ""
}
