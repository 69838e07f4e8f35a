package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/apierr"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/logger"
)

type stubIdentity struct{ user uuid.UUID }

func (s stubIdentity) Resolve(ctx context.Context, token string) (*ctxutil.RequestData, error) {
	if token != "ok" {
		return nil, apierr.Unauthorized("bad token")
	}
	return &ctxutil.RequestData{TokenString: token, UserID: s.user}, nil
}

func (s stubIdentity) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	rd, err := s.Resolve(ctx, token)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), stubIdentity{user: user})

	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer", "/me", "Bearer ok", http.StatusOK},
		{"lowercase scheme", "/me", "bearer ok", http.StatusOK},
		{"query token", "/me?token=ok", "", http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"rejected", "/me", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != user.String() {
				t.Fatalf("caller not attached: %q", rec.Body.String())
			}
		})
	}
}
