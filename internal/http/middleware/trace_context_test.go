package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/ctxutil"
)

func traced(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, *ctxutil.TraceData) {
	t.Helper()
	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestAttachTraceContextKeepsClientIDs(t *testing.T) {
	t.Parallel()

	rec, td := traced(t, map[string]string{
		headerRequestID: "req-123",
		headerTraceID:   "trace-abc",
	})
	if td == nil {
		t.Fatalf("trace data missing from request context")
	}
	if td.RequestID != "req-123" || td.TraceID != "trace-abc" {
		t.Fatalf("got request=%q trace=%q", td.RequestID, td.TraceID)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("echoed request id = %q", got)
	}
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	t.Parallel()

	rec, td := traced(t, map[string]string{
		headerRequestID: strings.Repeat("x", maxClientIDLen+1),
	})
	if td == nil || td.RequestID == "" {
		t.Fatalf("expected a generated request id")
	}
	if len(td.RequestID) > maxClientIDLen {
		t.Fatalf("oversized client id was kept")
	}
	if td.TraceID != td.RequestID {
		t.Fatalf("trace id should fall back to request id, got %q vs %q", td.TraceID, td.RequestID)
	}
	if got := rec.Header().Get(headerTraceID); got != td.TraceID {
		t.Fatalf("echoed trace id = %q, want %q", got, td.TraceID)
	}
}
