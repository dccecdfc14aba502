package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/SAP-F-2025/guardian-service/internal/metrics"
	"github.com/SAP-F-2025/guardian-service/internal/services"
	"github.com/SAP-F-2025/guardian-service/internal/store"
	"github.com/SAP-F-2025/guardian-service/internal/utils"
)

func newTestHandler() BaseHandler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBaseHandler(utils.NewSlogLogger(logger))
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestHandleServiceErrorStatusCodes(t *testing.T) {
	h := newTestHandler()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.ErrValidationFailed, http.StatusBadRequest},
		{"incomplete criteria", services.ErrIncompleteCriteria, http.StatusBadRequest},
		{"no students", services.ErrNoStudentsSelected, http.StatusBadRequest},
		{"already linked", services.ErrAlreadyLinked, http.StatusConflict},
		{"not linked", services.ErrNotLinked, http.StatusForbidden},
		{"not found", services.ErrParentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", services.ErrStudentNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext()
			h.handleServiceError(c, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestStoreUnavailableCounted(t *testing.T) {
	h := newTestHandler()

	before := testutil.ToFloat64(metrics.StoreUnavailable)

	c, rec := testContext()
	h.handleServiceError(c, fmt.Errorf("read parent: %w", store.ErrStoreUnavailable))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if got := testutil.ToFloat64(metrics.StoreUnavailable); got != before+1 {
		t.Errorf("store unavailable counter = %v, want %v", got, before+1)
	}
}
