package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger-service/internal/auth"
	"ledger-service/internal/domain"
	stderrors "ledger-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func setupAuthRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	router := gin.New()
	router.Use(AuthMiddleware(auth.NewJWTManager(testSecret, logger), logger))
	if len(roles) > 0 {
		router.Use(RequireRole(logger, roles...))
	}
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetUserID(c),
			"tenant_id": GetTenantID(c),
		})
	})
	return router
}

func bearer(t *testing.T, manager *auth.JWTManager, role string) string {
	t.Helper()
	token, err := manager.GenerateToken("user-1", "tenant-1", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := setupAuthRouter()
	manager := auth.NewJWTManager(testSecret, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearer(t, manager, auth.RoleStaff))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "tenant-1", body["tenant_id"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	other := auth.NewJWTManager("other-secret", zap.NewNop())
	expired := auth.NewJWTManager(testSecret, zap.NewNop()).WithTTL(-time.Minute)

	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{name: "missing header", header: func(t *testing.T) string { return "" }},
		{name: "wrong scheme", header: func(t *testing.T) string { return "Basic abc" }},
		{name: "foreign signature", header: func(t *testing.T) string { return bearer(t, other, auth.RoleAdmin) }},
		{name: "expired", header: func(t *testing.T) string { return bearer(t, expired, auth.RoleAdmin) }},
	}

	router := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), stderrors.CodeUnauthorized)
		})
	}
}

func TestRequireRole(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, zap.NewNop())
	router := setupAuthRouter(auth.RoleAdmin, auth.RoleManager)

	for role, want := range map[string]int{
		auth.RoleAdmin:   http.StatusOK,
		auth.RoleManager: http.StatusOK,
		auth.RoleStaff:   http.StatusForbidden,
		auth.RoleViewer:  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", bearer(t, manager, role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.NewValidationError("quantity", "must be positive"), http.StatusBadRequest, stderrors.CodeValidation},
		{domain.NewNotFound("order", "o-1"), http.StatusNotFound, stderrors.CodeNotFound},
		{domain.NewInsufficientStock("p-1", 3), http.StatusConflict, stderrors.CodeInsufficientStock},
		{domain.NewInvalidTransition(domain.StatusCancelled, domain.StatusShipped), http.StatusConflict, stderrors.CodeInvalidTransition},
		{fmt.Errorf("boom"), http.StatusInternalServerError, stderrors.CodeInternal},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		router := gin.New()
		router.Use(ErrorHandler(zap.NewNop()))
		err := tt.err
		router.GET("/fail", func(c *gin.Context) {
			_ = c.Error(err)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

		assert.Equal(t, tt.wantStatus, w.Code, tt.err.Error())
		var body stderrors.StandardError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.wantCode, body.Code)
	}
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoveryHandler(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("unexpected") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), stderrors.CodeInternal)
}
