//go:build unit

package middleware_test

import (
	"net/http"
	"testing"

	"github.com/Thegreatsura/merchant/internal/handler/middleware"
	"github.com/Thegreatsura/merchant/internal/pkg/jwt"
	"github.com/Thegreatsura/merchant/tests/common/httptest"
	usecasemock "github.com/Thegreatsura/merchant/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthMiddlewareTestSuite struct {
	suite.Suite
	router     *gin.Engine
	mockCtrl   *gomock.Controller
	validator  *usecasemock.MockTokenValidator
	operatorID uuid.UUID
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.validator = usecasemock.NewMockTokenValidator(s.mockCtrl)
	s.operatorID = uuid.New()

	auth := middleware.NewAuthMiddleware(s.validator)
	whoami := func(c *gin.Context) {
		id, _ := middleware.GetOperatorID(c)
		role, _ := middleware.GetOperatorRole(c)
		c.JSON(http.StatusOK, gin.H{"operator_id": id.String(), "role": string(role)})
	}

	admin := s.router.Group("/admin", auth.RequireAuth(), auth.RequireRoleAtLeast(jwt.RoleOperator))
	admin.GET("/me", whoami)
	admin.POST("/refund", auth.RequireRoleAtLeast(jwt.RoleAdmin), whoami)
	s.router.GET("/unguarded", auth.RequireRoleAtLeast(jwt.RoleViewer), whoami)
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) TestRequireAuth() {
	s.Run("success: exposes operator and role", func() {
		s.validator.EXPECT().ValidateToken("good").Return(s.operatorID, jwt.RoleOperator, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/me", nil, "good")

		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(s.operatorID.String(), body["operator_id"])
		s.Equal("operator", body["role"])
	})

	s.Run("error: 401 without bearer token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/me", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: 401 for non-bearer scheme", func() {
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodGet, "/admin/me", nil, map[string]string{"Authorization": "Basic Zm9vOmJhcg=="})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("error: 401 for rejected token", func() {
		s.validator.EXPECT().ValidateToken("expired").Return(uuid.Nil, jwt.Role(""), jwt.ErrExpiredToken).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/me", nil, "expired")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})
}

func (s *AuthMiddlewareTestSuite) TestRequireRoleAtLeast() {
	cases := []struct {
		name       string
		role       jwt.Role
		path       string
		method     string
		expectCode int
	}{
		{name: "viewer cannot reach admin surface", role: jwt.RoleViewer, path: "/admin/me", method: http.MethodGet, expectCode: http.StatusForbidden},
		{name: "operator reads", role: jwt.RoleOperator, path: "/admin/me", method: http.MethodGet, expectCode: http.StatusOK},
		{name: "operator cannot refund", role: jwt.RoleOperator, path: "/admin/refund", method: http.MethodPost, expectCode: http.StatusForbidden},
		{name: "admin refunds", role: jwt.RoleAdmin, path: "/admin/refund", method: http.MethodPost, expectCode: http.StatusOK},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.validator.EXPECT().ValidateToken("token").Return(s.operatorID, tc.role, nil).Times(1)
			rec := httptest.PerformRequest(s.T(), s.router, tc.method, tc.path, nil, "token")
			if tc.expectCode == http.StatusOK {
				httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
			} else {
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "Insufficient permissions")
			}
		})
	}

	s.Run("error: 500 when auth did not run first", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/unguarded", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}
