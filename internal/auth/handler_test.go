package auth

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/jeycentre/care-center-backend/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// Stub service for middleware tests: one known token, one known user.
type stubAuthService struct {
	user *User
}

func (s *stubAuthService) Authenticate(dto LoginDTO) (AuthTokens, error) {
	return AuthTokens{}, nil
}

func (s *stubAuthService) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	return AuthTokens{}, nil
}

func (s *stubAuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString != "valid-token" {
		return nil, internal.ErrInvalidToken
	}
	return &Claims{UserID: "7", Role: s.user.Role}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	return nil
}

func (s *stubAuthService) GetUserByID(userID int64) (*User, error) {
	return s.user, nil
}

func (s *stubAuthService) HashPassword(password string) (string, error) {
	return "", nil
}

var _ = ginkgo.Describe("AuthMiddleware", func() {
	var (
		handler    *Handler
		inner      http.Handler
		seenUser   *User
		seenUserID string
	)

	ginkgo.BeforeEach(func() {
		handler = NewHandler(&stubAuthService{
			user: &User{ID: 7, EmployeeID: "EMP007", Role: RoleTherapist, BranchID: 1},
		})
		seenUser = nil
		seenUserID = ""
		inner = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenUser, _ = UserFromContext(r.Context())
			seenUserID = internal.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	ginkgo.It("should load the principal and employee id into request context", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()

		// When
		handler.AuthMiddleware(inner).ServeHTTP(rec, req)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(seenUser).ToNot(gomega.BeNil())
		gomega.Expect(seenUser.EmployeeID).To(gomega.Equal("EMP007"))
		gomega.Expect(seenUserID).To(gomega.Equal("EMP007"))
	})

	ginkgo.It("should reject requests without a bearer token", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
		rec := httptest.NewRecorder()

		// When
		handler.AuthMiddleware(inner).ServeHTTP(rec, req)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(seenUser).To(gomega.BeNil())
	})

	ginkgo.It("should reject requests with an unknown token", func() {
		// Given
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/today", nil)
		req.Header.Set("Authorization", "Bearer forged-token")
		rec := httptest.NewRecorder()

		// When
		handler.AuthMiddleware(inner).ServeHTTP(rec, req)

		// Then
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})
})
