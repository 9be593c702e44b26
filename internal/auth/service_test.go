package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock user repository for testing
type mockUserRepository struct {
	credentials   map[string]string // login -> password hash
	userIDs       map[string]int64  // login -> userID
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	return &mockUserRepository{
		credentials: map[string]string{
			"EMP001":              string(hashedPassword),
			"hr@jeycentre.id":     string(hashedPassword),
			"super@jeycentre.id":  string(hashedPassword),
		},
		userIDs: map[string]int64{
			"EMP001":             1,
			"hr@jeycentre.id":    2,
			"super@jeycentre.id": 3,
		},
		usersByID: map[int64]*User{
			1: {ID: 1, EmployeeID: "EMP001", Email: "emp001@jeycentre.id", Role: RoleTherapist, BranchID: 1},
			2: {ID: 2, EmployeeID: "EMP002", Email: "hr@jeycentre.id", Role: RoleHR, BranchID: 1},
			3: {ID: 3, EmployeeID: "EMP003", Email: "super@jeycentre.id", Role: RoleSuperadmin, BranchID: 1},
		},
	}
}

func (m *mockUserRepository) GetCredentials(login string) (string, int64, error) {
	if m.returnError {
		return "", 0, m.errorToReturn
	}

	if hash, exists := m.credentials[login]; exists {
		if userID, ok := m.userIDs[login]; ok {
			return hash, userID, nil
		}
	}
	return "", 0, errors.New("user not found")
}

func (m *mockUserRepository) GetUserByID(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

// In-memory token store standing in for Redis in service tests.
type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{revoked: make(map[string]time.Time)}
}

func (s *memoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[jti]
	return ok && time.Now().Before(until), nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockUserRepository
		tokenStore    *memoryTokenStore
		tokenGen      *JWTTokenGenerator
		ctx           context.Context
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenStore = newMemoryTokenStore()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen, tokenStore, bcrypt.DefaultCost)
		ctx = context.Background()
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens for an employee ID login", func() {
				// Given
				dto := LoginDTO{
					Login:    "EMP001",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			})

			ginkgo.It("should embed user ID and role in the access token", func() {
				// Given
				dto := LoginDTO{
					Login:    "hr@jeycentre.id",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(ctx, tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("2"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleHR))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown login", func() {
				// Given
				dto := LoginDTO{
					Login:    "EMP999",
					Password: "any_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for wrong password", func() {
				// Given
				dto := LoginDTO{
					Login:    "EMP001",
					Password: "wrong_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty login", func() {
				// Given
				dto := LoginDTO{
					Login:    "",
					Password: "password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("login is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return validation error for empty password", func() {
				// Given
				dto := LoginDTO{
					Login:    "EMP001",
					Password: "",
				}

				// When
				_, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				// Given
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{
					Login:    "EMP001",
					Password: "correct_password",
				}

				// When
				tokens, err := service.Authenticate(dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Login:    "EMP001",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should return new tokens and preserve user identity", func() {
				// When
				newTokens, err := service.RefreshTokens(ctx, validRefreshToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(newTokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(newTokens.RefreshToken).ToNot(gomega.BeEmpty())

				claims, err := service.ValidateAccessToken(ctx, newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("1"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleTherapist))
			})

			ginkgo.It("should revoke the used refresh token", func() {
				// When
				_, err := service.RefreshTokens(ctx, validRefreshToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// Then: replaying the old refresh token fails
				_, err = service.RefreshTokens(ctx, validRefreshToken)
				gomega.Expect(err).To(gomega.Equal(ErrTokenRevoked))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				// When
				tokens, err := service.RefreshTokens(ctx, "invalid.token.format")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for expired token", func() {
				// Given
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
				expiredToken, err := expiredTokenGen.GenerateRefreshToken("1", RoleTherapist)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				tokens, err := service.RefreshTokens(ctx, expiredToken)

				// Then
				gomega.Expect(err).To(gomega.Or(gomega.Equal(ErrTokenExpired), gomega.Equal(ErrInvalidToken)))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("Logout", func() {
		var validAccessToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Login:    "EMP001",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validAccessToken = tokens.AccessToken
		})

		ginkgo.It("should revoke the access token", func() {
			// Given: token is valid before logout
			_, err := service.ValidateAccessToken(ctx, validAccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.Logout(ctx, validAccessToken)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.ValidateAccessToken(ctx, validAccessToken)
			gomega.Expect(err).To(gomega.Equal(ErrTokenRevoked))
		})

		ginkgo.It("should reject malformed tokens", func() {
			// When
			err := service.Logout(ctx, "not.a.token")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		var validAccessToken string

		ginkgo.BeforeEach(func() {
			dto := LoginDTO{
				Login:    "super@jeycentre.id",
				Password: "correct_password",
			}
			tokens, err := service.Authenticate(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validAccessToken = tokens.AccessToken
		})

		ginkgo.Context("when access token is valid", func() {
			ginkgo.It("should return claims with user information", func() {
				// When
				claims, err := service.ValidateAccessToken(ctx, validAccessToken)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims).ToNot(gomega.BeNil())
				gomega.Expect(claims.UserID).To(gomega.Equal("3"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleSuperadmin))
				gomega.Expect(claims.ExpiresAt).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("when access token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				// When
				claims, err := service.ValidateAccessToken(ctx, "invalid.token")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for expired token", func() {
				// Given
				expiredTokenGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, refreshTTL)
				expiredToken, err := expiredTokenGen.GenerateAccessToken("1", RoleTherapist)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				claims, err := service.ValidateAccessToken(ctx, expiredToken)

				// Then
				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should return a verifiable hash", func() {
			// Given
			password := "test_password_123"

			// When
			hash, err := service.HashPassword(password)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash).ToNot(gomega.BeEmpty())
			gomega.Expect(hash).ToNot(gomega.Equal(password))

			err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should generate different hashes for same password", func() {
			// Given
			password := "same_password"

			// When
			hash1, err1 := service.HashPassword(password)
			hash2, err2 := service.HashPassword(password)

			// Then
			gomega.Expect(err1).ToNot(gomega.HaveOccurred())
			gomega.Expect(err2).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash1).ToNot(gomega.Equal(hash2))
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret-key"
		refreshSecret string        = "test-refresh-secret-key"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
	})

	ginkgo.Describe("GenerateAccessToken", func() {
		ginkgo.It("should generate valid access token with a unique token ID", func() {
			// When
			token, err := tokenGen.GenerateAccessToken("123", RoleTherapist)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("123"))
			gomega.Expect(claims.Role).To(gomega.Equal(RoleTherapist))
			gomega.Expect(claims.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(accessTTL), time.Minute))
		})
	})

	ginkgo.Describe("GenerateRefreshToken", func() {
		ginkgo.It("should generate valid refresh token", func() {
			// When
			token, err := tokenGen.GenerateRefreshToken("456", RoleSupervisor)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("456"))
			gomega.Expect(claims.Role).To(gomega.Equal(RoleSupervisor))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(refreshTTL), time.Minute))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.It("should return error for malformed token", func() {
			// When
			claims, err := tokenGen.ValidateToken("invalid.token.here")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return error for empty token", func() {
			// When
			claims, err := tokenGen.ValidateToken("")

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrTokenExpired for expired tokens", func() {
			// Given
			expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, -1*time.Hour, -1*time.Hour)
			token, err := expiredGen.GenerateAccessToken("123", RoleTherapist)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			claims, err := tokenGen.ValidateToken(token)

			// Then
			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("User role helpers", func() {
	ginkgo.Describe("CanDecideFor", func() {
		ginkgo.It("allows supervisors only within their own branch", func() {
			supervisor := &User{ID: 1, Role: RoleSupervisor, BranchID: 2}
			gomega.Expect(supervisor.CanDecideFor(2)).To(gomega.BeTrue())
			gomega.Expect(supervisor.CanDecideFor(3)).To(gomega.BeFalse())
		})

		ginkgo.It("allows HR and superadmin for any branch", func() {
			hr := &User{ID: 2, Role: RoleHR, BranchID: 1}
			super := &User{ID: 3, Role: RoleSuperadmin, BranchID: 1}
			gomega.Expect(hr.CanDecideFor(99)).To(gomega.BeTrue())
			gomega.Expect(super.CanDecideFor(99)).To(gomega.BeTrue())
		})

		ginkgo.It("denies therapists", func() {
			therapist := &User{ID: 4, Role: RoleTherapist, BranchID: 1}
			gomega.Expect(therapist.CanDecideFor(1)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CanManageUsers", func() {
		ginkgo.It("is limited to HR and superadmin", func() {
			gomega.Expect((&User{Role: RoleHR}).CanManageUsers()).To(gomega.BeTrue())
			gomega.Expect((&User{Role: RoleSuperadmin}).CanManageUsers()).To(gomega.BeTrue())
			gomega.Expect((&User{Role: RoleSupervisor}).CanManageUsers()).To(gomega.BeFalse())
			gomega.Expect((&User{Role: RoleTherapist}).CanManageUsers()).To(gomega.BeFalse())
		})
	})
})
