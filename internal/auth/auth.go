package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleTherapist  = "therapist"
	RoleSupervisor = "supervisor"
	RoleHR         = "hr"
	RoleSuperadmin = "superadmin"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// User is the authenticated principal attached to request context.
type User struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	BranchID   int64  `json:"branch_id"`
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

// CanManageUsers reports whether the user may create/update/delete other users.
func (u *User) CanManageUsers() bool {
	return u.HasRole(RoleHR, RoleSuperadmin)
}

// CanDecideFor reports whether the user may approve/reject workflow items
// submitted by an employee of the given branch.
func (u *User) CanDecideFor(branchID int64) bool {
	switch u.Role {
	case RoleSuperadmin, RoleHR:
		return true
	case RoleSupervisor:
		return u.BranchID == branchID
	}
	return false
}

// CanViewBranch reports whether the user may read records scoped to a branch.
func (u *User) CanViewBranch(branchID int64) bool {
	switch u.Role {
	case RoleSuperadmin, RoleHR:
		return true
	case RoleSupervisor:
		return u.BranchID == branchID
	}
	return false
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	Logout(ctx context.Context, accessToken string) error
	GetUserByID(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetCredentials(login string) (passwordHash string, userID int64, err error)
	GetUserByID(userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID, role string) (token string, err error)
	GenerateRefreshToken(userID, role string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TokenStore tracks revoked tokens so that logout works for stateless JWTs.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user is inactive")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
