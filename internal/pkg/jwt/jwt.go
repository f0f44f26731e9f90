package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
)

// Service verifies the access tokens minted by the external auth system.
// This core never runs a login flow; it only needs the shared-secret
// verifier plus a token encoder for local tooling and tests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	EncodeAccessToken(userID string, employeeID string, role user.Role, ttl time.Duration) (string, error)
}

type jwtService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &jwtService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *jwtService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// EncodeAccessToken issues a token carrying the claims this core reads:
// employee_id and role.
func (j *jwtService) EncodeAccessToken(userID string, employeeID string, role user.Role, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        string(role),
		"type":        "access",
		"exp":         time.Now().Add(ttl).Unix(),
	}
	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, err
}
