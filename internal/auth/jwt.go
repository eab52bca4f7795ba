package auth

import (
	"context"
	"fmt"
	"time"

	"gotodo/internal/config"

	"github.com/dgrijalva/jwt-go"
)

// Claims is the signed claim set embedded in every issued token. Subject
// carries the user ID so protected handlers never re-resolve the username.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// TokenService issues and validates signed, time-limited tokens
type TokenService struct {
	Config *config.Config
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{Config: cfg}
}

// Generate issues an HS256 token for the given user, expiring after the
// configured TTL
func (s *TokenService) Generate(userID, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.Config.TokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Config.JwtKey)
}

// Parse validates a token string and returns its claims. Expired, tampered
// and malformed tokens all return an error.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Config.JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("token is not valid", jwt.ValidationErrorClaimsInvalid)
	}
	return claims, nil
}

type contextKey int

const claimsContextKey contextKey = 0

// ContextWithClaims attaches validated claims to a request context
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the claims attached by the auth middleware
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
