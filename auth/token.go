package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the identity slice this subsystem consumes from the
// authentication collaborator: who is calling and which country their
// timezone preference derives from.
type CustomClaims struct {
	Username string `json:"username"`
	Country  string `json:"country"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the signed session tokens. Registration
// and login live in the authentication collaborator; we only need to read
// (and, for tooling and tests, mint) its tokens.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
}

func NewTokenIssuer(secret string, duration time.Duration) TokenIssuer {
	return TokenIssuer{secret: []byte(secret), duration: duration}
}

// GenerateToken creates a signed token for a specific user.
func (t TokenIssuer) GenerateToken(username, country string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		Username: username,
		Country:  country,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "efficient-study-platform",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses and validates the signature and expiration of a
// token string.
func (t TokenIssuer) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
