package auth

import (
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

// TokenCookie is the cookie the login handler sets and every study-session
// handler reads. Browser clients never send an Authorization header.
const TokenCookie = "study_token"

// Identity is the authenticated caller as the chat subsystem sees it.
type Identity struct {
	Username string
	Country  string
}

// Location resolves the identity's country to a timezone for rendering.
func (i Identity) Location() *time.Location {
	return LocationFor(i.Country)
}

// IdentityFromRequest extracts and validates the caller identity from an
// incoming HTTP request. The session cookie takes precedence; a Bearer
// token is accepted for non-browser clients and tooling.
func (t TokenIssuer) IdentityFromRequest(r *http.Request) (Identity, error) {
	raw := ""
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		raw = cookie.Value
	} else if header := r.Header.Get("Authorization"); header != "" {
		raw = strings.TrimPrefix(header, "Bearer ")
	}
	if raw == "" {
		return Identity{}, apperrors.ErrUnauthenticated
	}

	claims, err := t.ValidateToken(raw)
	if err != nil {
		return Identity{}, apperrors.ErrUnauthenticated
	}
	return Identity{Username: claims.Username, Country: claims.Country}, nil
}
