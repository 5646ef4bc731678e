package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
)

const issuer = "ridemate"

// Claims are the bearer token claims. Subject is the user id.
type Claims struct {
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens. Verified claims are cached
// briefly so hot connections do not re-parse on every call.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	cache  *gocache.Cache
}

func NewTokens(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
		cache:  gocache.New(time.Minute, 30*time.Second),
	}
}

// Issue signs a token for userID valid for the configured TTL.
func (t *Tokens) Issue(userID, nickname string) (string, time.Time, error) {
	issued := t.now()
	expires := issued.Add(t.ttl)
	claims := Claims{
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses and validates a signed token.
func (t *Tokens) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	if cached, ok := t.cache.Get(token); ok {
		c := cached.(*Claims)
		if c.ExpiresAt != nil && t.now().Before(c.ExpiresAt.Time) {
			return c, nil
		}
		t.cache.Delete(token)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	t.cache.SetDefault(token, claims)
	return claims, nil
}
