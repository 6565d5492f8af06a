package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no access token")
	ErrTokenExpired = errors.New("access token expired")
)

// Claims carries the subset of the bearer token this client inspects.
// The server is the one that verifies the signature; the client only
// reads the payload to avoid dialing with a credential the server will
// reject anyway.
type Claims struct {
	RestaurantID uint
	StaffID      uint
	ExpiresAt    time.Time
}

// Inspect decodes the bearer token without verifying its signature.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	mapClaims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(strings.TrimPrefix(token, "Bearer "), mapClaims); err != nil {
		return nil, err
	}

	claims := &Claims{}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	claims.RestaurantID = uintClaim(mapClaims, "restaurant_id")
	claims.StaffID = uintClaim(mapClaims, "staff_id")

	return claims, nil
}

// Validate checks the token is present and not expired as of now.
func Validate(token string, now time.Time) error {
	claims, err := Inspect(token)
	if err != nil {
		return err
	}
	if !claims.ExpiresAt.IsZero() && now.After(claims.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

func uintClaim(claims jwt.MapClaims, key string) uint {
	switch v := claims[key].(type) {
	case float64:
		return uint(v)
	case string:
		n, _ := strconv.ParseUint(v, 10, 64)
		return uint(n)
	}
	return 0
}
