// Package gateway implements token issuance and the authorization middleware
// chain used across hawiya services.
package gateway

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt"
)

const tokenIssuer = "hawiya"

// JWTAuth signs and verifies the bearer tokens hawiya issues. Key is the
// process-wide HMAC secret, set once at startup.
type JWTAuth struct {
	Key []byte
}

// TokenClaims is the full claim set carried by a hawiya token: the account id
// and its admin flag, nothing else.
type TokenClaims struct {
	ID      uint `json:"id"`
	IsAdmin bool `json:"is_admin"`
	jwt.StandardClaims
}

// Principal is the verified identity attached to a request after the token
// checks out. It is derived once by AuthMiddleware and read by every gate
// after it.
type Principal struct {
	ID      uint
	IsAdmin bool
}

// GenerateJWT issues a signed HS256 token binding the account id and admin
// flag.
//
// TODO(adonese): tokens never expire; add an expiry claim plus a refresh
// endpoint before third-party clients are allowed in.
func (j *JWTAuth) GenerateJWT(id uint, isAdmin bool) (string, error) {
	if len(j.Key) == 0 {
		return "", errors.New("empty jwt key")
	}
	claims := TokenClaims{
		ID:             id,
		IsAdmin:        isAdmin,
		StandardClaims: jwt.StandardClaims{Issuer: tokenIssuer},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Key)
}

// VerifyJWT validates the signature and decodes the claims. Any tampering,
// a wrong key, or a non-HMAC algorithm header makes it fail.
func (j *JWTAuth) VerifyJWT(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
