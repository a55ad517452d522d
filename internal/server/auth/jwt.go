// Package auth turns bearer tokens into the viewer identity used by access
// checks. Issuing tokens at login lives with the session layer; GenerateToken
// is provided for it and for tests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lbxxgn/my-blog/internal/common"
	"github.com/lbxxgn/my-blog/internal/server/access"
)

// Claims are the registered claims plus the viewer's id and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Role   string `json:"role,omitempty"`
}

func GenerateToken(userID int64, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ViewerFromToken validates tokenString and returns the authenticated viewer.
// An empty token yields the anonymous viewer.
func ViewerFromToken(tokenString string, secretKey []byte) (access.Viewer, error) {
	if tokenString == "" {
		return access.Anonymous(), nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return access.Viewer{}, common.ErrTokenExpired
		}
		return access.Viewer{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID <= 0 {
		return access.Viewer{}, common.ErrInvalidToken
	}

	return access.User(claims.UserID, claims.Role), nil
}
