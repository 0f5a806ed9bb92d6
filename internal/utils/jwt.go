// internal/utils/jwt.go
package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type JWTClaims struct {
	UserID uint `json:"user_id"`
	// Issue instant in unix microseconds; compared against the user's
	// revocation watermark. Zero means the claim was absent.
	IssuedAtMicros int64 `json:"issued_at,omitempty"`
	jwt.RegisteredClaims
}

// IssuedAtTime returns the issue instant carried by the token.
func (c *JWTClaims) IssuedAtTime() (time.Time, bool) {
	if c.IssuedAtMicros == 0 {
		return time.Time{}, false
	}
	return time.UnixMicro(c.IssuedAtMicros), true
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateJWT(userID uint, issuedAt time.Time, ttlHours int) (string, error) {
	claims := JWTClaims{
		UserID:         userID,
		IssuedAtMicros: issuedAt.UnixMicro(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    "catalog-backend",
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
