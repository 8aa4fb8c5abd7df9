package middlewares

import (
	"fmt"
	"strconv"
	"time"

	"github.com/CampusLease/initializers"
	"github.com/golang-jwt/jwt/v4"
)

const (
	UserCookie  = "campuslease_token"
	AdminCookie = "campuslease_admin"
	SessionTTL  = 7 * 24 * time.Hour
)

// SignToken signs claims with the configured secret and a SessionTTL expiry.
func SignToken(claims jwt.MapClaims) (string, error) {
	claims["exp"] = time.Now().Add(SessionTTL).Unix()
	claims["iat"] = time.Now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(initializers.Cfg.Secret))
}

// ParseToken verifies the signature and requires an unexpired exp claim.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(initializers.Cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, fmt.Errorf("token expired or malformed")
	}
	return claims, nil
}

func claimUserID(claims jwt.MapClaims) (int, bool) {
	switch id := claims["id"].(type) {
	case string:
		n, err := strconv.Atoi(id)
		return n, err == nil
	case float64:
		return int(id), true
	}
	return 0, false
}
