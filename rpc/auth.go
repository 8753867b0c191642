package rpc

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authenticator guards privileged methods. With a JWT secret configured it
// expects HS256 bearer tokens carrying a "role" claim; otherwise it compares
// the bearer token against the static token from configuration.
type authenticator struct {
	staticToken string
	jwtSecret   []byte
}

func newAuthenticator(staticToken string, jwtSecret []byte) *authenticator {
	return &authenticator{staticToken: strings.TrimSpace(staticToken), jwtSecret: jwtSecret}
}

type authError struct {
	Code    int
	Message string
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireRole authorises a privileged call. role is "owner" or "feeder".
func (a *authenticator) requireRole(r *http.Request, role string) *authError {
	token := bearerToken(r)
	if token == "" {
		return &authError{Code: codeUnauthorized, Message: "bearer token required"}
	}
	if len(a.jwtSecret) > 0 {
		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.jwtSecret, nil
		})
		if err != nil || !parsed.Valid {
			return &authError{Code: codeUnauthorized, Message: "invalid token"}
		}
		claimed, _ := claims["role"].(string)
		if !strings.EqualFold(strings.TrimSpace(claimed), role) {
			return &authError{Code: codeUnauthorized, Message: "insufficient role"}
		}
		return nil
	}
	if a.staticToken == "" {
		return &authError{Code: codeUnauthorized, Message: "privileged methods disabled"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.staticToken)) != 1 {
		return &authError{Code: codeUnauthorized, Message: "invalid token"}
	}
	return nil
}
