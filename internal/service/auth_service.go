package service

import (
	"fmt"

	"github.com/kaimonolist/linkd/internal/apperr"
	"github.com/kaimonolist/linkd/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type AuthServiceConfig struct {
	IdentitySecret string
}

// AuthService resolves the identity of web client callers. Sign-in itself
// happens in an external identity provider; the client hands us an HS256
// identity token whose subject is the stable user id.
type AuthService struct {
	config AuthServiceConfig
}

func NewAuthService(config AuthServiceConfig) *AuthService {
	return &AuthService{
		config: config,
	}
}

func (as *AuthService) VerifyIdentityToken(tokenString string) (*config.UserContext, error) {
	if as.config.IdentitySecret == "" {
		return nil, apperr.New(apperr.Unauthenticated, "identity verification is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.config.IdentitySecret), nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, "invalid identity token", err)
	}

	if !token.Valid {
		return nil, apperr.New(apperr.Unauthenticated, "invalid identity token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, apperr.New(apperr.Unauthenticated, "identity token missing subject")
	}

	return &config.UserContext{
		UID:        subject,
		IsLoggedIn: true,
	}, nil
}
