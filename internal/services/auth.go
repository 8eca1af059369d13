package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/requestdata"
)

// AuthService only verifies tokens the upstream authentication service minted.
// There is no credential handling here: the token already carries a verified
// (user, role) pair and this backend takes it at face value.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(baseLog *logger.Logger, jwtSecretKey string) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{log: serviceLog, jwtSecretKey: jwtSecretKey}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("Failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("Invalid or expired JWT token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("Invalid user id in token: %w", err)
	}
	if claims.Role == "" {
		return ctx, fmt.Errorf("Missing role in token")
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
