package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims carries the verified principal: the core services only ever
// see this identity payload, never credentials.
type Claims struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
	Role   string             `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

var (
	jwtSecret      []byte
	accessTokenTTL = 24 * time.Hour
)

// ConfigureJWT installs the signing secret and access token lifetime
// from the loaded configuration. Call once at startup, before any
// token is issued or validated.
func ConfigureJWT(secret string, ttl time.Duration) {
	jwtSecret = []byte(secret)
	if ttl > 0 {
		accessTokenTTL = ttl
	}
}

// GenerateAccessToken creates a new JWT access token
func GenerateAccessToken(userID primitive.ObjectID, email, name, role string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "filevault",
			Subject:   userID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GenerateTokenPair wraps an access token in the response shape the
// auth endpoints return.
func GenerateTokenPair(userID primitive.ObjectID, email, name, role string) (*TokenPair, error) {
	accessToken, err := GenerateAccessToken(userID, email, name, role)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
		TokenType:   "Bearer",
	}, nil
}

// ValidateToken validates and parses JWT token
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
