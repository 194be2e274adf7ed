package services

import (
	"fmt"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/o1egl/paseto"
)

const (
	adminTokenFooter = "storefront-admin"
	adminTokenTTL    = 24 * time.Hour
	accessTokenType  = "access"
)

// AdminClaims is what an admin token proves.
type AdminClaims struct {
	AdminID  string
	Username string
	Role     string
}

// ClientClaims is the body of a customer token.
type ClientClaims struct {
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues PASETO tokens for admins and JWTs for customers.
type TokenService struct {
	pasetoKey []byte
	jwtSecret []byte
	clientTTL time.Duration
	now       func() time.Time
}

// NewTokenService builds a TokenService. pasetoKey must be 32 bytes.
func NewTokenService(pasetoKey, jwtSecret string, clientTTL time.Duration) *TokenService {
	return &TokenService{
		pasetoKey: []byte(pasetoKey),
		jwtSecret: []byte(jwtSecret),
		clientTTL: clientTTL,
		now:       time.Now,
	}
}

// IssueAdminToken returns an encrypted PASETO v2 token for admin.
func (s *TokenService) IssueAdminToken(admin *models.Admin) (string, error) {
	now := s.now()
	jsonToken := paseto.JSONToken{
		Subject:    admin.ID.Hex(),
		IssuedAt:   now,
		NotBefore:  now,
		Expiration: now.Add(adminTokenTTL),
	}
	jsonToken.Set("username", admin.Username)
	jsonToken.Set("role", admin.Role)

	token, err := paseto.NewV2().Encrypt(s.pasetoKey, jsonToken, adminTokenFooter)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal.WithMessage("Failed to generate token"), err)
	}
	return token, nil
}

// VerifyAdminToken decrypts and validates an admin token.
func (s *TokenService) VerifyAdminToken(token string) (*AdminClaims, error) {
	var jsonToken paseto.JSONToken
	var footer string
	if err := paseto.NewV2().Decrypt(token, s.pasetoKey, &jsonToken, &footer); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if footer != adminTokenFooter {
		return nil, apperrors.ErrInvalidToken
	}
	if err := jsonToken.Validate(paseto.ValidAt(s.now())); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	return &AdminClaims{
		AdminID:  jsonToken.Subject,
		Username: jsonToken.Get("username"),
		Role:     jsonToken.Get("role"),
	}, nil
}

// IssueClientToken returns a signed HS256 access token for user.
func (s *TokenService) IssueClientToken(user *models.User) (string, error) {
	now := s.now()
	claims := ClientClaims{
		Email: user.Email,
		Type:  accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.clientTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal.WithMessage("Failed to generate token"), err)
	}
	return token, nil
}

// VerifyClientToken parses a customer token and checks its type.
func (s *TokenService) VerifyClientToken(token string) (*ClientClaims, error) {
	claims := &ClientClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if claims.Type != accessTokenType {
		return nil, apperrors.ErrInvalidToken.WithMessage("Invalid token type")
	}
	return claims, nil
}
