// Package auth implements token issuance and verification plus password
// checking for the server. Tokens are HS256 JWTs carrying the subject id,
// email and a kind marker so an access token cannot be replayed as a
// refresh token or vice versa.
package auth

import (
	"time"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims includes the registered claims plus the subject identity and the
// token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Email  string    `json:"email"`
	Kind   TokenKind `json:"kind"`
}

// Payload is the trusted result of verifying a token.
type Payload struct {
	UserID string
	Email  string
}

// TokenService mints and verifies the two token classes. It always
// succeeds at minting; verification failures all collapse to
// common.ErrInvalidToken so callers cannot branch on the cause.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) issue(userID, email string, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Kind:   kind,
	})
	return token.SignedString(s.secret)
}

// IssueAccess mints a short-lived access token for the given subject.
func (s *TokenService) IssueAccess(userID, email string) (string, error) {
	return s.issue(userID, email, KindAccess, s.accessTTL)
}

// IssueRefresh mints a long-lived refresh token for the given subject.
func (s *TokenService) IssueRefresh(userID, email string) (string, error) {
	return s.issue(userID, email, KindRefresh, s.refreshTTL)
}

// Verify checks signature, expiry and kind. On any failure it returns
// common.ErrInvalidToken and no payload.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*Payload, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, common.ErrInvalidToken
	}

	return &Payload{UserID: claims.UserID, Email: claims.Email}, nil
}

// DecodeUnverified extracts the payload without checking the signature or
// expiry. Diagnostics only; never use the result for authorization.
func (s *TokenService) DecodeUnverified(tokenString string) (*Payload, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, common.ErrInvalidToken
	}
	return &Payload{UserID: claims.UserID, Email: claims.Email}, nil
}
