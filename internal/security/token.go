package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Scope restricts which operation may consume a token.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrWrongScope   = errors.New("invalid scope for token")
)

// Claims is the signed claim set. Email-verification tokens carry no scope
// claim; access and refresh tokens always do.
type Claims struct {
	Scope Scope `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies JWTs with a symmetric key. The signing
// algorithm is fixed at construction time and enforced on decode.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

func NewTokenCodec(cfg *config.JWTConfig) (*TokenCodec, error) {
	var method jwt.SigningMethod
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s", cfg.Algorithm)
	}

	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &TokenCodec{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
		emailTTL:   cfg.EmailTTL(),
	}, nil
}

// IssueAccess signs an access token for the subject.
func (c *TokenCodec) IssueAccess(subject string) (string, error) {
	return c.issue(subject, ScopeAccess, c.accessTTL)
}

// IssueRefresh signs a refresh token for the subject.
func (c *TokenCodec) IssueRefresh(subject string) (string, error) {
	return c.issue(subject, ScopeRefresh, c.refreshTTL)
}

// IssueEmail signs an email-verification token carrying only sub, iat and exp.
// Verification tokens bypass scope checking on decode.
func (c *TokenCodec) IssueEmail(subject string) (string, error) {
	return c.issue(subject, "", c.emailTTL)
}

func (c *TokenCodec) issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry and requires the scope claim to
// equal want. Errors: ErrInvalidToken, ErrTokenExpired, ErrWrongScope.
func (c *TokenCodec) Decode(tokenString string, want Scope) (*Claims, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Scope != want {
		return nil, ErrWrongScope
	}
	return claims, nil
}

// DecodeEmail verifies signature and expiry only.
func (c *TokenCodec) DecodeEmail(tokenString string) (*Claims, error) {
	return c.parse(tokenString)
}

func (c *TokenCodec) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
