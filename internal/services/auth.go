package services

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/internal/security"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"gorm.io/gorm"
)

// AuthService orchestrates signup, login, token refresh, email confirmation
// and bearer-token resolution. All auth failures are typed *response.AppError
// values; store errors propagate as-is.
type AuthService struct {
	db    *gorm.DB
	codec *security.TokenCodec
	cache *UserCache
}

func NewAuthService(db *gorm.DB, codec *security.TokenCodec, cache *UserCache) *AuthService {
	return &AuthService{
		db:    db,
		codec: codec,
		cache: cache,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Signup registers a new account. The email must not be taken; the password
// is stored only as a bcrypt hash.
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("account already exists")
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Avatar:   gravatarURL(req.Email),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and issues a token pair. The confirmation check
// runs before the password check so an unconfirmed caller never learns
// whether the password was right.
func (s *AuthService) Login(req *LoginRequest) (*TokenPair, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email")
		}
		return nil, err
	}

	if !user.Confirmed {
		return nil, response.NewUnauthorized("email not confirmed")
	}

	if !security.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid password")
	}

	return s.issuePair(&user)
}

// Refresh rotates the token pair. The presented token must decode with the
// refresh scope and equal the token stored on the user row. On mismatch the
// stored token is cleared so a replayed rotated-out token also revokes the
// live one.
func (s *AuthService) Refresh(token string) (*TokenPair, error) {
	claims, err := s.codec.Decode(token, security.ScopeRefresh)
	if err != nil {
		return nil, response.NewUnauthorized("could not validate credentials")
	}

	var user models.User
	if err := s.db.Where("email = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("could not validate credentials")
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != token {
		if err := s.db.Model(&user).Update("refresh_token", nil).Error; err != nil {
			return nil, err
		}
		return nil, response.NewUnauthorized("invalid refresh token")
	}

	return s.issuePair(&user)
}

// ConfirmEmail consumes a verification token. Replays after confirmation are
// a no-op with an "already confirmed" message.
func (s *AuthService) ConfirmEmail(token string) (string, error) {
	claims, err := s.codec.DecodeEmail(token)
	if err != nil {
		return "", response.NewUnprocessable("invalid token for email verification")
	}

	var user models.User
	if err := s.db.Where("email = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewBadRequest("verification error")
		}
		return "", err
	}

	if user.Confirmed {
		return "Your email is already confirmed", nil
	}

	if err := s.db.Model(&user).Update("confirmed", true).Error; err != nil {
		return "", err
	}
	s.cache.Invalidate(user.Email)

	return "Email confirmed", nil
}

// CurrentUser resolves a bearer access token to its user. This is the gate
// for every protected endpoint.
func (s *AuthService) CurrentUser(token string) (*models.User, error) {
	claims, err := s.codec.Decode(token, security.ScopeAccess)
	if err != nil || claims.Subject == "" {
		return nil, response.NewUnauthorized("could not validate credentials")
	}

	if user := s.cache.Get(claims.Subject); user != nil {
		return user, nil
	}

	var user models.User
	if err := s.db.Where("email = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("could not validate credentials")
		}
		return nil, err
	}

	s.cache.Set(&user)
	return &user, nil
}

// ResendConfirmation resolves a user for the resend-verification endpoint.
// The returned user is non-nil only when a verification email should go out;
// unknown emails get the same message as unconfirmed ones so the endpoint
// cannot be used to probe registration.
func (s *AuthService) ResendConfirmation(email string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "Check your email for confirmation", nil
		}
		return nil, "", err
	}

	if user.Confirmed {
		return nil, "Your email is already confirmed", nil
	}

	return &user, "Check your email for confirmation", nil
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.codec.IssueAccess(user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefresh(user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(user).Update("refresh_token", refresh).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// gravatarURL returns the Gravatar avatar URL for an email address; used as
// the default avatar at signup.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s", hex.EncodeToString(sum[:]))
}
