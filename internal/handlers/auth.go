package handlers

import (
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth  *services.AuthService
	queue services.TaskQueue
}

func NewAuthHandler(auth *services.AuthService, queue services.TaskQueue) *AuthHandler {
	return &AuthHandler{auth: auth, queue: queue}
}

// Signup registers a new user and queues the verification email
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Signup(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.enqueueVerification(c, user.Email, user.Username)

	response.Created(c, user)
}

// Login exchanges credentials for a token pair
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.auth.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pair)
}

// Refresh rotates a refresh token into a fresh token pair
// GET /api/auth/refresh_token
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := bearerToken(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	pair, err := h.auth.Refresh(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pair)
}

// ConfirmEmail marks the account behind a verification token as confirmed
// GET /api/auth/confirmed_email/:token
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	msg, err := h.auth.ConfirmEmail(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": msg})
}

// RequestEmail re-sends the verification email. The reply never reveals
// whether the address is registered.
// POST /api/auth/request_email
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, msg, err := h.auth.ResendConfirmation(req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	if user != nil {
		h.enqueueVerification(c, user.Email, user.Username)
	}

	response.Success(c, gin.H{"message": msg})
}

func (h *AuthHandler) enqueueVerification(c *gin.Context, email, username string) {
	task := &services.EmailTask{
		To:       email,
		Username: username,
		Host:     requestBaseURL(c),
	}
	if err := h.queue.Enqueue(task); err != nil {
		// The account exists either way; the user can ask for a re-send.
		logger.Warnf("[Auth] Failed to enqueue verification email for %s: %v", email, err)
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", response.NewUnauthorized("authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", response.NewUnauthorized("invalid authorization header format")
	}
	return parts[1], nil
}

// requestBaseURL reconstructs the external base URL of the current request,
// honoring a reverse proxy's X-Forwarded-Proto.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
