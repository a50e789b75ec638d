package handlers

import (
	"github.com/Mykyta-Harashchenko/contacthub/internal/middleware"
	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db      *gorm.DB
	avatars *services.AvatarStore
	cache   *services.UserCache
}

func NewUserHandler(db *gorm.DB, avatars *services.AvatarStore, cache *services.UserCache) *UserHandler {
	return &UserHandler{db: db, avatars: avatars, cache: cache}
}

// Me returns the authenticated user's profile
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, middleware.CurrentUser(c))
}

// UpdateAvatar uploads a new avatar image and stores its URL on the profile
// PATCH /api/users/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	if h.avatars == nil {
		response.Error(c, response.NewUnavailable("avatar storage is not configured"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "could not read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.avatars.Upload(c.Request.Context(), file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.db.Model(user).Update("avatar", url).Error; err != nil {
		response.Error(c, err)
		return
	}
	h.cache.Invalidate(user.Email)

	user.Avatar = url
	response.Success(c, user)
}
