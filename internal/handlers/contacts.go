package handlers

import (
	"strconv"

	"github.com/Mykyta-Harashchenko/contacthub/internal/middleware"
	"github.com/Mykyta-Harashchenko/contacthub/internal/services"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contacts *services.ContactService
}

func NewContactHandler(contacts *services.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List returns the authenticated user's contacts
// GET /api/contacts?limit=&offset=
func (h *ContactHandler) List(c *gin.Context) {
	var req services.ContactListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contacts, err := h.contacts.List(middleware.CurrentUser(c).ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contacts)
}

// Get returns a single contact
// GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	contact, err := h.contacts.Get(middleware.CurrentUser(c).ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contact)
}

// Create adds a contact
// POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contact, err := h.contacts.Create(middleware.CurrentUser(c).ID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, contact)
}

// Update replaces all fields of a contact
// PUT /api/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contact, err := h.contacts.Update(middleware.CurrentUser(c).ID, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contact)
}

// Delete removes a contact
// DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := contactID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.contacts.Delete(middleware.CurrentUser(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Search filters contacts by name, surname and email substrings
// GET /api/contacts/search?name=&surname=&email=
func (h *ContactHandler) Search(c *gin.Context) {
	contacts, err := h.contacts.Search(
		middleware.CurrentUser(c).ID,
		c.Query("name"),
		c.Query("surname"),
		c.Query("email"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contacts)
}

// UpcomingBirthdays lists contacts with a birthday in the next N days
// GET /api/contacts/upcoming-birthdays?days=
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "days must be a positive integer")
			return
		}
		days = parsed
	}

	contacts, err := h.contacts.UpcomingBirthdays(middleware.CurrentUser(c).ID, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, contacts)
}

func contactID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, response.NewBadRequest("invalid contact id")
	}
	return uint(id), nil
}
