package services

import (
	"errors"
	"strings"
	"time"

	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/response"
	"gorm.io/gorm"
)

const birthdayFormat = "2006-01-02"

// ContactService provides the per-user contact book. Every query is scoped
// by the owning user's ID.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

type ContactRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=25"`
	Surname  string `json:"surname" binding:"required,min=3,max=25"`
	Phone    string `json:"phone" binding:"required,min=3,max=25"`
	Email    string `json:"email" binding:"required,email"`
	Birthday string `json:"birthday" binding:"required"` // YYYY-MM-DD
	Extra    string `json:"extra" binding:"omitempty,max=255"`
}

func (r *ContactRequest) birthday() (time.Time, error) {
	return time.Parse(birthdayFormat, r.Birthday)
}

type ContactListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// List returns the user's contacts. Limit is clamped to [10, 500].
func (s *ContactService) List(userID uint, req *ContactListRequest) ([]models.Contact, error) {
	limit := req.Limit
	if limit < 10 {
		limit = 10
	}
	if limit > 500 {
		limit = 500
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	var contacts []models.Contact
	if err := s.db.Where("user_id = ?", userID).
		Order("id").Limit(limit).Offset(offset).
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// Get returns a single contact owned by the user.
func (s *ContactService) Get(userID, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("not found")
		}
		return nil, err
	}
	return &contact, nil
}

// Create adds a contact for the user.
func (s *ContactService) Create(userID uint, req *ContactRequest) (*models.Contact, error) {
	birthday, err := req.birthday()
	if err != nil {
		return nil, response.NewBadRequest("invalid birthday, expected YYYY-MM-DD")
	}

	contact := models.Contact{
		Name:     req.Name,
		Surname:  req.Surname,
		Phone:    req.Phone,
		Email:    req.Email,
		Birthday: birthday,
		Extra:    req.Extra,
		UserID:   userID,
	}
	if err := s.db.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update replaces all fields of an owned contact.
func (s *ContactService) Update(userID, id uint, req *ContactRequest) (*models.Contact, error) {
	contact, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	birthday, err := req.birthday()
	if err != nil {
		return nil, response.NewBadRequest("invalid birthday, expected YYYY-MM-DD")
	}

	contact.Name = req.Name
	contact.Surname = req.Surname
	contact.Phone = req.Phone
	contact.Email = req.Email
	contact.Birthday = birthday
	contact.Extra = req.Extra

	if err := s.db.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes an owned contact. Deleting a missing contact is a no-op.
func (s *ContactService) Delete(userID, id uint) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.Contact{}, id).Error
}

// Search filters the user's contacts by case-insensitive substrings of name,
// surname and email; filters combine when several are present.
func (s *ContactService) Search(userID uint, name, surname, email string) ([]models.Contact, error) {
	query := s.db.Where("user_id = ?", userID)

	if name != "" {
		query = query.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if surname != "" {
		query = query.Where("lower(surname) LIKE ?", "%"+strings.ToLower(surname)+"%")
	}
	if email != "" {
		query = query.Where("lower(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	var contacts []models.Contact
	if err := query.Order("id").Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// UpcomingBirthdays returns contacts whose birthday falls within the next
// `days` days, year-agnostic. The window wraps the year end; Feb 29 birthdays
// count as Feb 28 on non-leap years.
func (s *ContactService) UpcomingBirthdays(userID uint, days int) ([]models.Contact, error) {
	if days <= 0 {
		days = 7
	}

	var contacts []models.Contact
	if err := s.db.Where("user_id = ?", userID).Find(&contacts).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	upcoming := make([]models.Contact, 0)
	for _, contact := range contacts {
		if birthdayInWindow(contact.Birthday, now, days) {
			upcoming = append(upcoming, contact)
		}
	}
	return upcoming, nil
}

func birthdayInWindow(birthday, now time.Time, days int) bool {
	if birthday.IsZero() {
		return false
	}

	for i := 0; i <= days; i++ {
		d := now.AddDate(0, 0, i)

		month, day := birthday.Month(), birthday.Day()
		if month == time.February && day == 29 && !isLeapYear(d.Year()) {
			day = 28
		}

		if d.Month() == month && d.Day() == day {
			return true
		}
	}
	return false
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
