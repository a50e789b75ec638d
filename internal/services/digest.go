package services

import (
	"fmt"
	"strings"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DigestService mails each confirmed user a daily digest of contacts with
// upcoming birthdays.
type DigestService struct {
	db       *gorm.DB
	email    *EmailService
	contacts *ContactService
	cfg      *config.DigestConfig

	cronScheduler *cron.Cron
}

func NewDigestService(db *gorm.DB, email *EmailService, contacts *ContactService, cfg *config.DigestConfig) *DigestService {
	return &DigestService{
		db:       db,
		email:    email,
		contacts: contacts,
		cfg:      cfg,
	}
}

func (s *DigestService) StartScheduler() {
	s.cronScheduler = cron.New()

	cronExpr := s.cronExpr()
	if _, err := s.cronScheduler.AddFunc(cronExpr, func() {
		s.Run()
	}); err != nil {
		logger.Errorf("[Digest] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Digest] Scheduled at %s (cron: %s)", s.cfg.Time, cronExpr)
}

func (s *DigestService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// cronExpr builds a daily cron expression from the configured "HH:MM".
func (s *DigestService) cronExpr() string {
	hour := "8"
	minute := "0"
	parts := strings.Split(s.cfg.Time, ":")
	if len(parts) == 2 {
		hour = parts[0]
		minute = parts[1]
	}
	return fmt.Sprintf("%s %s * * *", minute, hour)
}

// Run generates and sends the digest once. Exported so an operator hook or
// test can trigger it outside the schedule.
func (s *DigestService) Run() {
	if !s.email.Enabled() {
		logger.Infof("[Digest] Email delivery disabled, skipping run")
		return
	}

	days := s.cfg.WindowDays
	if days <= 0 {
		days = 7
	}

	var users []models.User
	if err := s.db.Where("confirmed = ?", true).Find(&users).Error; err != nil {
		logger.Errorf("[Digest] Failed to load users: %v", err)
		return
	}

	sent := 0
	for _, user := range users {
		upcoming, err := s.contacts.UpcomingBirthdays(user.ID, days)
		if err != nil {
			logger.Warnf("[Digest] Failed to collect birthdays for user %d: %v", user.ID, err)
			continue
		}
		if len(upcoming) == 0 {
			continue
		}

		if err := s.email.SendBirthdayDigest(user.Email, user.Username, upcoming); err != nil {
			logger.Warnf("[Digest] Failed to send digest to user %d: %v", user.ID, err)
			continue
		}
		sent++
	}

	logger.Infof("[Digest] Run complete: %d digests sent", sent)
}
