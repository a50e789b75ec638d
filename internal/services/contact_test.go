package services

import (
	"testing"
	"time"

	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
)

func setupContactService(t *testing.T) (*ContactService, uint, uint) {
	t.Helper()

	db := setupTestDB(t)

	owner := models.User{Username: "owner", Email: "owner@x.com", Password: "x", Confirmed: true}
	other := models.User{Username: "other", Email: "other@x.com", Password: "x", Confirmed: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create other user: %v", err)
	}

	return NewContactService(db), owner.ID, other.ID
}

func contactRequest(name string) *ContactRequest {
	return &ContactRequest{
		Name:     name,
		Surname:  "Doe",
		Phone:    "+380501234567",
		Email:    name + "@example.com",
		Birthday: "1990-05-15",
	}
}

func TestContactCreateAndGet(t *testing.T) {
	svc, ownerID, otherID := setupContactService(t)

	created, err := svc.Create(ownerID, contactRequest("Alice"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("created contact should have an ID")
	}
	if created.Birthday.Format(birthdayFormat) != "1990-05-15" {
		t.Errorf("Birthday = %s, expected 1990-05-15", created.Birthday.Format(birthdayFormat))
	}

	got, err := svc.Get(ownerID, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("Name = %q, expected %q", got.Name, "Alice")
	}

	// Other users must not see it
	_, err = svc.Get(otherID, created.ID)
	assertAppError(t, err, 404, "not found")
}

func TestContactCreate_InvalidBirthday(t *testing.T) {
	svc, ownerID, _ := setupContactService(t)

	req := contactRequest("Alice")
	req.Birthday = "15.05.1990"

	_, err := svc.Create(ownerID, req)
	assertAppError(t, err, 400, "invalid birthday, expected YYYY-MM-DD")
}

func TestContactList(t *testing.T) {
	svc, ownerID, otherID := setupContactService(t)

	for _, name := range []string{"Alice", "Bobby", "Carol"} {
		if _, err := svc.Create(ownerID, contactRequest(name)); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}
	if _, err := svc.Create(otherID, contactRequest("David")); err != nil {
		t.Fatalf("Create(David) error = %v", err)
	}

	contacts, err := svc.List(ownerID, &ContactListRequest{Limit: 100})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(contacts) != 3 {
		t.Errorf("len(contacts) = %d, expected 3 (other user's contacts excluded)", len(contacts))
	}

	// Offset skips from the front of the id-ordered list
	contacts, err = svc.List(ownerID, &ContactListRequest{Limit: 100, Offset: 2})
	if err != nil {
		t.Fatalf("List() with offset error = %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Carol" {
		t.Errorf("offset list = %v, expected just Carol", contacts)
	}
}

func TestContactUpdate(t *testing.T) {
	svc, ownerID, otherID := setupContactService(t)

	created, _ := svc.Create(ownerID, contactRequest("Alice"))

	req := contactRequest("Alicia")
	req.Extra = "renamed"
	updated, err := svc.Update(ownerID, created.ID, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Alicia" || updated.Extra != "renamed" {
		t.Errorf("updated contact = %+v, expected new name and extra", updated)
	}

	_, err = svc.Update(otherID, created.ID, req)
	assertAppError(t, err, 404, "not found")
}

func TestContactDelete(t *testing.T) {
	svc, ownerID, otherID := setupContactService(t)

	created, _ := svc.Create(ownerID, contactRequest("Alice"))

	// Another user's delete must not touch it
	if err := svc.Delete(otherID, created.ID); err != nil {
		t.Fatalf("Delete() by other user error = %v", err)
	}
	if _, err := svc.Get(ownerID, created.ID); err != nil {
		t.Fatalf("contact should survive foreign delete: %v", err)
	}

	if err := svc.Delete(ownerID, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err := svc.Get(ownerID, created.ID)
	assertAppError(t, err, 404, "not found")

	// Deleting again is a no-op
	if err := svc.Delete(ownerID, created.ID); err != nil {
		t.Fatalf("repeat Delete() error = %v", err)
	}
}

func TestContactSearch(t *testing.T) {
	svc, ownerID, otherID := setupContactService(t)

	alice := contactRequest("Alice")
	alice.Surname = "Smith"
	svc.Create(ownerID, alice)

	bob := contactRequest("Bobby")
	bob.Surname = "Smith"
	svc.Create(ownerID, bob)

	foreign := contactRequest("Alicia")
	svc.Create(otherID, foreign)

	tests := []struct {
		name, surname, email string
		want                 int
	}{
		{"ali", "", "", 1},
		{"", "smith", "", 2},
		{"bob", "smith", "", 1},
		{"ali", "smith", "", 1},
		{"", "", "bobby@example.com", 1},
		{"zzz", "", "", 0},
		{"", "", "", 2},
	}
	for _, tt := range tests {
		got, err := svc.Search(ownerID, tt.name, tt.surname, tt.email)
		if err != nil {
			t.Fatalf("Search(%q, %q, %q) error = %v", tt.name, tt.surname, tt.email, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q, %q, %q) returned %d contacts, expected %d",
				tt.name, tt.surname, tt.email, len(got), tt.want)
		}
	}
}

func TestUpcomingBirthdays(t *testing.T) {
	svc, ownerID, _ := setupContactService(t)

	now := time.Now()
	inWindow := contactRequest("Alice")
	inWindow.Birthday = now.AddDate(-30, 0, 3).Format(birthdayFormat)
	svc.Create(ownerID, inWindow)

	today := contactRequest("Bobby")
	today.Birthday = now.AddDate(-25, 0, 0).Format(birthdayFormat)
	svc.Create(ownerID, today)

	outside := contactRequest("Carol")
	outside.Birthday = now.AddDate(-40, 0, 20).Format(birthdayFormat)
	svc.Create(ownerID, outside)

	upcoming, err := svc.UpcomingBirthdays(ownerID, 7)
	if err != nil {
		t.Fatalf("UpcomingBirthdays() error = %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("len(upcoming) = %d, expected 2", len(upcoming))
	}
	for _, contact := range upcoming {
		if contact.Name == "Carol" {
			t.Error("contact 20 days out must not be included in a 7-day window")
		}
	}
}

func TestBirthdayInWindow(t *testing.T) {
	date := func(s string) time.Time {
		d, err := time.Parse(birthdayFormat, s)
		if err != nil {
			t.Fatalf("bad test date %q: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name     string
		birthday string
		now      string
		days     int
		want     bool
	}{
		{"today", "1990-05-15", "2025-05-15", 7, true},
		{"last day of window", "1990-05-22", "2025-05-15", 7, true},
		{"just outside", "1990-05-23", "2025-05-15", 7, false},
		{"yesterday", "1990-05-14", "2025-05-15", 7, false},
		{"year wrap", "1990-01-02", "2025-12-29", 7, true},
		{"feb 29 on leap year", "1992-02-29", "2024-02-25", 7, true},
		{"feb 29 counts as feb 28 off leap years", "1992-02-29", "2025-02-25", 7, true},
		{"feb 29 outside window", "1992-02-29", "2025-03-02", 7, false},
		{"zero birthday", "0001-01-01", "2025-05-15", 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			birthday := date(tt.birthday)
			if tt.name == "zero birthday" {
				birthday = time.Time{}
			}
			if got := birthdayInWindow(birthday, date(tt.now), tt.days); got != tt.want {
				t.Errorf("birthdayInWindow(%s, %s, %d) = %v, expected %v",
					tt.birthday, tt.now, tt.days, got, tt.want)
			}
		})
	}
}
