package domain

import (
	"time"
	"unicode"
)

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	IsStaff      bool      `json:"is_staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Username: u.Username, Staff: u.IsStaff}
}

const MinPasswordLength = 8

func ValidateCredentials(username, password string) error {
	v := NewValidationError()
	switch {
	case username == "":
		v.Add("username", "this field is required")
	case len(username) > 150:
		v.Add("username", "ensure this field has no more than 150 characters")
	default:
		for _, r := range username {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '@' || r == '.' || r == '+' || r == '-' || r == '_') {
				v.Add("username", "enter a valid username: letters, numbers and @/./+/-/_ only")
				break
			}
		}
	}
	if len(password) < MinPasswordLength {
		v.Add("password", "ensure this field has at least 8 characters")
	}
	return v.OrNil()
}

// Actor is whoever performs an operation. The zero value is anonymous.
type Actor struct {
	UserID   uint64
	Username string
	Staff    bool
}

func (a Actor) Authenticated() bool { return a.UserID != 0 }

func (a Actor) IsStaff() bool { return a.Authenticated() && a.Staff }
