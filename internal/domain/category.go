package domain

import (
	"strings"
	"unicode"
)

type Category struct {
	ID       uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug     string    `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Products []Product `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (c Category) String() string { return c.Name }

func (c Category) Validate() error {
	v := NewValidationError()
	switch {
	case strings.TrimSpace(c.Name) == "":
		v.Add("name", "this field is required")
	case len(c.Name) > 100:
		v.Add("name", "ensure this field has no more than 100 characters")
	}
	switch {
	case c.Slug == "":
		v.Add("slug", "enter a valid slug consisting of letters, numbers, underscores or hyphens")
	case len(c.Slug) > 100:
		v.Add("slug", "ensure this field has no more than 100 characters")
	case Slugify(c.Slug) != c.Slug:
		v.Add("slug", "enter a valid slug consisting of letters, numbers, underscores or hyphens")
	}
	return v.OrNil()
}

// Slugify lowercases s, keeps letters, digits, '_' and '-', and collapses
// every other run of characters into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
