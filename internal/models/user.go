// Package models defines the records exchanged with the ordering backend
// and the small helpers the console needs to present them.
package models

import (
	"strings"
	"time"
	"unicode"
)

// Role represents a user's function on the platform.
type Role string

const (
	RoleClient        Role = "CLIENT"
	RoleAdmin         Role = "ADMIN"
	RoleOrderReceiver Role = "ORDER_RECEIVER"
	RoleOrderPicker   Role = "ORDER_PICKER"
	RoleCourier       Role = "COURIER"
)

// StaffRoles lists the roles an employee can be given, default first.
var StaffRoles = []Role{RoleOrderReceiver, RoleOrderPicker, RoleCourier, RoleAdmin}

var roleLabels = map[Role]string{
	RoleClient:        "Customer",
	RoleAdmin:         "Administrator",
	RoleOrderReceiver: "Order receiver",
	RoleOrderPicker:   "Order picker",
	RoleCourier:       "Courier",
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// IsStaff reports whether the role belongs to an employee rather than a customer.
func (r Role) IsStaff() bool {
	return r != RoleClient
}

// ValidStaff reports whether r can be assigned from the employee form.
func (r Role) ValidStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

// UserOrder is the order reference embedded in a user record.
type UserOrder struct {
	ID     int64       `json:"id"`
	Status OrderStatus `json:"status"`
}

// User is a platform user: either staff or a customer registered through
// the Telegram bot.
type User struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	TelegramID string      `json:"telegramId"`
	Role       Role        `json:"role"`
	Orders     []UserOrder `json:"orders,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// OrderCount returns the number of orders the user has placed or handled.
func (u User) OrderCount() int {
	return len(u.Orders)
}

// Matches reports whether the lowercase search term occurs in the user's
// name, phone or Telegram id. An empty term matches everyone.
func (u User) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(u.Phone, term) ||
		strings.Contains(u.TelegramID, term)
}

// UserInput is the payload for creating or updating a user. Empty optional
// fields are left out so an update does not clear them.
type UserInput struct {
	Name       string `json:"name,omitempty" validate:"required,max=200"`
	Phone      string `json:"phone,omitempty" validate:"required,e164"`
	TelegramID string `json:"telegramId,omitempty" validate:"max=64"`
	Role       Role   `json:"role" validate:"required"`
}

// NormalizePhone strips all whitespace and forces a single leading "+".
func NormalizePhone(phone string) string {
	phone = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
	return "+" + strings.TrimPrefix(phone, "+")
}

// PhoneDigits returns only the decimal digits of phone.
func PhoneDigits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// PlaceholderTelegramID is the Telegram id given to employees created from
// the console before they have started the bot. The bot replaces it once
// the employee shares the same phone number.
func PlaceholderTelegramID(phone string) string {
	return "phone_" + PhoneDigits(phone)
}

// SamePhone reports whether two phone numbers refer to the same line,
// comparing normalized forms first and bare digits second.
func SamePhone(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if NormalizePhone(a) == NormalizePhone(b) {
		return true
	}
	return PhoneDigits(a) == PhoneDigits(b)
}
