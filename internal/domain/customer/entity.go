package customer

import (
	"net/mail"
	"strings"
	"time"
)

// Status は顧客の状態を表す
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// Customer は宿泊客を表す
type Customer struct {
	ID        int64
	FullName  string
	Email     string
	Telephone string
	Birthday  *time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCustomer は新しい顧客を作成する
func NewCustomer(fullName, email, telephone string, birthday *time.Time) *Customer {
	now := time.Now()
	return &Customer{
		FullName:  strings.TrimSpace(fullName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Telephone: strings.TrimSpace(telephone),
		Birthday:  birthday,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive は予約可能な顧客かを返す
func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

// Delete は顧客を論理削除する
func (c *Customer) Delete() {
	c.Status = StatusDeleted
	c.UpdatedAt = time.Now()
}

// Matches は氏名・メール・電話番号のいずれかに検索語が含まれるかを返す
func (c *Customer) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.FullName), term) ||
		strings.Contains(strings.ToLower(c.Email), term) ||
		strings.Contains(c.Telephone, term)
}

// Validate は顧客の検証を行う
func (c *Customer) Validate() error {
	if c.FullName == "" {
		return ErrFullNameRequired
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	switch c.Status {
	case StatusActive, StatusInactive, StatusDeleted:
	default:
		return ErrInvalidStatus
	}
	return nil
}
