package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCustomer(t *testing.T) {
	c := NewCustomer("  Hanako Yamada ", " Hanako@Example.COM ", "090-1234", nil)

	assert.Equal(t, "Hanako Yamada", c.FullName)
	assert.Equal(t, "hanako@example.com", c.Email)
	assert.Equal(t, StatusActive, c.Status)
	assert.True(t, c.IsActive())
	assert.NoError(t, c.Validate())
}

func TestCustomer_Validate(t *testing.T) {
	tests := []struct {
		name        string
		customer    *Customer
		errExpected error
	}{
		{name: "氏名なし", customer: NewCustomer("", "a@example.com", "", nil), errExpected: ErrFullNameRequired},
		{name: "メール形式不正", customer: NewCustomer("Taro", "not-an-email", "", nil), errExpected: ErrInvalidEmail},
		{name: "メールなし", customer: NewCustomer("Taro", "", "", nil), errExpected: ErrInvalidEmail},
		{name: "状態不正", customer: &Customer{FullName: "Taro", Email: "t@example.com", Status: "x"}, errExpected: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.customer.Validate(), tt.errExpected)
		})
	}
}

func TestCustomer_DeleteAndFilter(t *testing.T) {
	c := NewCustomer("Taro Suzuki", "taro@example.com", "03-5555", nil)
	assert.True(t, Filter{Search: "suzuki"}.Accepts(c))
	assert.True(t, Filter{Search: "5555"}.Accepts(c))
	assert.False(t, Filter{Search: "hanako"}.Accepts(c))

	c.Delete()
	assert.False(t, c.IsActive())
	assert.False(t, Filter{}.Accepts(c))
	assert.True(t, Filter{Statuses: []Status{StatusDeleted}}.Accepts(c))
}
