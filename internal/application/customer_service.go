package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
)

type CustomerService struct {
	customerRepo customer.Repository
}

func NewCustomerService(cr customer.Repository) *CustomerService {
	return &CustomerService{customerRepo: cr}
}

type CreateCustomerInput struct {
	FullName  string
	Email     string
	Telephone string
	Birthday  *time.Time
}

func (s *CustomerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*customer.Customer, error) {
	c := customer.NewCustomer(input.FullName, input.Email, input.Telephone, input.Birthday)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, f customer.Filter) ([]*customer.Customer, error) {
	return s.customerRepo.List(ctx, f)
}

type UpdateCustomerInput struct {
	ID        int64
	FullName  string
	Email     string
	Telephone string
	Birthday  *time.Time
	Status    customer.Status
}

// UpdateCustomer は顧客情報を更新する。削除済みの顧客は更新できない
func (s *CustomerService) UpdateCustomer(ctx context.Context, input UpdateCustomerInput) (*customer.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if c.Status == customer.StatusDeleted {
		return nil, customer.ErrCustomerNotFound
	}
	c.FullName = strings.TrimSpace(input.FullName)
	c.Email = strings.ToLower(strings.TrimSpace(input.Email))
	c.Telephone = strings.TrimSpace(input.Telephone)
	c.Birthday = input.Birthday
	if input.Status != "" {
		c.Status = input.Status
	}
	c.UpdatedAt = time.Now()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer は顧客を論理削除する
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == customer.StatusDeleted {
		return customer.ErrCustomerNotFound
	}
	c.Delete()
	if err := s.customerRepo.Update(ctx, c); err != nil {
		return fmt.Errorf("顧客削除に失敗しました: %w", err)
	}
	return nil
}
