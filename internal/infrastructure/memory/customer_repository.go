package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
)

// CustomerRepository は顧客ディレクトリのメモリ実装
type CustomerRepository struct {
	store *Store
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.emailTaken(c) {
		return customer.ErrEmailAlreadyExists
	}
	r.store.customerSeq++
	c.ID = r.store.customerSeq
	r.store.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.customers {
		if c.Email == email && c.Status != customer.StatusDeleted {
			return &c, nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

func (r *CustomerRepository) List(ctx context.Context, f customer.Filter) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	result := make([]*customer.Customer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		if !f.Accepts(&c) {
			continue
		}
		c := c
		result = append(result, &c)
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.customers[c.ID]; !ok {
		return customer.ErrCustomerNotFound
	}
	if r.emailTaken(c) {
		return customer.ErrEmailAlreadyExists
	}
	r.store.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) emailTaken(c *customer.Customer) bool {
	if c.Status == customer.StatusDeleted {
		return false
	}
	for id, other := range r.store.customers {
		if id != c.ID && other.Status != customer.StatusDeleted && other.Email == c.Email {
			return true
		}
	}
	return false
}
