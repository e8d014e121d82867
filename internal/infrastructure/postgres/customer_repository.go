package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/customer"
)

type customerRow struct {
	ID        int64      `db:"id"`
	FullName  string     `db:"full_name"`
	Email     string     `db:"email"`
	Telephone string     `db:"telephone"`
	Birthday  *time.Time `db:"birthday"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func (r *customerRow) toEntity() *customer.Customer {
	return &customer.Customer{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Telephone: r.Telephone,
		Birthday:  r.Birthday,
		Status:    customer.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const customerColumns = `id, full_name, email, telephone, birthday, status, created_at, updated_at`

type CustomerRepository struct{ db *sqlx.DB }

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `INSERT INTO customers (full_name, email, telephone, birthday, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.FullName, c.Email, c.Telephone, c.Birthday, string(c.Status), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return customer.ErrEmailAlreadyExists
		}
		return fmt.Errorf("顧客作成に失敗: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1 AND status <> 'deleted'`, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any) (*customer.Customer, error) {
	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("顧客取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *CustomerRepository) List(ctx context.Context, f customer.Filter) ([]*customer.Customer, error) {
	var w whereBuilder
	if len(f.Statuses) == 0 {
		w.add("status <> 'deleted'")
	} else {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		w.add("status = ANY(?)", pq.Array(statuses))
	}
	if strings.TrimSpace(f.Search) != "" {
		w.contains(f.Search, "full_name", "email", "telephone")
	}

	var rows []customerRow
	query := `SELECT ` + customerColumns + ` FROM customers` + w.String() + ` ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), w.args...); err != nil {
		return nil, fmt.Errorf("顧客一覧取得に失敗: %w", err)
	}
	result := make([]*customer.Customer, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `UPDATE customers SET full_name = $1, email = $2, telephone = $3, birthday = $4,
		status = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		c.FullName, c.Email, c.Telephone, c.Birthday, string(c.Status), c.UpdatedAt, c.ID,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return customer.ErrEmailAlreadyExists
		}
		return fmt.Errorf("顧客更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}
