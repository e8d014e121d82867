package customer

import "context"

// Filter は顧客一覧の検索条件
// Statuses が空の場合は削除済み以外を返す
type Filter struct {
	Statuses []Status
	Search   string
}

// Accepts は顧客がフィルタ条件を満たすかを返す
func (f Filter) Accepts(c *Customer) bool {
	if len(f.Statuses) == 0 {
		if c.Status == StatusDeleted {
			return false
		}
	} else {
		found := false
		for _, s := range f.Statuses {
			if s == c.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return c.Matches(f.Search)
}

// Repository は顧客ディレクトリのインターフェース
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, f Filter) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
}
