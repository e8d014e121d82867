package room

import "context"

// Filter は客室一覧の検索条件
// ゼロ値のフィールドは条件に含めない。Statuses が空の場合は削除済み以外を返す
type Filter struct {
	Statuses    []Status
	TypeID      int64
	MinCapacity int
	Search      string
}

// ActiveOnly は予約可能な客室のみを対象とするフィルタを返す
func ActiveOnly() Filter {
	return Filter{Statuses: []Status{StatusActive}}
}

// Accepts は客室がフィルタ条件を満たすかを返す
func (f Filter) Accepts(r *Room) bool {
	if len(f.Statuses) == 0 {
		if r.IsDeleted() {
			return false
		}
	} else if !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if f.TypeID > 0 && r.TypeID != f.TypeID {
		return false
	}
	if f.MinCapacity > 0 && !r.Fits(f.MinCapacity) {
		return false
	}
	return r.Matches(f.Search)
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Repository は客室カタログのインターフェース
type Repository interface {
	// Create は新しい客室を登録し、採番したIDを設定する
	Create(ctx context.Context, r *Room) error

	// GetByID はIDから客室を取得する（削除済みも含む）
	GetByID(ctx context.Context, id int64) (*Room, error)

	// List は条件に一致する客室一覧をID順に取得する
	List(ctx context.Context, f Filter) ([]*Room, error)

	// Update は客室を更新する
	Update(ctx context.Context, r *Room) error

	// ListTypes は客室タイプ一覧を取得する
	ListTypes(ctx context.Context) ([]*RoomType, error)

	// GetTypeByID はIDから客室タイプを取得する
	GetTypeByID(ctx context.Context, id int64) (*RoomType, error)
}
