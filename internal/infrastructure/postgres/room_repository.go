package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/room"
)

type roomRow struct {
	ID            int64           `db:"id"`
	Number        string          `db:"number"`
	Description   string          `db:"description"`
	TypeID        int64           `db:"type_id"`
	MaxCapacity   int             `db:"max_capacity"`
	PricePerNight decimal.Decimal `db:"price_per_night"`
	Status        string          `db:"status"`
}

func (r *roomRow) toEntity() *room.Room {
	return &room.Room{
		ID:            r.ID,
		Number:        r.Number,
		Description:   r.Description,
		TypeID:        r.TypeID,
		MaxCapacity:   r.MaxCapacity,
		PricePerNight: r.PricePerNight,
		Status:        room.Status(r.Status),
	}
}

type roomTypeRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Note        string `db:"note"`
}

const roomColumns = `id, number, description, type_id, max_capacity, price_per_night, status`

type RoomRepository struct{ db *sqlx.DB }

var _ room.Repository = (*RoomRepository)(nil)

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, rm *room.Room) error {
	query := `INSERT INTO rooms (number, description, type_id, max_capacity, price_per_night, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rm.Number, rm.Description, rm.TypeID, rm.MaxCapacity, rm.PricePerNight, string(rm.Status),
	).Scan(&rm.ID)
	if err != nil {
		return mapRoomWriteError("客室作成に失敗", err)
	}
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*room.Room, error) {
	var row roomRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomNotFound
		}
		return nil, fmt.Errorf("客室取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RoomRepository) List(ctx context.Context, f room.Filter) ([]*room.Room, error) {
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
	if f.TypeID > 0 {
		w.add("type_id = ?", f.TypeID)
	}
	if f.MinCapacity > 0 {
		w.add("max_capacity >= ?", f.MinCapacity)
	}
	if strings.TrimSpace(f.Search) != "" {
		w.contains(f.Search, "number", "description")
	}

	var rows []roomRow
	query := `SELECT ` + roomColumns + ` FROM rooms` + w.String() + ` ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), w.args...); err != nil {
		return nil, fmt.Errorf("客室一覧取得に失敗: %w", err)
	}
	result := make([]*room.Room, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *RoomRepository) Update(ctx context.Context, rm *room.Room) error {
	query := `UPDATE rooms SET number = $1, description = $2, type_id = $3, max_capacity = $4,
		price_per_night = $5, status = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		rm.Number, rm.Description, rm.TypeID, rm.MaxCapacity, rm.PricePerNight, string(rm.Status), rm.ID,
	)
	if err != nil {
		return mapRoomWriteError("客室更新に失敗", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return room.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) ListTypes(ctx context.Context) ([]*room.RoomType, error) {
	var rows []roomTypeRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, description, note FROM room_types ORDER BY id`); err != nil {
		return nil, fmt.Errorf("客室タイプ一覧取得に失敗: %w", err)
	}
	result := make([]*room.RoomType, len(rows))
	for i, row := range rows {
		result[i] = &room.RoomType{ID: row.ID, Name: row.Name, Description: row.Description, Note: row.Note}
	}
	return result, nil
}

func (r *RoomRepository) GetTypeByID(ctx context.Context, id int64) (*room.RoomType, error) {
	var row roomTypeRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, name, description, note FROM room_types WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, room.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("客室タイプ取得に失敗: %w", err)
	}
	return &room.RoomType{ID: row.ID, Name: row.Name, Description: row.Description, Note: row.Note}, nil
}

func mapRoomWriteError(msg string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return room.ErrRoomNumberAlreadyExists
	case codeForeignKey:
		return room.ErrRoomTypeNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
