package postgres

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	t.Run("条件なし", func(t *testing.T) {
		var w whereBuilder
		assert.Equal(t, "", w.String())
		assert.Equal(t, "", w.page(0, 0))
		assert.Empty(t, w.args)
	})

	t.Run("Rebindで位置パラメータに変換される", func(t *testing.T) {
		var w whereBuilder
		w.add("status = 'active'")
		w.add("customer_id = ?", int64(3))
		w.add("room_id = ?", int64(101))
		query := "SELECT id FROM bookings" + w.String() + " ORDER BY id" + w.page(10, 20)

		assert.Equal(t,
			"SELECT id FROM bookings WHERE status = 'active' AND customer_id = $1 AND room_id = $2 ORDER BY id LIMIT $3 OFFSET $4",
			sqlx.Rebind(sqlx.DOLLAR, query))
		assert.Equal(t, []any{int64(3), int64(101), 10, 20}, w.args)
	})

	t.Run("部分一致は列ごとに引数を持つ", func(t *testing.T) {
		var w whereBuilder
		w.add("type_id = ?", int64(2))
		w.contains(" Garden ", "number", "description")

		assert.Equal(t,
			" WHERE type_id = $1 AND (LOWER(number) LIKE $2 OR LOWER(description) LIKE $3)",
			sqlx.Rebind(sqlx.DOLLAR, w.String()))
		assert.Equal(t, []any{int64(2), "%garden%", "%garden%"}, w.args)
	})
}

func TestWhereBuilder_ContainsEscapesWildcards(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{name: "パーセント", term: "100%", want: `%100\%%`},
		{name: "アンダースコア", term: "a_b", want: `%a\_b%`},
		{name: "バックスラッシュ", term: `a\b`, want: `%a\\b%`},
		{name: "通常の文字列", term: "Suite", want: "%suite%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w whereBuilder
			w.contains(tt.term, "number")
			assert.Equal(t, []any{tt.want}, w.args)
		})
	}
}
