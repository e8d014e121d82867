package postgres

import (
	"strings"
)

// whereBuilder は ? プレースホルダで WHERE 句を組み立てる
// 完成したクエリは sqlx の Rebind で $n に変換してから実行する
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// contains は columns のいずれかに term を含む条件を追加する
// term 中の % と _ は文字として扱う
func (w *whereBuilder) contains(term string, columns ...string) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ?"
		w.args = append(w.args, pattern)
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

// page は LIMIT と OFFSET を返す。0 以下の値は付けない
func (w *whereBuilder) page(limit, offset int) string {
	var s string
	if limit > 0 {
		s += " LIMIT ?"
		w.args = append(w.args, limit)
	}
	if offset > 0 {
		s += " OFFSET ?"
		w.args = append(w.args, offset)
	}
	return s
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// PostgreSQL の LIKE は既定で \ をエスケープ文字として扱う
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
