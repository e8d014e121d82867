package api

import (
	"fmt"
	"time"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/booking"
)

// ParseDate は YYYY-MM-DD 形式の日付をUTC 0時として解釈する
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(booking.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日付はYYYY-MM-DD形式で指定してください: %q", s)
	}
	return t, nil
}

// FormatDate は日付を YYYY-MM-DD 形式で返す
func FormatDate(t time.Time) string {
	return t.Format(booking.DateLayout)
}
