package booking

import "time"

// DateRange は [CheckIn, CheckOut) の半開区間で表す宿泊期間
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange は日付部分のみを残し、UTCの0時に正規化した宿泊期間を作成する
func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: TruncateToDate(checkIn), CheckOut: TruncateToDate(checkOut)}
}

// TruncateToDate は時刻を切り捨て、同じ暦日のUTC 0時を返す
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate はチェックアウトがチェックインより後であることを検証する
func (r DateRange) Validate() error {
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidDateRange
	}
	return nil
}

// Nights は宿泊数を返す
func (r DateRange) Nights() int {
	if !r.CheckOut.After(r.CheckIn) {
		return 0
	}
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps は2つの期間が重なるかを返す
// 半開区間なので、チェックアウト日に別の予約がチェックインしても重ならない
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// Contains は期間全体が r の内側に収まるかを返す
func (r DateRange) Contains(other DateRange) bool {
	return !other.CheckIn.Before(r.CheckIn) && !other.CheckOut.After(r.CheckOut)
}

// StartsBefore はチェックインが指定日より前かを返す
func (r DateRange) StartsBefore(day time.Time) bool {
	return r.CheckIn.Before(TruncateToDate(day))
}
