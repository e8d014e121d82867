package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound    = errors.New("予約が見つかりません")
	ErrInvalidDateRange   = errors.New("チェックアウト日はチェックイン日より後である必要があります")
	ErrPastCheckIn        = errors.New("チェックイン日に過去の日付は指定できません")
	ErrBookingConflict    = errors.New("指定期間は既に他の予約で埋まっています")
	ErrRoomBusy           = errors.New("客室が他のリクエストによって処理中です")
	ErrNotesTooLong       = errors.New("備考は500文字以内である必要があります")
	ErrCustomerIDRequired = errors.New("顧客IDは必須です")
	ErrRoomIDRequired     = errors.New("客室IDは必須です")
	ErrInvalidAmount      = errors.New("合計金額は0以上である必要があります")
	ErrStorage            = errors.New("ストレージエラー")
)

// StorageError は永続化層の失敗を表す
// errors.Is(err, ErrStorage) で判定できる
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError は操作名と原因からStorageErrorを作成する
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
