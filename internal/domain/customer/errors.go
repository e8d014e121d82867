package customer

import "errors"

// Customer ドメインのエラー定義
var (
	ErrCustomerNotFound   = errors.New("顧客が見つかりません")
	ErrCustomerInactive   = errors.New("顧客が存在しないか無効です")
	ErrFullNameRequired   = errors.New("氏名は必須です")
	ErrInvalidEmail       = errors.New("メールアドレスの形式が不正です")
	ErrEmailAlreadyExists = errors.New("同じメールアドレスの顧客が既に存在します")
	ErrInvalidStatus      = errors.New("顧客の状態が不正です")
)
