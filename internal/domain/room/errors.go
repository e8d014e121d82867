package room

import "errors"

// Room ドメインのエラー定義
var (
	ErrRoomNotFound            = errors.New("客室が見つかりません")
	ErrRoomUnavailable         = errors.New("客室は予約できません")
	ErrRoomNumberRequired      = errors.New("部屋番号は必須です")
	ErrRoomNumberAlreadyExists = errors.New("同じ部屋番号の客室が既に存在します")
	ErrRoomTypeRequired        = errors.New("客室タイプは必須です")
	ErrRoomTypeNotFound        = errors.New("客室タイプが見つかりません")
	ErrInvalidCapacity         = errors.New("最大収容人数は1以上である必要があります")
	ErrInvalidPrice            = errors.New("料金は0以上である必要があります")
	ErrInvalidStatus           = errors.New("客室の状態が不正です")
)
