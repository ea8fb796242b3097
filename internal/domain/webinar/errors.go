package webinar

import "errors"

// Webinar ドメインのエラー定義
var (
	ErrWebinarNotFound        = errors.New("ウェビナーが見つかりません")
	ErrNotOrganizer           = errors.New("ウェビナーの主催者ではありません")
	ErrReduceSeats            = errors.New("座席数を減らすことはできません")
	ErrTooManySeats           = errors.New("座席数は1000以下である必要があります")
	ErrOrganizerIDRequired    = errors.New("主催者IDは必須です")
	ErrTitleRequired          = errors.New("タイトルは必須です")
	ErrInvalidSeats           = errors.New("座席数は1以上である必要があります")
	ErrInvalidWebinarTime     = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
