package application

import "errors"

var (
	// ErrWebinarBusy は同じウェビナーへの更新が処理中でロックを取得できなかったことを表す
	ErrWebinarBusy = errors.New("ウェビナーは他のリクエストで更新中です")
)
