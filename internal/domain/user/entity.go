package user

import "time"

// User はユーザーエンティティを表す
// ウェビナー操作の実行者（主催者判定の対象）として参照される
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// NewUser は新しいユーザーを作成する
func NewUser(id, email, name string) *User {
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.ID == "" {
		return ErrUserIDRequired
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	return nil
}
