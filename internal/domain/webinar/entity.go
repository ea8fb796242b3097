package webinar

import "time"

// MaxSeats はウェビナーに設定できる座席数の上限
const MaxSeats = 1000

// Webinar はウェビナーエンティティを表す
type Webinar struct {
	ID          string
	OrganizerID string
	Title       string
	StartAt     time.Time
	EndAt       time.Time
	Seats       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewWebinar は新しいウェビナーを作成する
func NewWebinar(organizerID, title string, startAt, endAt time.Time, seats int) *Webinar {
	now := time.Now()
	return &Webinar{
		OrganizerID: organizerID,
		Title:       title,
		StartAt:     startAt,
		EndAt:       endAt,
		Seats:       seats,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// IsOrganizer は指定ユーザーが主催者かを返す
func (w *Webinar) IsOrganizer(userID string) bool {
	return w.OrganizerID == userID
}

// ChangeSeats は座席数を変更する
// 増席のみ・上限チェックはユースケース側で行う
func (w *Webinar) ChangeSeats(seats int) {
	w.Seats = seats
	w.UpdatedAt = time.Now()
}

// Validate はウェビナーの検証を行う
func (w *Webinar) Validate() error {
	if w.OrganizerID == "" {
		return ErrOrganizerIDRequired
	}
	if w.Title == "" {
		return ErrTitleRequired
	}
	if w.Seats <= 0 {
		return ErrInvalidSeats
	}
	if w.Seats > MaxSeats {
		return ErrTooManySeats
	}
	if w.EndAt.Before(w.StartAt) {
		return ErrInvalidWebinarTime
	}
	return nil
}
