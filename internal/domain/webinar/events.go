package webinar

import "time"

// SeatsChanged は座席数変更後に発行されるドメインイベント
type SeatsChanged struct {
	WebinarID     string
	OrganizerID   string
	PreviousSeats int
	Seats         int
	ChangedAt     time.Time
}
