package handler

import (
	"context"

	"github.com/sanosuguru/go-webinar-management/internal/application"
	"github.com/sanosuguru/go-webinar-management/internal/domain/webinar"
)

// WebinarServiceInterface はウェビナーサービスのインターフェース
type WebinarServiceInterface interface {
	CreateWebinar(ctx context.Context, input application.CreateWebinarInput) (*webinar.Webinar, error)
	GetWebinar(ctx context.Context, id string) (*webinar.Webinar, error)
	ChangeSeats(ctx context.Context, input application.ChangeSeatsInput) error
}

var _ WebinarServiceInterface = (*application.WebinarService)(nil)
