package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/image-moderation-service/internal/events"
	"github.com/spec-kit/image-moderation-service/internal/repository"
)

// UsageService persists usage events published by other services. Writes
// are best-effort: a failure is logged but never returned to the
// dispatcher, so the request that produced the event is unaffected.
type UsageService struct {
	dispatcher events.Dispatcher
	usage      repository.UsageRepository
	logger     *zap.Logger
}

// NewUsageService creates the service.
func NewUsageService(dispatcher events.Dispatcher, usage repository.UsageRepository, logger *zap.Logger) *UsageService {
	return &UsageService{
		dispatcher: dispatcher,
		usage:      usage,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (u *UsageService) RegisterHandlers() {
	if u.dispatcher == nil {
		return
	}
	u.dispatcher.Subscribe(events.EventUsageRecorded, u.handleUsageRecorded)
}

func (u *UsageService) handleUsageRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UsageRecordedPayload)
	if !ok {
		u.logger.Warn("unexpected usage event payload", zap.String("event_id", event.ID))
		return nil
	}

	if err := u.usage.Append(ctx, payload.Token, payload.Endpoint, payload.Timestamp); err != nil {
		u.logger.Error("usage log write failed",
			zap.String("endpoint", payload.Endpoint),
			zap.Error(err))
	}
	return nil
}
