package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/image-moderation-service/internal/config"
	"github.com/spec-kit/image-moderation-service/internal/events"
	"github.com/spec-kit/image-moderation-service/internal/moderation"
	apperrors "github.com/spec-kit/image-moderation-service/pkg/util"
)

// ModerateEndpoint is the capability name written to the usage log.
const ModerateEndpoint = "/moderate"

// StatusSafe and StatusUnsafe are the two moderation verdicts.
const (
	StatusSafe   = "safe"
	StatusUnsafe = "unsafe"
)

// ModerationResult is the outcome of classifying one image.
type ModerationResult struct {
	Filename string             `json:"filename"`
	Status   string             `json:"status"`
	Labels   []moderation.Label `json:"labels,omitempty"`
}

// ModerationService logs usage and proxies image bytes to the external
// classifier, caching results by content hash.
type ModerationService struct {
	classifier    moderation.Classifier
	dispatcher    events.Dispatcher
	cache         CacheClient
	logger        *zap.Logger
	minConfidence float32
	cacheTTL      time.Duration
}

// NewModerationService builds the service. cache may be nil, in which case
// every request reaches the classifier.
func NewModerationService(cfg config.ClassifierConfig, classifier moderation.Classifier, dispatcher events.Dispatcher, cache CacheClient, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		classifier:    classifier,
		dispatcher:    dispatcher,
		cache:         cache,
		logger:        logger,
		minConfidence: cfg.MinConfidence,
		cacheTTL:      cfg.CacheTTL(),
	}
}

// Moderate classifies the image on behalf of the given token. The filename
// is validated before any usage record or classifier call happens.
func (s *ModerationService) Moderate(ctx context.Context, token, filename string, image []byte) (*ModerationResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, apperrors.NewValidationError("no file uploaded", nil)
	}

	s.publishUsage(ctx, token)

	labels, cached, err := s.cachedLabels(ctx, image)
	if err != nil {
		return nil, apperrors.NewClassifierError(err)
	}
	if !cached {
		s.storeLabels(ctx, image, labels)
	}

	result := &ModerationResult{Filename: filename, Status: StatusSafe}
	if len(labels) > 0 {
		result.Status = StatusUnsafe
		result.Labels = labels
	}
	return result, nil
}

// publishUsage emits the usage event. Delivery is best-effort; the
// dispatcher swallows handler errors.
func (s *ModerationService) publishUsage(ctx context.Context, token string) {
	if s.dispatcher == nil {
		return
	}
	now := time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUsageRecorded,
		Timestamp: now,
		Payload: events.UsageRecordedPayload{
			Token:     token,
			Endpoint:  ModerateEndpoint,
			Timestamp: now,
		},
	})
}

// cachedLabels returns the labels for the image, consulting the cache
// first. The second return value reports whether the cache served them.
func (s *ModerationService) cachedLabels(ctx context.Context, image []byte) ([]moderation.Label, bool, error) {
	key := cacheKey(image)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var labels []moderation.Label
			if jsonErr := json.Unmarshal([]byte(raw), &labels); jsonErr == nil {
				return labels, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("moderation cache read failed", zap.Error(err))
		}
	}

	labels, err := s.classifier.DetectLabels(ctx, image, s.minConfidence)
	if err != nil {
		return nil, false, err
	}
	return labels, false, nil
}

// storeLabels writes the classifier verdict to the cache, best-effort.
func (s *ModerationService) storeLabels(ctx context.Context, image []byte, labels []moderation.Label) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(labels)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(image), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("moderation cache write failed", zap.Error(err))
	}
}

func cacheKey(image []byte) string {
	return fmt.Sprintf("moderation:result:%x", sha256.Sum256(image))
}
