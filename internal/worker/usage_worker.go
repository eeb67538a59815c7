package worker

import (
	"github.com/spec-kit/image-moderation-service/internal/service"
)

// StartUsageWorker registers the usage log handlers.
func StartUsageWorker(usageService *service.UsageService) {
	if usageService == nil {
		return
	}
	usageService.RegisterHandlers()
}
