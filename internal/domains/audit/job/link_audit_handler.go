package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/audit/model"
	"bookshelf-backend/internal/domains/audit/service"
)

// LinkAuditHandler processes links:audit tasks, both the cron entry and
// the ones enqueued through POST /links/audit.
type LinkAuditHandler struct {
	service *service.Service
}

func NewLinkAuditHandler(service *service.Service) *LinkAuditHandler {
	return &LinkAuditHandler{service: service}
}

func (h *LinkAuditHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.LinkAuditPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			// A bad payload will not get better on retry
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	log.Info().Str("requested_by", payload.RequestedBy).Msg("Link audit started")

	if _, err := h.service.Run(ctx); err != nil {
		return fmt.Errorf("link audit: %w", err)
	}
	return nil
}
