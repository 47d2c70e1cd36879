package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/audit/service"
	"bookshelf-backend/internal/domains/link"
	"bookshelf-backend/internal/shared/response"
)

type AuditHandler struct {
	service *service.Service
}

func NewAuditHandler(service *service.Service) *AuditHandler {
	return &AuditHandler{service: service}
}

// GetLastReport - GET /v1/links/audit
func (h *AuditHandler) GetLastReport(c *gin.Context) {
	report, err := h.service.Last(c.Request.Context())
	if link.HandleError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, "Last link audit", report)
}

// TriggerAudit - POST /v1/links/audit
// Enqueues the audit on the worker. Without a queue the audit runs inline.
func (h *AuditHandler) TriggerAudit(c *gin.Context) {
	requestedBy := c.GetString("user_id")
	if requestedBy == "" {
		requestedBy = "api"
	}

	taskID, err := h.service.Enqueue(c.Request.Context(), requestedBy)
	if errors.Is(err, service.ErrQueueDisabled) {
		report, err := h.service.Run(c.Request.Context())
		if link.HandleError(c, err) {
			return
		}
		response.Success(c, http.StatusOK, "Link audit finished", report)
		return
	}
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusAccepted, "Link audit enqueued", gin.H{"taskId": taskID})
}
