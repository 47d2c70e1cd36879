package main

import (
	"github.com/hibiken/asynq"

	auditJob "bookshelf-backend/internal/domains/audit/job"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	linkAudit *auditJob.LinkAuditHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		linkAudit: auditJob.NewLinkAuditHandler(c.AuditService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeLinkAudit, h.linkAudit.ProcessTask)
}
