package link

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared/response"
)

// HandleError writes the response for a service error. It returns false when
// err is nil so handlers can write `if link.HandleError(c, err) { return }`.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	// Checked first: a partial error may wrap a not-found from the store.
	var partial *PartialCompensationError
	if errors.As(err, &partial) {
		response.ErrorWithDetails(c, http.StatusInternalServerError, "PARTIAL_COMPENSATION", partial.Error(), partial)
		return true
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Fields)
		return true
	}

	// An id that cannot be parsed cannot exist either.
	if errors.Is(err, ErrInvalidIdentifier) || errors.Is(err, ErrNotFound) {
		response.NotFound(c, err.Error())
		return true
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled service error")
	response.InternalServerError(c, "Internal server error")
	return true
}
