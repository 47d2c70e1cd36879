package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/domains/link"
	"bookshelf-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// ListBooks - GET /v1/books?authorId=
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.service.List(c.Request.Context(), c.Query("authorId"))
	if link.HandleError(c, err) {
		return
	}

	data := model.ToResponses(books)
	response.SuccessWithMeta(c, http.StatusOK, "Get books successfully", data, &response.Meta{Total: len(data)})
}

// GetBookDetail - GET /v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Get book successfully", b.ToResponse())
}

// CreateBook - POST /v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Invalid create book request")
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Book created successfully", b.ToResponse())
}

// UpdateBook - PATCH /v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Msg("Invalid update book request")
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book updated successfully", nil)
}

// DeleteBook - DELETE /v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	err := h.service.Remove(c.Request.Context(), c.Param("id"))
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Book deleted successfully", nil)
}

// ExportBooks - GET /v1/books/export
// Streams an xlsx workbook of every book.
func (h *Handler) ExportBooks(c *gin.Context) {
	f, count, err := h.service.ExportBooksToExcel(c.Request.Context())
	if link.HandleError(c, err) {
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("books_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Int("books", count).Msg("Failed to write export")
	}
}
