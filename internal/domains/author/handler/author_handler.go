package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/service"
	"bookshelf-backend/internal/domains/link"
	"bookshelf-backend/internal/shared/response"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /v1/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	a, err := h.service.Create(c.Request.Context(), req)
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, "Create author successfully", a.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/authors?bookId=
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.service.List(c.Request.Context(), c.Query("bookId"))
	if link.HandleError(c, err) {
		return
	}

	data := make([]*model.AuthorResponse, len(authors))
	for i, a := range authors {
		data[i] = a.ToResponse()
	}
	response.SuccessWithMeta(c, http.StatusOK, "Get authors successfully", data, &response.Meta{Total: len(data)})
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetByID(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Get author successfully", a.ToResponse())
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PATCH /v1/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Update(c *gin.Context) {
	var req model.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Update author successfully", nil)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /v1/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Delete(c *gin.Context) {
	err := h.service.Remove(c.Request.Context(), c.Param("id"))
	if link.HandleError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, "Delete author successfully", nil)
}
