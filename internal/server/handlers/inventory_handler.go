package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/repository/memory"
)

// errorBody mirrors the backend's error payload.
type errorBody struct {
	Mensagem string `json:"mensagem"`
	Codigo   int    `json:"codigo"`
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Mensagem: message, Codigo: status})
}

// InventoryHandler serves the record endpoints of the stub API.
type InventoryHandler struct {
	repo   *memory.ProductRepository
	logger *zap.Logger
}

// NewInventoryHandler constructs the record handler.
func NewInventoryHandler(repo *memory.ProductRepository, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{repo: repo, logger: logger}
}

// List returns every record.
func (h *InventoryHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.repo.List())
}

// Create stores a new record; duplicate names are rejected with 409.
func (h *InventoryHandler) Create(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	record, err := h.repo.Create(fields)
	if errors.Is(err, memory.ErrDuplicateName) {
		abortWithMessage(c, http.StatusConflict, "Produto já cadastrado")
		return
	}
	if err != nil {
		h.logger.Error("create record failed", zap.Error(err))
		abortWithMessage(c, http.StatusInternalServerError, "Erro interno")
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Update overwrites an existing record.
func (h *InventoryHandler) Update(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	record, err := h.repo.Update(c.Param("id"), fields)
	if errors.Is(err, memory.ErrNotFound) {
		abortWithMessage(c, http.StatusNotFound, "Produto não encontrado")
		return
	}
	if err != nil {
		h.logger.Error("update record failed", zap.Error(err))
		abortWithMessage(c, http.StatusInternalServerError, "Erro interno")
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete removes a record.
func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) bindFields(c *gin.Context) (models.RecordFields, bool) {
	var fields models.RecordFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.logger.Warn("invalid record payload", zap.Error(err))
		abortWithMessage(c, http.StatusBadRequest, "Corpo da requisição inválido")
		return fields, false
	}

	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Name == "" {
		abortWithMessage(c, http.StatusBadRequest, "Nome é obrigatório")
		return fields, false
	}
	if fields.UnitPrice < 0 || fields.Quantity < 0 {
		abortWithMessage(c, http.StatusBadRequest, "Preço e quantidade não podem ser negativos")
		return fields, false
	}
	return fields, true
}
