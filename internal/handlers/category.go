package handlers

import (
	"net/http"

	"github.com/portuna85/kraft/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategorySaveInput struct {
	Name         string `json:"name" binding:"required,max=100"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{categories: services.NewCategoryService(db)}
}

// List handles GET /api/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get handles GET /api/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Create handles POST /api/categories (admin only)
func (h *CategoryHandler) Create(c *gin.Context) {
	var input CategorySaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.categories.Create(services.CategorySaveRequest{
		Name:         input.Name,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
	}, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update handles PUT /api/categories/:id (admin only)
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input CategorySaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	updatedID, err := h.categories.Update(id, services.CategorySaveRequest{
		Name:         input.Name,
		Description:  input.Description,
		DisplayOrder: input.DisplayOrder,
	}, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": updatedID})
}

// Delete handles DELETE /api/categories/:id (admin only)
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(id, currentPrincipal(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
