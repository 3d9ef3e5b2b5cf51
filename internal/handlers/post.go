package handlers

import (
	"net/http"

	"github.com/portuna85/kraft/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostSaveInput struct {
	Title      string `json:"title" binding:"required,max=500"`
	Content    string `json:"content" binding:"required"`
	CategoryID *uint  `json:"category_id"`
}

type PostUpdateInput struct {
	Title   string `json:"title" binding:"required,max=500"`
	Content string `json:"content" binding:"required"`
}

type PostCategoryInput struct {
	CategoryID *uint `json:"category_id"` // null clears the category
}

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{posts: services.NewPostService(db)}
}

// Create handles POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var input PostSaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.posts.Create(services.PostCreateRequest{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
	}, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update handles PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input PostUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	updatedID, err := h.posts.Update(id, services.PostUpdateRequest{
		Title:   input.Title,
		Content: input.Content,
	}, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": updatedID})
}

// UpdateCategory handles PATCH /api/posts/:id/category
func (h *PostHandler) UpdateCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input PostCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.posts.UpdateCategory(id, input.CategoryID, currentPrincipal(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(id, currentPrincipal(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.Get(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetWithView handles GET /api/posts/:id/view — the read that counts.
func (h *PostHandler) GetWithView(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	post, err := h.posts.GetAndIncrementView(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListAll handles GET /api/posts/list
func (h *PostHandler) ListAll(c *gin.Context) {
	posts, err := h.posts.ListAll()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListPage handles GET /api/posts
func (h *PostHandler) ListPage(c *gin.Context) {
	page, size := pageParams(c)
	sortBy := c.DefaultQuery("sort", "id")
	direction := c.DefaultQuery("direction", "DESC")

	result, err := h.posts.ListPage(page, size, sortBy, direction)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Search handles GET /api/posts/search
func (h *PostHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	page, size := pageParams(c)

	result, err := h.posts.Search(keyword, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Popular handles GET /api/posts/popular
func (h *PostHandler) Popular(c *gin.Context) {
	page, size := pageParams(c)
	result, err := h.posts.Popular(page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByCategory handles GET /api/posts/category/:categoryId
func (h *PostHandler) ListByCategory(c *gin.Context) {
	categoryID, ok := uintParam(c, "categoryId")
	if !ok {
		return
	}
	page, size := pageParams(c)

	result, err := h.posts.ListByCategory(categoryID, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByAuthor handles GET /api/posts/author/:authorId
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	authorID, ok := uintParam(c, "authorId")
	if !ok {
		return
	}
	posts, err := h.posts.ListByAuthor(authorID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
