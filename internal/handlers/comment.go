package handlers

import (
	"net/http"

	"github.com/portuna85/kraft/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentSaveInput struct {
	Content string `json:"content" binding:"required,min=1"`
}

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{comments: services.NewCommentService(db)}
}

// Create handles POST /api/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input CommentSaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.comments.Create(postID, input.Content, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CreateReply handles POST /api/posts/:id/comments/:parentId/replies
func (h *CommentHandler) CreateReply(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	parentID, ok := uintParam(c, "parentId")
	if !ok {
		return
	}
	var input CommentSaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.comments.CreateReply(postID, parentID, input.Content, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update handles PUT /api/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := uintParam(c, "commentId")
	if !ok {
		return
	}
	var input CommentSaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.comments.Update(commentID, input.Content, currentPrincipal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Delete handles DELETE /api/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := uintParam(c, "commentId")
	if !ok {
		return
	}
	if err := h.comments.Delete(commentID, currentPrincipal(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /api/posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.ListByPost(postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// ListParents handles GET /api/posts/:id/comments/parents
func (h *CommentHandler) ListParents(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.ListParents(postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// ListParentsPage handles GET /api/posts/:id/comments/page
func (h *CommentHandler) ListParentsPage(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	page, size := pageParams(c)
	result, err := h.comments.ListParentsPage(postID, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListThread handles GET /api/posts/:id/comments/thread
func (h *CommentHandler) ListThread(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	thread, err := h.comments.ListThread(postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

// ListReplies handles GET /api/comments/:commentId/replies
func (h *CommentHandler) ListReplies(c *gin.Context) {
	parentID, ok := uintParam(c, "commentId")
	if !ok {
		return
	}
	replies, err := h.comments.ListReplies(parentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

// Count handles GET /api/posts/:id/comments/count
func (h *CommentHandler) Count(c *gin.Context) {
	postID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	count, err := h.comments.CountByPost(postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
