package handlers

import (
	"net/http"

	"github.com/portuna85/kraft/internal/dto"
	"github.com/portuna85/kraft/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name     string `json:"name" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type EmailUpdateInput struct {
	Email string `json:"email" binding:"required,email,max=120"`
}

type PasswordChangeInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{users: services.NewUserService(db)}
}

// Signup handles POST /api/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	id, err := h.users.Register(input.Name, input.Email, input.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SignupResponse{ID: id, Name: input.Name})
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	principal, err := h.users.Login(input.Name, input.Password)
	if err != nil {
		// Bad credentials are 401 here, not the resource-ownership 403.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", principal.ID)
	session.Save()

	c.JSON(http.StatusOK, dto.LoginResponse{ID: principal.ID, Name: principal.Name, Role: principal.Role})
}

// Logout handles POST /api/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	principal := currentPrincipal(c)
	profile, err := h.users.Profile(principal.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateEmail handles PATCH /api/users/me/email
func (h *UserHandler) UpdateEmail(c *gin.Context) {
	var input EmailUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	profile, err := h.users.UpdateEmail(currentPrincipal(c).ID, input.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ChangePassword handles PATCH /api/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input PasswordChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.users.ChangePassword(currentPrincipal(c).ID, input.CurrentPassword, input.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/users/me
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(currentPrincipal(c).ID); err != nil {
		abortWithError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}
