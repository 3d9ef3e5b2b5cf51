package services

import (
	"errors"
	"log"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/dto"
	"github.com/portuna85/kraft/internal/models"

	"gorm.io/gorm"
)

type CategorySaveRequest struct {
	Name         string
	Description  string
	DisplayOrder int
}

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns every category in display order, ids breaking ties.
func (s *CategoryService) List() ([]dto.CategoryResponse, error) {
	var categories []models.Category
	if err := s.db.Order("display_order ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return dto.CategoriesFrom(categories), nil
}

func (s *CategoryService) Get(id uint) (dto.CategoryResponse, error) {
	category, err := s.findCategory(id)
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	return dto.CategoryFrom(category), nil
}

func (s *CategoryService) GetByName(name string) (dto.CategoryResponse, error) {
	var category models.Category
	if err := s.db.Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, apperr.NotFoundName("category", name)
		}
		return dto.CategoryResponse{}, apperr.Internal(err)
	}
	return dto.CategoryFrom(category), nil
}

// Create adds a category. Admin only. The existence pre-check is a
// first-line defense; the unique constraint is the authoritative guard and
// its violation also surfaces as Conflict.
func (s *CategoryService) Create(req CategorySaveRequest, principal Principal) (uint, error) {
	if !principal.IsAdmin() {
		return 0, apperr.Unauthorized("only admins may manage categories")
	}

	exists, err := s.nameExists(req.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperr.Conflict("category name already exists: " + req.Name)
	}

	category := models.Category{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("category name already exists: " + req.Name)
		}
		return 0, apperr.Internal(err)
	}

	log.Printf("category created: categoryId=%d name=%s", category.ID, category.Name)
	return category.ID, nil
}

// Update renames or reorders a category. Admin only.
func (s *CategoryService) Update(id uint, req CategorySaveRequest, principal Principal) (uint, error) {
	if !principal.IsAdmin() {
		return 0, apperr.Unauthorized("only admins may manage categories")
	}

	category, err := s.findCategory(id)
	if err != nil {
		return 0, err
	}

	if category.Name != req.Name {
		exists, err := s.nameExists(req.Name)
		if err != nil {
			return 0, err
		}
		if exists {
			return 0, apperr.Conflict("category name already exists: " + req.Name)
		}
	}

	updates := map[string]interface{}{
		"name":          req.Name,
		"description":   req.Description,
		"display_order": req.DisplayOrder,
	}
	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("category name already exists: " + req.Name)
		}
		return 0, apperr.Internal(err)
	}

	log.Printf("category updated: categoryId=%d", id)
	return id, nil
}

// Delete removes a category and clears the reference on its posts in the
// same transaction. Posts themselves are never deleted. Admin only.
func (s *CategoryService) Delete(id uint, principal Principal) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("only admins may manage categories")
	}

	category, err := s.findCategory(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	log.Printf("category deleted: categoryId=%d", id)
	return nil
}

func (s *CategoryService) nameExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}

func (s *CategoryService) findCategory(id uint) (models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, apperr.NotFound("category", id)
		}
		return category, apperr.Internal(err)
	}
	return category, nil
}
