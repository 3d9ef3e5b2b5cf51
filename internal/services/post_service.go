package services

import (
	"errors"
	"log"
	"strings"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/dto"
	"github.com/portuna85/kraft/internal/models"
	"github.com/portuna85/kraft/internal/pagination"

	"gorm.io/gorm"
)

type PostCreateRequest struct {
	Title      string
	Content    string
	CategoryID *uint
}

type PostUpdateRequest struct {
	Title   string
	Content string
}

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

func (s *PostService) Create(req PostCreateRequest, principal Principal) (uint, error) {
	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperr.NotFound("category", *req.CategoryID)
			}
			return 0, apperr.Internal(err)
		}
	}

	post := models.Post{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   principal.ID,
		CategoryID: req.CategoryID,
	}
	if err := s.db.Create(&post).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	log.Printf("post created: postId=%d authorId=%d", post.ID, principal.ID)
	return post.ID, nil
}

// Update replaces title and content. Author only.
func (s *PostService) Update(id uint, req PostUpdateRequest, principal Principal) (uint, error) {
	post, err := s.findPost(id)
	if err != nil {
		return 0, err
	}
	if post.AuthorID != principal.ID {
		return 0, apperr.Unauthorized("only the post author may update it")
	}

	updates := map[string]interface{}{
		"title":   req.Title,
		"content": req.Content,
	}
	if err := s.db.Model(&post).Updates(updates).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	log.Printf("post updated: postId=%d", id)
	return id, nil
}

// UpdateCategory reassigns or clears a post's category. Author only.
func (s *PostService) UpdateCategory(id uint, categoryID *uint, principal Principal) error {
	post, err := s.findPost(id)
	if err != nil {
		return err
	}
	if post.AuthorID != principal.ID {
		return apperr.Unauthorized("only the post author may change its category")
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("category", *categoryID)
			}
			return apperr.Internal(err)
		}
	}

	if err := s.db.Model(&post).Update("category_id", categoryID).Error; err != nil {
		return apperr.Internal(err)
	}

	log.Printf("post category updated: postId=%d", id)
	return nil
}

// Delete removes the post and every comment attached to it in one
// transaction. Author only.
func (s *PostService) Delete(id uint, principal Principal) error {
	post, err := s.findPost(id)
	if err != nil {
		return err
	}
	if post.AuthorID != principal.ID {
		return apperr.Unauthorized("only the post author may delete it")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	log.Printf("post deleted: postId=%d", id)
	return nil
}

// Get returns the detail projection without touching the view counter.
func (s *PostService) Get(id uint) (dto.PostResponse, error) {
	post, err := s.findPostWithAuthor(id)
	if err != nil {
		return dto.PostResponse{}, err
	}
	return dto.PostFrom(post), nil
}

// GetAndIncrementView bumps the view counter by exactly one and returns
// the updated projection. The increment runs as a SQL expression inside
// the same transaction as the lookup, so concurrent reads never lose
// updates.
func (s *PostService) GetAndIncrementView(id uint) (dto.PostResponse, error) {
	var post models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Author").First(&post, id).Error; err != nil {
			return err
		}
		return tx.Model(&post).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, apperr.NotFound("post", id)
		}
		return dto.PostResponse{}, apperr.Internal(err)
	}

	// Reflect the increment in this unit of work's projection.
	post.ViewCount++
	return dto.PostFrom(post), nil
}

// ListAll returns every post, newest first, authors fetch-joined.
func (s *PostService) ListAll() ([]dto.PostListItem, error) {
	var posts []models.Post
	if err := s.db.Preload("Author").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return dto.PostListItemsFrom(posts), nil
}

// ListPage pages through posts. sortBy is one of id, created_at,
// updated_at; anything else falls back to id. Default order is newest
// first.
func (s *PostService) ListPage(page, size int, sortBy, direction string) (pagination.Page[dto.PostListItem], error) {
	var empty pagination.Page[dto.PostListItem]

	switch sortBy {
	case "id", "created_at", "updated_at":
	default:
		sortBy = "id"
	}
	dir := "DESC"
	if strings.EqualFold(direction, "ASC") {
		dir = "ASC"
	}

	var total int64
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	var posts []models.Post
	if err := s.db.Preload("Author").
		Order(sortBy + " " + dir).
		Limit(size).
		Offset(page * size).
		Find(&posts).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	log.Printf("post page: page=%d size=%d total=%d", page, size, total)
	return pagination.New(dto.PostListItemsFrom(posts), page, size, total), nil
}

// Search matches keyword against title or content, newest first.
func (s *PostService) Search(keyword string, page, size int) (pagination.Page[dto.PostListItem], error) {
	var empty pagination.Page[dto.PostListItem]

	pattern := "%" + keyword + "%"
	base := s.db.Model(&models.Post{}).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	var posts []models.Post
	if err := s.db.Preload("Author").
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("id DESC").
		Limit(size).
		Offset(page * size).
		Find(&posts).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	log.Printf("post search: keyword=%q page=%d total=%d", keyword, page, total)
	return pagination.New(dto.PostListItemsFrom(posts), page, size, total), nil
}

// Popular ranks posts by view count, newest id breaking ties.
func (s *PostService) Popular(page, size int) (pagination.Page[dto.PostListItem], error) {
	var empty pagination.Page[dto.PostListItem]

	var total int64
	if err := s.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	var posts []models.Post
	if err := s.db.Preload("Author").
		Order("view_count DESC, id DESC").
		Limit(size).
		Offset(page * size).
		Find(&posts).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	return pagination.New(dto.PostListItemsFrom(posts), page, size, total), nil
}

// ListByCategory pages through one category's posts, newest first.
func (s *PostService) ListByCategory(categoryID uint, page, size int) (pagination.Page[dto.PostListItem], error) {
	var empty pagination.Page[dto.PostListItem]

	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, apperr.NotFound("category", categoryID)
		}
		return empty, apperr.Internal(err)
	}

	var total int64
	if err := s.db.Model(&models.Post{}).
		Where("category_id = ?", categoryID).
		Count(&total).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	var posts []models.Post
	if err := s.db.Preload("Author").
		Where("category_id = ?", categoryID).
		Order("id DESC").
		Limit(size).
		Offset(page * size).
		Find(&posts).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	return pagination.New(dto.PostListItemsFrom(posts), page, size, total), nil
}

// ListByAuthor returns one user's posts, newest first.
func (s *PostService) ListByAuthor(authorID uint) ([]dto.PostListItem, error) {
	var posts []models.Post
	if err := s.db.Preload("Author").
		Where("author_id = ?", authorID).
		Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return dto.PostListItemsFrom(posts), nil
}

func (s *PostService) findPost(id uint) (models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, apperr.NotFound("post", id)
		}
		return post, apperr.Internal(err)
	}
	return post, nil
}

func (s *PostService) findPostWithAuthor(id uint) (models.Post, error) {
	var post models.Post
	if err := s.db.Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, apperr.NotFound("post", id)
		}
		return post, apperr.Internal(err)
	}
	return post, nil
}
