package services

import (
	"errors"
	"log"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/dto"
	"github.com/portuna85/kraft/internal/models"
	"github.com/portuna85/kraft/internal/pagination"

	"gorm.io/gorm"
)

// CommentService owns the comment tree: creation, reply attachment,
// author-only mutation and cascade deletion.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// Create attaches a new top-level comment to a post.
func (s *CommentService) Create(postID uint, content string, principal Principal) (uint, error) {
	if _, err := s.findPost(postID); err != nil {
		return 0, err
	}

	comment := models.Comment{
		Content:  content,
		PostID:   postID,
		AuthorID: principal.ID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	log.Printf("comment created: commentId=%d postId=%d authorId=%d", comment.ID, postID, principal.ID)
	return comment.ID, nil
}

// CreateReply attaches a reply to an existing comment. The parent must
// belong to the same post; a mismatch never persists.
func (s *CommentService) CreateReply(postID, parentID uint, content string, principal Principal) (uint, error) {
	if _, err := s.findPost(postID); err != nil {
		return 0, err
	}
	parent, err := s.findComment(parentID)
	if err != nil {
		return 0, err
	}
	if parent.PostID != postID {
		return 0, apperr.InvalidArgument("reply does not belong to this post")
	}

	reply := models.Comment{
		Content:  content,
		PostID:   postID,
		AuthorID: principal.ID,
		ParentID: &parent.ID,
	}
	if err := s.db.Create(&reply).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	log.Printf("reply created: replyId=%d parentId=%d postId=%d", reply.ID, parentID, postID)
	return reply.ID, nil
}

// Update replaces the content of the principal's own comment. Parent and
// post attachments are immutable after creation.
func (s *CommentService) Update(commentID uint, content string, principal Principal) (uint, error) {
	comment, err := s.findComment(commentID)
	if err != nil {
		return 0, err
	}
	if !comment.IsAuthor(principal.ID) {
		return 0, apperr.Unauthorized("only the comment author may update it")
	}

	if err := s.db.Model(&comment).Update("content", content).Error; err != nil {
		return 0, apperr.Internal(err)
	}

	log.Printf("comment updated: commentId=%d", commentID)
	return commentID, nil
}

// Delete hard-deletes the principal's own comment together with all of its
// replies. The cascade runs inside one transaction so no orphaned reply
// rows survive.
func (s *CommentService) Delete(commentID uint, principal Principal) error {
	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}
	if !comment.IsAuthor(principal.ID) {
		return apperr.Unauthorized("only the comment author may delete it")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return apperr.Internal(err)
	}

	log.Printf("comment deleted: commentId=%d", commentID)
	return nil
}

// IsAuthor reports whether userID wrote the comment. Exposed for external
// policy composition.
func (s *CommentService) IsAuthor(commentID, userID uint) (bool, error) {
	comment, err := s.findComment(commentID)
	if err != nil {
		return false, err
	}
	return comment.IsAuthor(userID), nil
}

// ListByPost returns every comment on a post, oldest first, authors
// fetch-joined, reply counts filled from one grouped count query.
func (s *CommentService) ListByPost(postID uint) ([]dto.CommentResponse, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	counts, err := s.replyCounts(comments)
	if err != nil {
		return nil, err
	}
	return dto.CommentsFrom(comments, counts), nil
}

// ListParents returns only top-level comments (parent IS NULL), oldest
// first.
func (s *CommentService) ListParents(postID uint) ([]dto.CommentResponse, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	counts, err := s.replyCounts(comments)
	if err != nil {
		return nil, err
	}
	return dto.CommentsFrom(comments, counts), nil
}

// ListParentsPage pages through top-level comments, oldest first.
func (s *CommentService) ListParentsPage(postID uint, page, size int) (pagination.Page[dto.CommentResponse], error) {
	var empty pagination.Page[dto.CommentResponse]

	if _, err := s.findPost(postID); err != nil {
		return empty, err
	}

	var total int64
	if err := s.db.Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&total).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("id ASC").
		Limit(size).
		Offset(page * size).
		Find(&comments).Error; err != nil {
		return empty, apperr.Internal(err)
	}

	counts, err := s.replyCounts(comments)
	if err != nil {
		return empty, err
	}

	log.Printf("parent comment page: postId=%d page=%d total=%d", postID, page, total)
	return pagination.New(dto.CommentsFrom(comments, counts), page, size, total), nil
}

// ListThread returns top-level comments with their replies nested one
// level deep, assembled from a single query over the post's comments.
func (s *CommentService) ListThread(postID uint) ([]dto.CommentResponse, error) {
	if _, err := s.findPost(postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	children := make(map[uint][]models.Comment)
	var parents []models.Comment
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		} else {
			parents = append(parents, c)
		}
	}
	counts := make(map[uint]int, len(children))
	for id, kids := range children {
		counts[id] = len(kids)
	}

	out := make([]dto.CommentResponse, len(parents))
	for i, p := range parents {
		out[i] = dto.CommentWithReplies(p, children[p.ID], counts)
	}
	return out, nil
}

// ListReplies returns the replies of one comment, oldest first.
func (s *CommentService) ListReplies(parentID uint) ([]dto.CommentResponse, error) {
	if _, err := s.findComment(parentID); err != nil {
		return nil, err
	}

	var replies []models.Comment
	if err := s.db.Preload("Author").
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&replies).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	// Replies can carry children of their own.
	counts, err := s.replyCounts(replies)
	if err != nil {
		return nil, err
	}
	return dto.CommentsFrom(replies, counts), nil
}

// ListByAuthor returns every comment a user has written, newest first.
func (s *CommentService) ListByAuthor(authorID uint) ([]dto.CommentResponse, error) {
	var comments []models.Comment
	if err := s.db.Preload("Author").
		Where("author_id = ?", authorID).
		Order("id DESC").
		Find(&comments).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	counts, err := s.replyCounts(comments)
	if err != nil {
		return nil, err
	}
	return dto.CommentsFrom(comments, counts), nil
}

// CountByPost returns the number of comments on a post, replies included.
func (s *CommentService) CountByPost(postID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

// replyCounts batch-counts children per comment in one grouped query so
// list assembly never degrades into per-row count lookups.
func (s *CommentService) replyCounts(comments []models.Comment) (map[uint]int, error) {
	counts := make(map[uint]int)
	if len(comments) == 0 {
		return counts, nil
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	type countRow struct {
		ParentID uint
		Count    int
	}
	var rows []countRow
	if err := s.db.Model(&models.Comment{}).
		Select("parent_id, COUNT(*) as count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	for _, r := range rows {
		counts[r.ParentID] = r.Count
	}
	return counts, nil
}

func (s *CommentService) findComment(id uint) (models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return comment, apperr.NotFound("comment", id)
		}
		return comment, apperr.Internal(err)
	}
	return comment, nil
}

func (s *CommentService) findPost(id uint) (models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, apperr.NotFound("post", id)
		}
		return post, apperr.Internal(err)
	}
	return post, nil
}
