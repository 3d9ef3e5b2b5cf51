// Package dto assembles already-loaded entity graphs into response shapes.
// Converters never touch the database; callers supply fetch-joined
// entities and derived counts.
package dto

import (
	"time"

	"github.com/portuna85/kraft/internal/models"
)

type CommentResponse struct {
	ID         uint              `json:"id"`
	Content    string            `json:"content"`
	AuthorName string            `json:"author_name"`
	AuthorID   uint              `json:"author_id"`
	ParentID   *uint             `json:"parent_id"`
	ReplyCount int               `json:"reply_count"` // Live count, never a cached column
	Replies    []CommentResponse `json:"replies,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CommentFrom builds a response without nested replies. replyCount must be
// the live child count for the comment.
func CommentFrom(c models.Comment, replyCount int) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Content:    c.Content,
		AuthorName: c.Author.Name,
		AuthorID:   c.AuthorID,
		ParentID:   c.ParentID,
		ReplyCount: replyCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CommentWithReplies nests the given replies one level deep. Replies
// themselves never carry further nesting, but their reply counts stay
// live via the supplied parent-id -> count map.
func CommentWithReplies(c models.Comment, replies []models.Comment, replyCounts map[uint]int) CommentResponse {
	resp := CommentFrom(c, len(replies))
	resp.Replies = make([]CommentResponse, len(replies))
	for i, r := range replies {
		resp.Replies[i] = CommentFrom(r, replyCounts[r.ID])
	}
	return resp
}

// CommentsFrom converts a flat comment slice, filling each reply count
// from the supplied parent-id -> count map.
func CommentsFrom(comments []models.Comment, replyCounts map[uint]int) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = CommentFrom(c, replyCounts[c.ID])
	}
	return out
}
