package models

import (
	"time"
)

type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Post     Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	// ParentID is the source of truth for the reply tree. Children are
	// always derived by query, never mirrored in memory.
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsReply reports whether the comment is attached to a parent comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// IsAuthor reports whether userID wrote the comment. Authorship is always
// compared by id, never by display name.
func (c *Comment) IsAuthor(userID uint) bool {
	return c.AuthorID == userID
}
