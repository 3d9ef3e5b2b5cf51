package dto

import (
	"time"

	"github.com/portuna85/kraft/internal/models"
	"github.com/portuna85/kraft/internal/utils"
)

// PostListItem is the listing projection. It deliberately omits content so
// list views never ship full post bodies.
type PostListItem struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	ViewCount  int64     `json:"view_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostResponse is the detail projection.
type PostResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	AuthorName  string `json:"author_name"`
	CategoryID  *uint  `json:"category_id"`
	ViewCount   int64  `json:"view_count"`
}

func PostListItemFrom(p models.Post) PostListItem {
	return PostListItem{
		ID:         p.ID,
		Title:      p.Title,
		AuthorName: p.Author.Name,
		ViewCount:  p.ViewCount,
		UpdatedAt:  p.UpdatedAt,
	}
}

func PostListItemsFrom(posts []models.Post) []PostListItem {
	out := make([]PostListItem, len(posts))
	for i, p := range posts {
		out[i] = PostListItemFrom(p)
	}
	return out
}

func PostFrom(p models.Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: utils.RenderMarkdown(p.Content),
		AuthorName:  p.Author.Name,
		CategoryID:  p.CategoryID,
		ViewCount:   p.ViewCount,
	}
}
