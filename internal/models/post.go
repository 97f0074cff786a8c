package models

import "time"

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Post is a document in the posts collection.
type Post struct {
	ID          string     `json:"id"          bson:"id"`
	Title       string     `json:"title"       bson:"title"`
	Content     Content    `json:"content"     bson:"content"`
	AuthorID    string     `json:"authorId"    bson:"authorId"`
	Status      PostStatus `json:"status"      bson:"status"`
	CreatedAt   time.Time  `json:"createdAt"   bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"   bson:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt" bson:"publishedAt"`
}

// PostSummary is a row in the private drafts list.
type PostSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      PostStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// PublicPost is a published post as shown to readers.
type PublicPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     Content    `json:"content,omitempty"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// PostCreate is the JSON body for POST /api/posts/.
type PostCreate struct {
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

// PostUpdate is the JSON body for PATCH /api/posts/{id}. Nil fields are left alone.
type PostUpdate struct {
	Title   *string `json:"title"`
	Content Content `json:"content"`
}
