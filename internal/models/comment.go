package models

import "time"

// Comment is a document in the comments collection.
type Comment struct {
	ID        string    `json:"id"        bson:"id"`
	PostID    string    `json:"postId"    bson:"postId"`
	AuthorID  string    `json:"authorId"  bson:"authorId"`
	Body      string    `json:"body"      bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// CommentView is a comment with its author's display name.
type CommentView struct {
	Comment
	AuthorName string `json:"authorName"`
}

// CommentCreate is the JSON body for POST /api/posts/{id}/comments.
type CommentCreate struct {
	Body string `json:"body"`
}
