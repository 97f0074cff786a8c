package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/syncdraft/internal/models"
)

func (s *MongoStore) CreateComment(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = time.Now().UTC()
	return insertOne(ctx, s.comments, c)
}

// ListCommentsByPost returns the post's comments, newest first.
func (s *MongoStore) ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.Comment](ctx, s.comments, bson.M{"postId": postID}, opts)
}

// GetComment looks a comment up by id within a post, regardless of author.
func (s *MongoStore) GetComment(ctx context.Context, id, postID string) (*models.Comment, error) {
	var c models.Comment
	if err := findOne(ctx, s.comments, bson.M{"id": id, "postId": postID}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) DeleteComment(ctx context.Context, id, postID string) error {
	res, err := s.comments.DeleteOne(ctx, bson.M{"id": id, "postId": postID})
	if err != nil {
		return fmt.Errorf("mongo delete comments: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
