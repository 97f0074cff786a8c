package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/syncdraft/internal/models"
)

// ownedBy scopes a post query to its author. A post owned by someone else
// does not match, so callers see ErrNotFound rather than a permission error.
func ownedBy(id, authorID string) bson.M {
	return bson.M{"id": id, "authorId": authorID}
}

func published(id string) bson.M {
	return bson.M{"id": id, "status": models.StatusPublished}
}

// CreatePost inserts p as a draft.
func (s *MongoStore) CreatePost(ctx context.Context, p *models.Post) error {
	now := time.Now().UTC()
	p.Status = models.StatusDraft
	p.CreatedAt, p.UpdatedAt = now, now
	p.PublishedAt = nil
	return insertOne(ctx, s.posts, p)
}

// ListPostsByAuthor returns the author's posts, most recently updated first.
func (s *MongoStore) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"content": 0})
	return findAll[models.Post](ctx, s.posts, bson.M{"authorId": authorID}, opts)
}

func (s *MongoStore) GetPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error) {
	var p models.Post
	if err := findOne(ctx, s.posts, ownedBy(id, authorID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePostForAuthor applies the non-nil fields of upd and bumps updatedAt.
func (s *MongoStore) UpdatePostForAuthor(ctx context.Context, id, authorID string, upd models.PostUpdate) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Content != nil {
		set["content"] = upd.Content
	}
	var p models.Post
	if err := findOneAndUpdate(ctx, s.posts, ownedBy(id, authorID), bson.M{"$set": set}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PublishPostForAuthor marks the post published. The first publish time is
// kept, so publishing twice is a no-op apart from updatedAt.
func (s *MongoStore) PublishPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error) {
	now := time.Now().UTC()
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "status", Value: models.StatusPublished},
		{Key: "updatedAt", Value: now},
		{Key: "publishedAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$publishedAt", now}}}},
	}}}}
	var p models.Post
	if err := findOneAndUpdate(ctx, s.posts, ownedBy(id, authorID), update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnpublishPostForAuthor returns the post to draft.
func (s *MongoStore) UnpublishPostForAuthor(ctx context.Context, id, authorID string) (*models.Post, error) {
	update := bson.M{"$set": bson.M{"status": models.StatusDraft, "updatedAt": time.Now().UTC()}}
	var p models.Post
	if err := findOneAndUpdate(ctx, s.posts, ownedBy(id, authorID), update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePostForAuthor removes the post and then its comments.
func (s *MongoStore) DeletePostForAuthor(ctx context.Context, id, authorID string) error {
	res, err := s.posts.DeleteOne(ctx, ownedBy(id, authorID))
	if err != nil {
		return fmt.Errorf("mongo delete posts: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return fmt.Errorf("mongo delete comments of %s: %w", id, err)
	}
	return nil
}

// GetPublishedPost returns the post only while it is published.
func (s *MongoStore) GetPublishedPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := findOne(ctx, s.posts, published(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublished returns every published post, newest publication first.
func (s *MongoStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	return findAll[models.Post](ctx, s.posts, bson.M{"status": models.StatusPublished}, opts)
}
