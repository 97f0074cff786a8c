package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/syncdraft/internal/models"
)

// CreateUser inserts u; an email already registered yields ErrDuplicate.
func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return insertOne(ctx, s.users, u)
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"email": email}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := findOne(ctx, s.users, bson.M{"id": id}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sets the non-nil fields and returns the updated user.
func (s *MongoStore) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.FullName != nil {
		set["name"] = *upd.FullName
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	var u models.User
	if err := findOneAndUpdate(ctx, s.users, bson.M{"id": id}, bson.M{"$set": set}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetAvatar records the object key of the user's avatar.
func (s *MongoStore) SetAvatar(ctx context.Context, id, key string) (*models.User, error) {
	update := bson.M{"$set": bson.M{"avatar": key, "updatedAt": time.Now().UTC()}}
	var u models.User
	if err := findOneAndUpdate(ctx, s.users, bson.M{"id": id}, update, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserNames maps each known id to its display name. Unknown ids are absent.
func (s *MongoStore) UserNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	opts := options.Find().SetProjection(bson.M{"id": 1, "name": 1})
	users, err := findAll[models.User](ctx, s.users, bson.M{"id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
