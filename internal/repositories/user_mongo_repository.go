package repositories

import (
	"context"
	"fmt"
	"time"

	"arthemis/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository is a MongoDB implementation of UserRepository. List
// mutations use update operators so they apply atomically per document.
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection("users")}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.SavedArtworks = models.Clone(user.SavedArtworks)
	user.Collections = models.Clone(user.Collections)

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", mongoErr(err))
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	user := &models.User{}
	if err := r.col.FindOne(ctx, filter).Decode(user); err != nil {
		return nil, mongoErr(err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	users := make([]models.User, 0, len(ids))
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return orderUsers(ids, users), nil
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	set := bson.M{
		"username":   user.Username,
		"email":      user.Email,
		"password":   user.Password,
		"role":       user.Role,
		"avatar":     user.Avatar,
		"bio":        user.Bio,
		"updated_at": time.Now(),
	}
	update := bson.M{"$set": set}
	if user.ResetPasswordToken != "" {
		set["reset_password_token"] = user.ResetPasswordToken
		set["reset_password_expire"] = user.ResetPasswordExpire
	} else {
		update["$unset"] = bson.M{"reset_password_token": "", "reset_password_expire": ""}
	}

	if err := matchedOne(r.col.UpdateByID(ctx, user.ID, update)); err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

func (r *MongoUserRepository) apply(ctx context.Context, userID string, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now()}
	if err := matchedOne(r.col.UpdateByID(ctx, userID, update)); err != nil {
		return fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return nil
}

func (r *MongoUserRepository) PrependSavedArtwork(ctx context.Context, userID, artworkID string) error {
	return r.apply(ctx, userID, bson.M{
		"$push": bson.M{"saved_artworks": bson.M{"$each": []string{artworkID}, "$position": 0}},
	})
}

func (r *MongoUserRepository) RemoveSavedArtwork(ctx context.Context, userID, artworkID string) error {
	return r.apply(ctx, userID, bson.M{"$pull": bson.M{"saved_artworks": artworkID}})
}

func (r *MongoUserRepository) AddCollection(ctx context.Context, userID, collectionID string) error {
	return r.apply(ctx, userID, bson.M{"$addToSet": bson.M{"collections": collectionID}})
}

func (r *MongoUserRepository) RemoveCollection(ctx context.Context, userID, collectionID string) error {
	return r.apply(ctx, userID, bson.M{"$pull": bson.M{"collections": collectionID}})
}
