package repos

import (
	"context"
	"errors"
	"time"

	"mercado/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{users: db.Collection(colUsers), sessions: db.Collection(colSessions)}
}

func (r *UserRepo) Insert(ctx context.Context, u domain.User) (domain.User, error) {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrDuplicate
		}
		return domain.User{}, err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var users []domain.User
	err = cur.All(ctx, &users)
	return users, err
}

// Update applies a $set of the given fields and returns the updated user.
func (r *UserRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error) {
	set["updated_at"] = time.Now().UTC()
	var u domain.User
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	// Drop the user's sessions so stale tokens stop resolving.
	_, _ = r.sessions.DeleteMany(ctx, bson.M{"user_id": id})
	return nil
}

// ---------- Sessions ----------

func (r *UserRepo) BindSession(ctx context.Context, token string, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"_id": token},
		bson.M{
			"$set":         bson.M{"user_id": userID, "last_seen": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	var s domain.Session
	err := r.sessions.FindOne(ctx, bson.M{"_id": token}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.ByID(ctx, s.UserID)
}

func (r *UserRepo) UnbindSession(ctx context.Context, token string) error {
	_, err := r.sessions.DeleteOne(ctx, bson.M{"_id": token})
	return err
}
