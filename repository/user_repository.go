package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashrajoria/storefront/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// EnsureIndexes makes email unique so concurrent signups for the same
// address cannot both succeed.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_email"),
	})
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, password string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"password": password}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCart returns only the cart of the user.
func (r *UserRepository) GetCart(ctx context.Context, id string) (models.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := r.findOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"cartData": 1}))
	if err != nil {
		return nil, err
	}
	if user.CartData == nil {
		return models.Cart{}, nil
	}
	return user.CartData, nil
}

// IncrementCartItem adds one unit to the slot in a single $inc, creating the
// slot if it does not exist yet.
func (r *UserRepository) IncrementCartItem(ctx context.Context, id string, key models.ItemKey) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{cartField(key): 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementCartItem removes one unit from the slot only while it is above
// zero. The guard lives in the filter so the floor holds under concurrency.
func (r *UserRepository) DecrementCartItem(ctx context.Context, id string, key models.ItemKey) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	field := cartField(key)
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, field: bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{field: -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing decremented: either the slot is already zero or the user is gone.
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.User, error) {
	var user models.User
	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&user)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&user)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func cartField(key models.ItemKey) string {
	return "cartData." + string(key)
}
