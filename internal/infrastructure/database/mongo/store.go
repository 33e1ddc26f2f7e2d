package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// Store keeps users in one collection, with each user's orders and saved
// skus embedded in the user document. It implements the user, order and
// wishlist repositories.
type Store struct {
	users *mongo.Collection
}

// NewStore creates a store on db
func NewStore(db *mongo.Database) *Store {
	return &Store{users: db.Collection(usersCollection)}
}

// CreateIndexes ensures e-mail uniqueness and fast order-number lookup
func (s *Store) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "orders.orderNumber", Value: 1}},
		},
	}

	if _, err := s.users.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new user
func (s *Store) Create(ctx context.Context, u *user.User) error {
	_, err := s.users.InsertOne(ctx, newUserDocument(u))
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("user with this email already exists")
	}
	return apperror.Persistence("create user", err)
}

// FindByID loads a user by id
func (s *Store) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id)
}

// FindByEmail loads a user by normalized e-mail
func (s *Store) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, email)
}

// Update writes the user's profile fields, leaving orders and saved skus untouched
func (s *Store) Update(ctx context.Context, u *user.User) error {
	set := bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"password":  u.Password,
		"updatedAt": u.UpdatedAt,
	}
	if u.LastLoginAt != nil {
		set["lastLoginAt"] = *u.LastLoginAt
	}

	result, err := s.users.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("user with this email already exists")
	}
	if err != nil {
		return apperror.Persistence("update user", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", u.ID)
	}
	return nil
}

// AppendOrder pushes o onto the user's order list
func (s *Store) AppendOrder(ctx context.Context, userID string, o *order.Order) error {
	doc, err := newOrderDocument(o)
	if err != nil {
		return apperror.Persistence("append order", err)
	}

	update := bson.M{
		"$push": bson.M{"orders": doc},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return apperror.Persistence("append order", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// ListOrders returns the user's orders in stored order
func (s *Store) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	var doc struct {
		Orders []orderDocument `bson:"orders"`
	}
	opts := options.FindOne().SetProjection(bson.M{"orders": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Persistence("list orders", err)
	}

	orders := make([]order.Order, 0, len(doc.Orders))
	for _, d := range doc.Orders {
		o, err := d.toOrder()
		if err != nil {
			return nil, apperror.Persistence("list orders", err)
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// FindOrderByNumber returns one of the user's orders
func (s *Store) FindOrderByNumber(ctx context.Context, userID, number string) (*order.Order, error) {
	var doc struct {
		Orders []orderDocument `bson:"orders"`
	}
	filter := bson.M{"_id": userID, "orders.orderNumber": number}
	opts := options.FindOne().SetProjection(bson.M{"orders.$": 1})
	if err := s.users.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("order", number)
		}
		return nil, apperror.Persistence("find order", err)
	}
	if len(doc.Orders) == 0 {
		return nil, apperror.NotFound("order", number)
	}

	o, err := doc.Orders[0].toOrder()
	if err != nil {
		return nil, apperror.Persistence("find order", err)
	}
	return o, nil
}

// AddSaved adds sku to the user's saved set
func (s *Store) AddSaved(ctx context.Context, userID, sku string) error {
	update := bson.M{
		"$addToSet": bson.M{"savedForLater": sku},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return s.updateSaved(ctx, userID, update, "save item")
}

// ListSaved returns the user's saved skus in the order they were saved
func (s *Store) ListSaved(ctx context.Context, userID string) ([]string, error) {
	var doc struct {
		SavedForLater []string `bson:"savedForLater"`
	}
	opts := options.FindOne().SetProjection(bson.M{"savedForLater": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Persistence("list saved items", err)
	}
	if doc.SavedForLater == nil {
		return []string{}, nil
	}
	return doc.SavedForLater, nil
}

// RemoveSaved removes sku from the user's saved set
func (s *Store) RemoveSaved(ctx context.Context, userID, sku string) error {
	update := bson.M{
		"$pull": bson.M{"savedForLater": sku},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return s.updateSaved(ctx, userID, update, "remove saved item")
}

func (s *Store) updateSaved(ctx context.Context, userID string, update bson.M, op string) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return apperror.Persistence(op, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M, key string) (*user.User, error) {
	var doc userDocument
	opts := options.FindOne().SetProjection(bson.M{"orders": 0, "savedForLater": 0})
	if err := s.users.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, apperror.Persistence("find user", err)
	}
	return doc.toUser(), nil
}

var (
	_ user.Repository     = (*Store)(nil)
	_ order.Repository    = (*Store)(nil)
	_ wishlist.Repository = (*Store)(nil)
)
