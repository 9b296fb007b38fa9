package repository

import (
	"context"
	"errors"
	"time"

	"storefront-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository defines the interface for catalog data access.
// DecrementStock and IncrementStock are the only stock writers used by
// order placement; both apply a single conditional update per call.
type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error
}

// MongoProductRepository implements ProductRepository on a Mongo collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a Mongo-backed product repository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filters *models.ProductFilters, page, limit int) ([]models.Product, int64, error) {
	filter := bson.M{}
	if filters != nil {
		if filters.Category != "" {
			filter["category"] = filters.Category
		}
		if filters.Featured != nil {
			filter["featured"] = *filters.Featured
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock applies a single decrement-if-sufficient update. With a
// size label the filter matches the size entry with enough stock and
// decrements both it and the general count; without one it guards the
// general count only. A zero-match result is disambiguated with a read:
// missing product, missing size, or insufficient stock.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error {
	var filter, update bson.M
	if size != "" {
		filter = bson.M{
			"_id":   id,
			"sizes": bson.M{"$elemMatch": bson.M{"size": size, "stock": bson.M{"$gte": quantity}}},
		}
		update = bson.M{
			"$inc": bson.M{"sizes.$.stock": -quantity, "stock": -quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		filter = bson.M{"_id": id, "stock": bson.M{"$gte": quantity}}
		update = bson.M{
			"$inc": bson.M{"stock": -quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	product, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if size != "" {
		if _, ok := product.SizeStockFor(size); !ok {
			return ErrSizeNotFound
		}
	}
	return ErrInsufficientStock
}

// IncrementStock adds quantity back to a size entry (and the general
// count) or to the general count alone. Used to compensate reserved
// stock when a later line of the same order fails.
func (r *MongoProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, size string, quantity int) error {
	var filter, update bson.M
	if size != "" {
		filter = bson.M{"_id": id, "sizes.size": size}
		update = bson.M{
			"$inc": bson.M{"sizes.$.stock": quantity, "stock": quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		filter = bson.M{"_id": id}
		update = bson.M{
			"$inc": bson.M{"stock": quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
