package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"nature-animaux/internal/domain"
)

const lookupTimeout = 2 * time.Second

// productDoc mirrors the raw catalog document. Fields are pointers where
// historical documents are known to omit them.
type productDoc struct {
	ID          interface{}    `bson:"_id"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	Price       *float64       `bson:"price"`
	ImageURL    string         `bson:"image_url"`
	Variations  []variationDoc `bson:"variations"`
}

type variationDoc struct {
	SKU    string   `bson:"sku"`
	Price  *float64 `bson:"price"`
	Weight *float64 `bson:"weight"`
	Stock  *int     `bson:"stock"`
}

// MongoLookup reads products from a Mongo collection.
type MongoLookup struct {
	products *mongo.Collection
}

// NewMongo builds a MongoLookup over db's "products" collection.
func NewMongo(db *mongo.Database) *MongoLookup {
	return &MongoLookup{products: db.Collection("products")}
}

func (l *MongoLookup) FindByID(ctx context.Context, productID string) (*domain.Product, error) {
	doc, err := l.fetch(ctx, productID)
	if err != nil {
		return nil, err
	}
	product := toProduct(productID, *doc)
	return &product, nil
}

func (l *MongoLookup) FindVariant(ctx context.Context, productID, variantID string) (*domain.Variation, error) {
	doc, err := l.fetch(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, v := range doc.Variations {
		if v.SKU == variantID {
			variation := toVariation(v)
			return &variation, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (l *MongoLookup) fetch(ctx context.Context, productID string) (*productDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var doc productDoc
	err := l.products.FindOne(ctx, idFilter(productID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: catalog lookup: %v", domain.ErrUnavailable, err)
	}
	return &doc, nil
}

// idFilter matches _id whether it is stored as an ObjectID or a plain
// string key.
func idFilter(productID string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(productID); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": productID}
}

func toProduct(productID string, doc productDoc) domain.Product {
	variations := make([]domain.Variation, 0, len(doc.Variations))
	for _, v := range doc.Variations {
		variations = append(variations, toVariation(v))
	}
	return domain.Product{
		ID:          productID,
		Title:       doc.Title,
		Description: doc.Description,
		Price:       nonNegativePrice(doc.Price),
		ImageURL:    doc.ImageURL,
		Variations:  variations,
	}
}

func toVariation(v variationDoc) domain.Variation {
	stock := 0
	if v.Stock != nil && *v.Stock > 0 {
		stock = *v.Stock
	}
	return domain.Variation{
		SKU:    v.SKU,
		Price:  nonNegativePrice(v.Price),
		Weight: nonNegativeWeight(v.Weight),
		Stock:  stock,
	}
}

func nonNegativePrice(p *float64) decimal.Decimal {
	if p == nil || *p < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p).Round(2)
}

// nonNegativeWeight treats a missing or negative weight as unknown, which
// the pricing engine represents as zero.
func nonNegativeWeight(w *float64) decimal.Decimal {
	if w == nil || *w < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*w).Round(2)
}
