// Package seed fills the Mongo catalog with demo products for local
// development.
package seed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type variation struct {
	SKU    string  `bson:"sku"`
	Price  float64 `bson:"price"`
	Weight float64 `bson:"weight"`
	Stock  int     `bson:"stock"`
}

type product struct {
	ID          string      `bson:"_id"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	Price       float64     `bson:"price"`
	ImageURL    string      `bson:"image_url"`
	Variations  []variation `bson:"variations"`
}

var demoProducts = []product{
	{
		ID:          "croquettes-chien-saumon",
		Title:       "Croquettes chien saumon",
		Description: "Croquettes sans céréales au saumon pour chien adulte.",
		Price:       24.90,
		Variations: []variation{
			{SKU: "CCS-3KG", Price: 24.90, Weight: 3, Stock: 40},
			{SKU: "CCS-12KG", Price: 69.90, Weight: 12, Stock: 15},
		},
	},
	{
		ID:          "friandises-poulet",
		Title:       "Friandises poulet séché",
		Description: "Lamelles de poulet séché, sachet refermable.",
		Price:       7.50,
		Variations: []variation{
			{SKU: "FP-150G", Price: 7.50, Weight: 0.15, Stock: 120},
			{SKU: "FP-500G", Price: 19.90, Weight: 0.5, Stock: 60},
		},
	},
	{
		ID:          "jouet-corde",
		Title:       "Jouet corde naturelle",
		Description: "Corde de jeu en coton naturel, toutes tailles.",
		Price:       9.90,
		Variations: []variation{
			// Weight intentionally unset: exercises the catalog fallback
			// and the aggregate floor in delivery estimates.
			{SKU: "JC-UNI", Price: 9.90, Stock: 200},
		},
	},
}

// Apply upserts the demo catalog into db's "products" collection.
func Apply(ctx context.Context, db *mongo.Database) error {
	products := db.Collection("products")
	for _, p := range demoProducts {
		_, err := products.ReplaceOne(
			ctx,
			bson.M{"_id": p.ID},
			p,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
