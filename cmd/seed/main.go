// Command seed populates the document store with demo catalog, order and
// billing data, and optionally generates product embeddings so vector
// search returns results out of the box.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hollis/supportdesk/internal/config"
	"github.com/hollis/supportdesk/internal/domain"
	"github.com/hollis/supportdesk/internal/llm/gemini"
	"github.com/hollis/supportdesk/internal/repository/mongo"
)

func main() {
	skipEmbeddings := flag.Bool("skip-embeddings", false, "seed records without calling the embedding model")
	flag.Parse()

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := mongo.NewStore(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to record store")
	}
	defer store.Close(context.Background())

	records := mongo.NewRecordStore(store)

	products := demoProducts()
	if !*skipEmbeddings {
		provider, err := gemini.NewProvider(ctx, cfg.LLM.Gemini)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize embedding provider")
		}
		defer provider.Close()

		for i := range products {
			vec, err := provider.Embed(ctx, embeddingText(products[i]))
			if err != nil {
				log.Fatal().Err(err).Str("product", products[i].ID).Msg("Failed to embed product")
			}
			products[i].Embedding = vec
			log.Info().Str("product", products[i].ID).Int("dims", len(vec)).Msg("Embedded")
		}
	}

	for _, p := range products {
		if err := records.Replace(ctx, domain.CollectionProducts, p.ID, p); err != nil {
			log.Fatal().Err(err).Str("product", p.ID).Msg("Failed to seed product")
		}
	}
	for _, inv := range demoInventory() {
		if err := records.Replace(ctx, domain.CollectionInventory, inv.ProductID, inv); err != nil {
			log.Fatal().Err(err).Str("product", inv.ProductID).Msg("Failed to seed inventory")
		}
	}
	for _, rs := range demoReviews() {
		if err := records.Replace(ctx, domain.CollectionReviews, rs.ProductID, rs); err != nil {
			log.Fatal().Err(err).Str("product", rs.ProductID).Msg("Failed to seed reviews")
		}
	}
	for _, o := range demoOrders() {
		if err := records.Replace(ctx, domain.CollectionOrders, o.ID, o); err != nil {
			log.Fatal().Err(err).Str("order", o.ID).Msg("Failed to seed order")
		}
	}
	for _, in := range demoInvoices() {
		if err := records.Replace(ctx, domain.CollectionInvoices, in.ID, in); err != nil {
			log.Fatal().Err(err).Str("invoice", in.ID).Msg("Failed to seed invoice")
		}
	}
	for _, pay := range demoPayments() {
		if err := records.Replace(ctx, domain.CollectionPayments, pay.OrderID, pay); err != nil {
			log.Fatal().Err(err).Str("order", pay.OrderID).Msg("Failed to seed payment")
		}
	}
	for _, u := range demoUsers() {
		if err := records.Replace(ctx, domain.CollectionUsers, u.ID, u); err != nil {
			log.Fatal().Err(err).Str("user", u.ID).Msg("Failed to seed user")
		}
	}

	log.Info().Msg("Seeding complete")
}

func embeddingText(p domain.Product) string {
	return fmt.Sprintf("%s. %s. Category: %s. %s", p.Name, p.Description, p.Category, strings.Join(p.Keywords, ", "))
}

func demoProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "PROD-001", Name: "ProBook Laptop 15", Price: 999.99, Category: "Electronics",
			Description: "High-performance laptop with Intel i7",
			Keywords:    []string{"laptop", "computer", "notebook", "probook"},
			Specs: map[string]string{
				"processor": "Intel Core i7-12700H",
				"ram":       "16GB DDR5",
				"storage":   "512GB NVMe SSD",
			},
			Warranty: "2 years", Rating: 4.5,
		},
		{
			ID: "PROD-002", Name: "Wireless Headphones Pro", Price: 199.99, Category: "Electronics",
			Description: "Premium noise-canceling wireless headphones",
			Keywords:    []string{"headphones", "audio", "wireless", "bluetooth"},
			Specs: map[string]string{
				"driver":          "40mm",
				"battery":         "30 hours",
				"noise_canceling": "yes",
			},
			Warranty: "1 year", Rating: 4.7,
		},
		{
			ID: "PROD-003", Name: "Mechanical Gaming Keyboard", Price: 149.99, Category: "Electronics",
			Description: "RGB mechanical keyboard with Cherry MX switches",
			Keywords:    []string{"keyboard", "gaming", "mechanical", "rgb"},
			Specs: map[string]string{
				"switches":     "Cherry MX Red",
				"layout":       "Full-size",
				"backlighting": "RGB",
			},
			Warranty: "2 years", Rating: 4.6,
		},
		{
			ID: "PROD-004", Name: "Ergonomic Office Chair", Price: 449.99, Category: "Furniture",
			Description: "Premium ergonomic chair with lumbar support",
			Keywords:    []string{"chair", "office", "ergonomic", "furniture"},
			Specs: map[string]string{
				"material":   "Mesh back",
				"adjustable": "Height, armrests, lumbar",
			},
			Warranty: "5 years", Rating: 4.4,
		},
		{
			ID: "PROD-005", Name: "Standing Desk Pro", Price: 599.99, Category: "Furniture",
			Description: "Electric sit-stand desk with memory presets",
			Keywords:    []string{"desk", "standing", "office", "furniture"},
			Specs: map[string]string{
				"dimensions":   "60x30 inches",
				"height_range": "25-51 inches",
				"motor":        "Dual",
			},
			Warranty: "10 years", Rating: 4.8,
		},
		{
			ID: "PROD-006", Name: "ROG Gaming Laptop", Price: 1499.99, Category: "Electronics",
			Description: "High-performance gaming laptop with RTX 4060 graphics card",
			Keywords:    []string{"laptop", "gaming", "computer", "notebook", "rog", "gaming laptop"},
			Specs: map[string]string{
				"processor": "Intel Core i7-13700H",
				"gpu":       "NVIDIA RTX 4060",
				"ram":       "32GB DDR5",
				"storage":   "1TB NVMe SSD",
				"display":   "15.6 inch 144Hz",
			},
			Warranty: "2 years", Rating: 4.8,
		},
	}
}

func demoInventory() []domain.Inventory {
	return []domain.Inventory{
		{ProductID: "PROD-001", TotalStock: 45, Warehouses: map[string]int{"US-West": 20, "US-East": 15, "EU": 10}},
		{ProductID: "PROD-002", TotalStock: 120, Warehouses: map[string]int{"US-West": 50, "US-East": 40, "EU": 30}},
		{ProductID: "PROD-003", TotalStock: 78, Warehouses: map[string]int{"US-West": 30, "US-East": 28, "EU": 20}},
		{ProductID: "PROD-004", TotalStock: 23, Warehouses: map[string]int{"US-West": 10, "US-East": 8, "EU": 5}},
		{ProductID: "PROD-005", TotalStock: 15, Warehouses: map[string]int{"US-West": 8, "US-East": 5, "EU": 2}},
		{ProductID: "PROD-006", TotalStock: 32, Warehouses: map[string]int{"US-West": 15, "US-East": 12, "EU": 5}},
	}
}

func demoReviews() []domain.ReviewSummary {
	return []domain.ReviewSummary{
		{
			ProductID: "PROD-001", AvgRating: 4.5, TotalReviews: 234,
			Recent: []domain.Review{
				{User: "TechFan", Rating: 5, Comment: "Excellent performance!"},
				{User: "Student123", Rating: 4, Comment: "Great for coding."},
			},
		},
		{
			ProductID: "PROD-002", AvgRating: 4.7, TotalReviews: 512,
			Recent: []domain.Review{
				{User: "MusicLover", Rating: 5, Comment: "Best noise canceling!"},
				{User: "Commuter", Rating: 5, Comment: "Perfect for travel."},
			},
		},
		{
			ProductID: "PROD-006", AvgRating: 4.8, TotalReviews: 189,
			Recent: []domain.Review{
				{User: "GamerPro", Rating: 5, Comment: "Runs all games smoothly at high settings!"},
				{User: "Streamer99", Rating: 5, Comment: "Perfect for streaming and gaming!"},
			},
		},
	}
}

// demoOrders uses dates relative to the seeding time so the refund
// return window behaves sensibly no matter when the demo runs.
func demoOrders() []domain.Order {
	now := time.Now().UTC()
	deliveredRecently := now.AddDate(0, 0, -5)
	deliveredLongAgo := now.AddDate(0, 0, -45)

	return []domain.Order{
		{
			ID: "ORD-12345", CustomerID: "CUST-001", Status: domain.OrderDelivered,
			Total: 1295.98, PlacedAt: now.AddDate(0, 0, -9),
			Carrier: "FastShip", TrackingNumber: "FS789456123",
			DeliveredAt: &deliveredRecently,
			Timeline:    []string{"Order placed", "Processing complete", "Shipped", "Delivered"},
		},
		{
			ID: "ORD-67890", CustomerID: "CUST-001", Status: domain.OrderShipped,
			Total: 215.99, PlacedAt: now.AddDate(0, 0, -3),
			Carrier: "QuickPost", TrackingNumber: "QP456789012",
			EstimatedDelivery: now.AddDate(0, 0, 2).Format("2006-01-02"),
			Timeline:          []string{"Order placed", "Shipped", "In transit"},
		},
		{
			ID: "ORD-11111", CustomerID: "CUST-001", Status: domain.OrderDelivered,
			Total: 485.99, PlacedAt: now.AddDate(0, 0, -49),
			Carrier:     "FastShip",
			DeliveredAt: &deliveredLongAgo,
			Timeline:    []string{"Order placed", "Delivered"},
		},
		{
			ID: "ORD-22222", CustomerID: "CUST-002", Status: domain.OrderProcessing,
			Total: 647.99, PlacedAt: now.AddDate(0, 0, -1),
			Timeline: []string{"Order placed", "Processing"},
		},
	}
}

func demoInvoices() []domain.Invoice {
	now := time.Now().UTC()
	return []domain.Invoice{
		{ID: "INV-2025-001", OrderID: "ORD-12345", Amount: 1295.98, Status: "pending", IssuedAt: now.AddDate(0, 0, -9)},
		{ID: "INV-2025-002", OrderID: "ORD-67890", Amount: 215.99, Status: "paid", IssuedAt: now.AddDate(0, 0, -3)},
	}
}

func demoPayments() []domain.Payment {
	return []domain.Payment{
		{OrderID: "ORD-12345", Method: "Credit Card (ending 4242)", Status: "pending", Amount: 1295.98},
		{OrderID: "ORD-67890", Method: "Credit Card (ending 4242)", Status: "completed", Amount: 215.99},
		{OrderID: "ORD-11111", Method: "PayPal", Status: "completed", Amount: 485.99},
		{OrderID: "ORD-22222", Method: "Credit Card (ending 1881)", Status: "completed", Amount: 647.99},
	}
}

func demoUsers() []domain.User {
	return []domain.User{
		{ID: "CUST-001", Name: "John Doe", Email: "john.doe@example.com"},
		{ID: "CUST-002", Name: "Jane Smith", Email: "jane.smith@example.com"},
	}
}
