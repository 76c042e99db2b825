package domain

import (
	"context"
	"time"
)

// Collection names in the record store.
const (
	CollectionProducts  = "products"
	CollectionOrders    = "orders"
	CollectionInvoices  = "invoices"
	CollectionPayments  = "payments"
	CollectionUsers     = "users"
	CollectionRefunds   = "refunds"
	CollectionInventory = "inventory"
	CollectionReviews   = "reviews"
)

// Order statuses.
const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderRefunded   = "refunded"
)

// Product is a catalog record. Embedding is optional; records without one
// are excluded from similarity scoring.
type Product struct {
	ID          string            `json:"id" bson:"_id"`
	Name        string            `json:"name" bson:"name"`
	Price       float64           `json:"price" bson:"price"`
	Category    string            `json:"category" bson:"category"`
	Description string            `json:"description" bson:"description"`
	Keywords    []string          `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Specs       map[string]string `json:"specs,omitempty" bson:"specs,omitempty"`
	Warranty    string            `json:"warranty,omitempty" bson:"warranty,omitempty"`
	Rating      float64           `json:"rating,omitempty" bson:"rating,omitempty"`
	Embedding   []float32         `json:"-" bson:"embedding,omitempty"`
}

// Order is a purchase record.
type Order struct {
	ID                string     `json:"id" bson:"_id"`
	CustomerID        string     `json:"customer_id" bson:"customer_id"`
	Status            string     `json:"status" bson:"status"`
	Total             float64    `json:"total" bson:"total"`
	PlacedAt          time.Time  `json:"placed_at" bson:"placed_at"`
	Carrier           string     `json:"carrier,omitempty" bson:"carrier,omitempty"`
	TrackingNumber    string     `json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	EstimatedDelivery string     `json:"estimated_delivery,omitempty" bson:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	Timeline          []string   `json:"timeline,omitempty" bson:"timeline,omitempty"`
}

// Invoice is a billing record tied to an order.
type Invoice struct {
	ID       string    `json:"id" bson:"_id"`
	OrderID  string    `json:"order_id" bson:"order_id"`
	Amount   float64   `json:"amount" bson:"amount"`
	Status   string    `json:"status" bson:"status"`
	IssuedAt time.Time `json:"issued_at" bson:"issued_at"`
}

// Payment records payment state for an order, keyed by order id.
type Payment struct {
	OrderID string  `json:"order_id" bson:"_id"`
	Method  string  `json:"method" bson:"method"`
	Status  string  `json:"status" bson:"status"`
	Amount  float64 `json:"amount" bson:"amount"`
}

// Refund is the side-effect record written by the refund workflow.
type Refund struct {
	ID        string    `json:"id" bson:"_id"`
	OrderID   string    `json:"order_id" bson:"order_id"`
	Reason    string    `json:"reason" bson:"reason"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Inventory tracks stock per product.
type Inventory struct {
	ProductID  string         `json:"product_id" bson:"_id"`
	TotalStock int            `json:"total_stock" bson:"total_stock"`
	Warehouses map[string]int `json:"warehouses,omitempty" bson:"warehouses,omitempty"`
}

// ReviewSummary aggregates customer reviews per product.
type ReviewSummary struct {
	ProductID    string   `json:"product_id" bson:"_id"`
	AvgRating    float64  `json:"avg_rating" bson:"avg_rating"`
	TotalReviews int      `json:"total_reviews" bson:"total_reviews"`
	Recent       []Review `json:"recent_reviews,omitempty" bson:"recent_reviews,omitempty"`
}

// Review is one customer review.
type Review struct {
	User    string `json:"user" bson:"user"`
	Rating  int    `json:"rating" bson:"rating"`
	Comment string `json:"comment" bson:"comment"`
}

// User is an account record.
type User struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// RecordFilter holds the structured filters for retrieval queries.
type RecordFilter struct {
	MaxPrice float64 // 0 means no price bound
	Category string  // empty means no category bound
}

// ScoredRecord pairs a record with its similarity score.
type ScoredRecord struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Product Product `json:"product"`
}

// RecordStore is the typed read/query surface over the document store.
// Implementations carry no business logic.
type RecordStore interface {
	// GetByID decodes the document with the given id into out. Returns
	// ErrNotFound when it does not exist.
	GetByID(ctx context.Context, collection, id string, out any) error

	// QueryByField decodes all documents whose field equals value into
	// out, which must be a pointer to a slice.
	QueryByField(ctx context.Context, collection, field string, value any, out any) error

	// NearestNeighbors runs a native vector similarity query. Returns
	// ErrIndexUnavailable when the vector index is missing or
	// misconfigured, as distinct from a generic failure.
	NearestNeighbors(ctx context.Context, collection, vectorField string, queryVec []float32, k int, filter RecordFilter) ([]ScoredRecord, error)

	// ListProducts returns all products passing the structured filters,
	// embeddings included, for the fallback similarity scan.
	ListProducts(ctx context.Context, filter RecordFilter) ([]Product, error)

	// Update applies a field patch to the document with the given id.
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Insert writes a new document.
	Insert(ctx context.Context, collection string, doc any) error
}
