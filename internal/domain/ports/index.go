package ports

import "context"

// ProductDocument is a data product prepared for the discovery index.
type ProductDocument struct {
	DataProductID string
	Title         string
	Description   string
	Keywords      []string
	Embedding     []float32
}

// SearchHit is one discovery index result.
type SearchHit struct {
	DataProductID string  `json:"data_product_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Score         float32 `json:"score"`
}

// ProductIndex stores data product embeddings for semantic discovery.
type ProductIndex interface {
	// Upsert stores or replaces the document of a data product.
	Upsert(ctx context.Context, doc ProductDocument) error

	// Delete removes the document of a data product.
	Delete(ctx context.Context, dataProductID string) error

	// Search returns the documents closest to the embedding.
	Search(ctx context.Context, embedding []float32, limit int) ([]SearchHit, error)
}
