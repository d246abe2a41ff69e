// Package qdrant provides the discovery index on Qdrant.
package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/datacatalog/internal/domain/ports"
	"github.com/ersonp/datacatalog/internal/infrastructure/config"
)

// Payload keys of an indexed data product.
const (
	payloadID          = "data_product_id"
	payloadTitle       = "title"
	payloadDescription = "description"
	payloadKeywords    = "keywords"
)

// Repository implements ports.ProductIndex and ports.CollectionManager.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{transportCredentials(cfg.UseTLS)}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

func transportCredentials(useTLS bool) grpc.DialOption {
	if useTLS {
		return grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}))
	}
	return grpc.WithTransportCredentials(insecure.NewCredentials())
}

func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection drops the collection and every indexed product.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Upsert stores the document of a data product under a point id derived from
// the data product id, so re-indexing replaces the previous point.
func (r *Repository) Upsert(ctx context.Context, doc ports.ProductDocument) error {
	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         []*pb.PointStruct{toPoint(doc)},
	})
	if err != nil {
		return fmt.Errorf("upserting point for %s: %w", doc.DataProductID, err)
	}
	return nil
}

// Delete removes the document of a data product. Removing a product that
// was never indexed succeeds.
func (r *Repository) Delete(ctx context.Context, dataProductID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{pointID(dataProductID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point for %s: %w", dataProductID, err)
	}
	return nil
}

// Search returns the products closest to the embedding, best first.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]ports.SearchHit, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]ports.SearchHit, 0, len(resp.Result))
	for _, p := range resp.Result {
		hits = append(hits, toHit(p))
	}
	return hits, nil
}

// Count returns the number of indexed products.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

func pointID(dataProductID string) *pb.PointId {
	return &pb.PointId{
		PointIdOptions: &pb.PointId_Uuid{
			Uuid: uuid.NewSHA1(uuid.NameSpaceURL, []byte(dataProductID)).String(),
		},
	}
}

func toPoint(doc ports.ProductDocument) *pb.PointStruct {
	keywords := make([]*pb.Value, 0, len(doc.Keywords))
	for _, kw := range doc.Keywords {
		keywords = append(keywords, stringValue(kw))
	}

	return &pb.PointStruct{
		Id: pointID(doc.DataProductID),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{
					Data: doc.Embedding,
				},
			},
		},
		Payload: map[string]*pb.Value{
			payloadID:          stringValue(doc.DataProductID),
			payloadTitle:       stringValue(doc.Title),
			payloadDescription: stringValue(doc.Description),
			payloadKeywords: {Kind: &pb.Value_ListValue{
				ListValue: &pb.ListValue{Values: keywords},
			}},
		},
	}
}

func toHit(p *pb.ScoredPoint) ports.SearchHit {
	return ports.SearchHit{
		DataProductID: getStringValue(p.Payload, payloadID),
		Title:         getStringValue(p.Payload, payloadTitle),
		Description:   getStringValue(p.Payload, payloadDescription),
		Score:         p.Score,
	}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
