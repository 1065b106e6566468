package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// VectorIndexService caches job and candidate embeddings in Qdrant so
// repeated rankings do not re-embed unchanged entities, and backs the
// similar-candidate search.
type VectorIndexService interface {
	InitCollection() error
	UpsertEmbedding(ctx context.Context, kind string, entityID uuid.UUID, vector []float32) error
	SearchSimilar(ctx context.Context, queryVector []float32, kind string, limit int) ([]SimilarPoint, error)
}

type SimilarPoint struct {
	EntityID string
	Score    float32
	Kind     string
}

type vectorIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewVectorIndexService(urlStr, apiKey, collectionName string) (VectorIndexService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &vectorIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     EmbeddingDimension,
	}, nil
}

// InitCollection implements VectorIndexService.
func (v *vectorIndexService) InitCollection() error {
	ctx := context.Background()

	exists, err := v.client.CollectionExists(ctx, v.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: v.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     v.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// UpsertEmbedding implements VectorIndexService. The point id is derived
// from the entity id so re-upserting an entity overwrites its old vector.
func (v *vectorIndexService) UpsertEmbedding(ctx context.Context, kind string, entityID uuid.UUID, vector []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(pointNum(entityID)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"entity_id": entityID.String(),
			"kind":      kind,
		}),
	}

	_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: v.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// SearchSimilar implements VectorIndexService.
func (v *vectorIndexService) SearchSimilar(ctx context.Context, queryVector []float32, kind string, limit int) ([]SimilarPoint, error) {
	var filter *qdrant.Filter
	if kind != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("kind", kind),
			},
		}
	}

	searchResult, err := v.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: v.collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}

	var results []SimilarPoint
	for _, point := range searchResult {
		result := SimilarPoint{Score: point.Score}

		if entityID, ok := point.Payload["entity_id"]; ok {
			if val, ok := entityID.GetKind().(*qdrant.Value_StringValue); ok {
				result.EntityID = val.StringValue
			}
		}
		if pointKind, ok := point.Payload["kind"]; ok {
			if val, ok := pointKind.GetKind().(*qdrant.Value_StringValue); ok {
				result.Kind = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

func pointNum(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8])
}
