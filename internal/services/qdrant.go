package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const (
	EntityTypeCandidate = "candidate"
	EntityTypeJob       = "job"
)

// VectorStore is the narrow interface the matching core needs from the
// embedding store: keyed upserts, keyed lookups, and nearest-neighbor
// queries over candidate vectors.
type VectorStore interface {
	InitCollection() error
	UpsertEmbedding(ctx context.Context, entityType, entityID string, embedding []float32) error
	GetEmbedding(ctx context.Context, entityType, entityID string) ([]float32, error)
	NearestCandidates(ctx context.Context, queryEmbedding []float32, k int, scopeIDs, excludeIDs []string) ([]Neighbor, error)
	DeleteEmbedding(ctx context.Context, entityType, entityID string) error
}

// Neighbor is one nearest-neighbor hit. Similarity is raw cosine similarity
// in [-1, 1].
type Neighbor struct {
	EntityID   string
	Similarity float32
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantStore(urlStr, apiKey, collectionName string) (VectorStore, error) {
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

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VectorStore.
func (q *qdrantStore) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// pointID derives a stable point id from the entity key, so re-embedding a
// profile overwrites its point instead of accumulating duplicates.
func pointID(entityType, entityID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(entityType+":"+entityID)).String()
}

// UpsertEmbedding implements VectorStore.
func (q *qdrantStore) UpsertEmbedding(ctx context.Context, entityType, entityID string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(entityType, entityID)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}

	return nil
}

// GetEmbedding implements VectorStore. Returns nil without error when the
// entity has no stored vector.
func (q *qdrantStore) GetEmbedding(ctx context.Context, entityType, entityID string) ([]float32, error) {
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids:            []*qdrant.PointId{qdrant.NewID(pointID(entityType, entityID))},
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}

	if len(points) == 0 {
		return nil, nil
	}

	vectors := points[0].GetVectors()
	if vectors == nil || vectors.GetVector() == nil {
		return nil, nil
	}

	return vectors.GetVector().GetData(), nil
}

// NearestCandidates implements VectorStore. Results come back ordered by
// similarity descending. scopeIDs, when non-empty, restricts hits to those
// candidate ids; excludeIDs removes pairs already handled elsewhere.
func (q *qdrantStore) NearestCandidates(ctx context.Context, queryEmbedding []float32, k int, scopeIDs, excludeIDs []string) ([]Neighbor, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("entity_type", EntityTypeCandidate),
		},
	}

	if len(scopeIDs) > 0 {
		filter.Must = append(filter.Must, qdrant.NewMatchKeywords("entity_id", scopeIDs...))
	}
	if len(excludeIDs) > 0 {
		filter.MustNot = append(filter.MustNot, qdrant.NewMatchKeywords("entity_id", excludeIDs...))
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var neighbors []Neighbor
	for _, point := range searchResult {
		neighbor := Neighbor{Similarity: point.Score}

		if entityID, ok := point.Payload["entity_id"]; ok {
			if val, ok := entityID.GetKind().(*qdrant.Value_StringValue); ok {
				neighbor.EntityID = val.StringValue
			}
		}

		if neighbor.EntityID == "" {
			continue
		}

		neighbors = append(neighbors, neighbor)
	}

	return neighbors, nil
}

// DeleteEmbedding implements VectorStore.
func (q *qdrantStore) DeleteEmbedding(ctx context.Context, entityType, entityID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewID(pointID(entityType, entityID))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}

	return nil
}
