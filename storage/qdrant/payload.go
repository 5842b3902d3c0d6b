package qdrant

import (
	"fmt"

	"github.com/poiesic/camvec/storage"
	"github.com/qdrant/go-client/qdrant"
)

// toQdrantPayload converts a domain payload map to wire values. Only
// the three kinds core.VectorPoint allows are accepted.
func toQdrantPayload(payload map[string]any) (map[string]*qdrant.Value, error) {
	converted := make(map[string]*qdrant.Value, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case int64:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case float64:
			converted[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		default:
			return nil, fmt.Errorf("%w: payload key %q holds %T", storage.ErrUpsertFailed, key, value)
		}
	}
	return converted, nil
}

// extractString reads a string payload value, returning "" when the
// key is absent or holds another kind.
func extractString(payload map[string]*qdrant.Value, key string) string {
	value, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := value.Kind.(*qdrant.Value_StringValue); ok {
		return s.StringValue
	}
	return ""
}

// pointIDString renders a point id for search results.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	case *qdrant.PointId_Uuid:
		return v.Uuid
	default:
		return ""
	}
}
