package simulator

import (
	"encoding/json"
	"fmt"

	"github.com/faldi95/supplynet/internal/models"
)

// NodeRecord is the exported form of a network node
type NodeRecord struct {
	RunID       string  `json:"run_id" parquet:"name=run_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	ID          string  `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Type        string  `json:"type" parquet:"name=type,type=BYTE_ARRAY,convertedtype=UTF8"`
	City        string  `json:"city" parquet:"name=city,type=BYTE_ARRAY,convertedtype=UTF8"`
	Lat         float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon         float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
	Demand      int32   `json:"demand" parquet:"name=demand,type=INT32"`
	GeneratedAt int64   `json:"generated_at" parquet:"name=generated_at,type=INT64"`
}

// EdgeRecord is the exported form of a network edge
type EdgeRecord struct {
	RunID       string   `json:"run_id" parquet:"name=run_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	From        string   `json:"from" parquet:"name=from,type=BYTE_ARRAY,convertedtype=UTF8"`
	To          string   `json:"to" parquet:"name=to,type=BYTE_ARRAY,convertedtype=UTF8"`
	Percentage  *float64 `json:"percentage" parquet:"name=percentage,type=DOUBLE,repetitiontype=OPTIONAL"`
	DistanceKm  float64  `json:"distance_km" parquet:"name=distance_km,type=DOUBLE"`
	GeneratedAt int64    `json:"generated_at" parquet:"name=generated_at,type=INT64"`
}

func NewNodeRecord(runID string, generatedAt int64, node models.Node) NodeRecord {
	rec := NodeRecord{
		RunID:       runID,
		ID:          node.ID,
		Type:        string(node.Type),
		City:        node.City,
		Demand:      int32(node.Demand),
		GeneratedAt: generatedAt,
	}
	if node.Position != nil {
		rec.Lat = node.Position.Lat
		rec.Lon = node.Position.Lon
	}
	return rec
}

func NewEdgeRecord(runID string, generatedAt int64, edge models.Edge) EdgeRecord {
	return EdgeRecord{
		RunID:       runID,
		From:        edge.From,
		To:          edge.To,
		Percentage:  edge.Percentage,
		DistanceKm:  edge.DistanceKm,
		GeneratedAt: generatedAt,
	}
}

// GetSchema returns an empty record of the type published on topic.
func GetSchema(topic string) (interface{}, error) {
	switch topic {
	case models.TopicNodes:
		return new(NodeRecord), nil
	case models.TopicEdges:
		return new(EdgeRecord), nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}

// decodeRecord turns a published message back into its record value.
func decodeRecord(topic string, msg []byte) (interface{}, error) {
	switch topic {
	case models.TopicNodes:
		var rec NodeRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	case models.TopicEdges:
		var rec EdgeRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}
