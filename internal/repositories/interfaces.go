package repositories

import (
	"context"

	"github.com/faldi95/supplynet/internal/models"
)

// NetworkRepository stores the last generated supply network.
type NetworkRepository interface {
	EnsureSchema(ctx context.Context) error
	// Replace swaps the stored network for nodes and edges of run runID.
	Replace(ctx context.Context, runID string, nodes []models.Node, edges []models.Edge) error
	GetNodes(ctx context.Context) ([]models.Node, error)
	GetEdges(ctx context.Context) ([]models.Edge, error)
	Count(ctx context.Context) (nodes int, edges int, err error)
	DeleteAll(ctx context.Context) error
	Close()
}
