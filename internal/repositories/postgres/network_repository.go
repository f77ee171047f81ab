package postgres

import (
	"context"
	"fmt"

	"github.com/faldi95/supplynet/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NetworkRepository struct {
	pool *pgxpool.Pool
}

func NewNetworkRepository(pool *pgxpool.Pool) *NetworkRepository {
	return &NetworkRepository{pool: pool}
}

// Connect opens a pool for databaseURL and checks that the server answers.
func Connect(ctx context.Context, databaseURL string) (*NetworkRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return NewNetworkRepository(pool), nil
}

const schema = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS supply_network_nodes (
    id         TEXT PRIMARY KEY,
    run_id     TEXT NOT NULL,
    position   INTEGER NOT NULL,
    node_type  TEXT NOT NULL,
    city       TEXT NOT NULL,
    location   GEOGRAPHY(POINT, 4326),
    demand     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS supply_network_edges (
    run_id      TEXT NOT NULL,
    position    INTEGER NOT NULL,
    from_id     TEXT NOT NULL REFERENCES supply_network_nodes(id) ON DELETE CASCADE,
    to_id       TEXT NOT NULL REFERENCES supply_network_nodes(id) ON DELETE CASCADE,
    percentage  DOUBLE PRECISION,
    distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (from_id, to_id)
);`

func (r *NetworkRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create network schema: %w", err)
	}
	return nil
}

func (r *NetworkRepository) Replace(ctx context.Context, runID string, nodes []models.Node, edges []models.Edge) error {
	return r.execTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE supply_network_edges, supply_network_nodes"); err != nil {
			return err
		}

		nodeStmt := `
        INSERT INTO supply_network_nodes (id, run_id, position, node_type, city, location, demand)
        VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326), $8)`

		batch := &pgx.Batch{}
		for i, node := range nodes {
			var lon, lat *float64
			if node.Position != nil {
				lon, lat = &node.Position.Lon, &node.Position.Lat
			}
			batch.Queue(nodeStmt, node.ID, runID, i, string(node.Type), node.City, lon, lat, node.Demand)
		}

		edgeStmt := `
        INSERT INTO supply_network_edges (run_id, position, from_id, to_id, percentage, distance_km)
        VALUES ($1, $2, $3, $4, $5, $6)`
		for i, edge := range edges {
			batch.Queue(edgeStmt, runID, i, edge.From, edge.To, edge.Percentage, edge.DistanceKm)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert network row %d: %w", i, err)
			}
		}
		return results.Close()
	})
}

func (r *NetworkRepository) GetNodes(ctx context.Context) ([]models.Node, error) {
	query := `
        SELECT id, node_type, city, ST_AsText(location::geometry), demand
        FROM supply_network_nodes
        ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		var (
			node     models.Node
			nodeType string
			wkt      *string
		)
		if err := rows.Scan(&node.ID, &nodeType, &node.City, &wkt, &node.Demand); err != nil {
			return nil, err
		}
		node.Type = models.NodeType(nodeType)
		if wkt != nil {
			var coords models.Coordinates
			if err := coords.Scan(*wkt); err != nil {
				return nil, fmt.Errorf("failed to parse location of %s: %w", node.ID, err)
			}
			node.Position = &models.Position{Lon: coords.Lon, Lat: coords.Lat}
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (r *NetworkRepository) GetEdges(ctx context.Context) ([]models.Edge, error) {
	query := `
        SELECT from_id, to_id, percentage, distance_km
        FROM supply_network_edges
        ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var edge models.Edge
		if err := rows.Scan(&edge.From, &edge.To, &edge.Percentage, &edge.DistanceKm); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

func (r *NetworkRepository) Count(ctx context.Context) (int, int, error) {
	var nodes, edges int
	err := r.pool.QueryRow(ctx,
		"SELECT (SELECT COUNT(*) FROM supply_network_nodes), (SELECT COUNT(*) FROM supply_network_edges)",
	).Scan(&nodes, &edges)
	return nodes, edges, err
}

func (r *NetworkRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE supply_network_edges, supply_network_nodes")
	return err
}

func (r *NetworkRepository) Close() {
	r.pool.Close()
}

func (r *NetworkRepository) execTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx failed: %v, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
