package simulator

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/faldi95/supplynet/internal/cloudwriter"
	"github.com/faldi95/supplynet/internal/models"
	"github.com/faldi95/supplynet/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mapGeocoder map[string]models.Coordinates

func (g mapGeocoder) Geocode(_ context.Context, query string) (*models.Coordinates, error) {
	name := strings.TrimSuffix(query, ", "+models.DefaultCountry)
	coords, ok := g[name]
	if !ok {
		return nil, nil
	}
	return &coords, nil
}

func germany() mapGeocoder {
	return mapGeocoder{
		"Gelsenkirchen":      {Lat: 51.5177, Lon: 7.0857},
		"Düsseldorf":         {Lat: 51.2277, Lon: 6.7735},
		"Bernkastel-Kues":    {Lat: 49.9161, Lon: 7.0686},
		"Rüdesheim am Rhein": {Lat: 49.9784, Lon: 7.9235},
		"Köln":               {Lat: 50.9375, Lon: 6.9603},
		"Essen":              {Lat: 51.4556, Lon: 7.0116},
		"Bonn":               {Lat: 50.7374, Lon: 7.0982},
	}
}

type message struct {
	topic string
	body  []byte
}

type memOutput struct {
	messages []message
	closed   bool
}

func (m *memOutput) WriteMessage(topic string, msg []byte) error {
	m.messages = append(m.messages, message{topic: topic, body: msg})
	return nil
}

func (m *memOutput) Close() error {
	m.closed = true
	return nil
}

func (m *memOutput) count(topic string) int {
	n := 0
	for _, msg := range m.messages {
		if msg.topic == topic {
			n++
		}
	}
	return n
}

type memRepository struct {
	runID string
	nodes []models.Node
	edges []models.Edge
}

func (r *memRepository) EnsureSchema(context.Context) error { return nil }

func (r *memRepository) Replace(_ context.Context, runID string, nodes []models.Node, edges []models.Edge) error {
	r.runID, r.nodes, r.edges = runID, nodes, edges
	return nil
}

func (r *memRepository) GetNodes(context.Context) ([]models.Node, error) { return r.nodes, nil }
func (r *memRepository) GetEdges(context.Context) ([]models.Edge, error) { return r.edges, nil }
func (r *memRepository) Count(context.Context) (int, int, error) {
	return len(r.nodes), len(r.edges), nil
}

func (r *memRepository) DeleteAll(context.Context) error {
	r.nodes, r.edges = nil, nil
	return nil
}

func (r *memRepository) Close() {}

type fakeS3 struct {
	keys   []string
	bodies []string
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(params.Body)
	f.keys = append(f.keys, aws.ToString(params.Key))
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	return &models.Config{
		Seed:                   7,
		CustomerCount:          3,
		Country:                models.DefaultCountry,
		Cities:                 []string{"Köln", "Essen", "Bonn"},
		RetailerLocation:       models.DefaultRetailerLocation,
		WholesalerLocation:     models.DefaultWholesalerLocation,
		WineryMoselLocation:    models.DefaultWineryMoselLocation,
		WineryRheingauLocation: models.DefaultWineryRheingauLocation,
		Geocoding:              models.GeocodingConfig{MaxRetries: 0},
		Map:                    models.MapConfig{CenterLat: 51.1657, CenterLon: 10.4515, Zoom: 6, Tiles: "CartoDB positron"},
		MapOutputFile:          filepath.Join(t.TempDir(), models.DefaultMapOutputFile),
		OutputFolder:           "supplynet",
	}
}

func newTestSimulator(t *testing.T, cfg *models.Config, geocoder mapGeocoder) *Simulator {
	t.Helper()
	sim := NewSimulator(cfg, zaptest.NewLogger(t).Sugar())
	sim.Geocoder = geocoder
	return sim
}

func TestRunBuildsNetworkAndMap(t *testing.T) {
	cfg := testConfig(t)
	out := &memOutput{}
	repo := &memRepository{}
	sim := newTestSimulator(t, cfg, germany())
	sim.Output = out
	sim.Repository = repo

	require.NoError(t, sim.Run(context.Background()))

	assert.Len(t, sim.Customers, 3)
	assert.Equal(t, 7, sim.Network.NumberOfNodes())
	assert.Equal(t, 6, sim.Network.NumberOfEdges())

	html, err := os.ReadFile(cfg.MapOutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), models.NodeWineryMosel)
	assert.Contains(t, string(html), "Customer_3")

	assert.True(t, out.closed)
	assert.Equal(t, 7, out.count(models.TopicNodes))
	assert.Equal(t, 6, out.count(models.TopicEdges))

	var rec NodeRecord
	require.NoError(t, json.Unmarshal(out.messages[0].body, &rec))
	assert.Equal(t, sim.RunID, rec.RunID)
	assert.Equal(t, models.NodeWineryMosel, rec.ID)

	assert.Equal(t, sim.RunID, repo.runID)
	assert.Len(t, repo.nodes, 7)
	assert.Len(t, repo.edges, 6)
}

func TestRunMissingFixedLocation(t *testing.T) {
	cfg := testConfig(t)
	geocoder := germany()
	delete(geocoder, models.DefaultWholesalerLocation)
	out := &memOutput{}
	sim := newTestSimulator(t, cfg, geocoder)
	sim.Output = out

	err := sim.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, network.ErrMissingFixedLocation))
	assert.Contains(t, err.Error(), "Wholesaler (Düsseldorf)")
	assert.NoFileExists(t, cfg.MapOutputFile)
	assert.Nil(t, sim.Network)
	assert.Empty(t, out.messages)
}

func TestRunSkipsUnresolvedCustomers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cities = []string{"Köln", "Atlantis", "Bonn"}
	sim := newTestSimulator(t, cfg, germany())

	require.NoError(t, sim.Run(context.Background()))

	assert.Len(t, sim.Customers, 2)
	assert.Equal(t, 6, sim.Network.NumberOfNodes())
	assert.Equal(t, 5, sim.Network.NumberOfEdges())
	for _, c := range sim.Customers {
		assert.NotEqual(t, "Atlantis", c.City)
	}
}

func TestRunWritesJSONExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputFormat = "json"
	cfg.OutputPath = t.TempDir()
	sim := newTestSimulator(t, cfg, germany())

	require.NoError(t, sim.Run(context.Background()))

	assert.Equal(t, 7, countLines(t, filepath.Join(cfg.OutputPath, cfg.OutputFolder, models.TopicNodes, "data.json")))
	assert.Equal(t, 6, countLines(t, filepath.Join(cfg.OutputPath, cfg.OutputFolder, models.TopicEdges, "data.json")))
}

func TestRunWithoutExportsWritesOnlyMap(t *testing.T) {
	cfg := testConfig(t)
	sim := newTestSimulator(t, cfg, germany())

	require.NoError(t, sim.Run(context.Background()))

	assert.FileExists(t, cfg.MapOutputFile)
	assert.Nil(t, sim.Output)
	assert.Nil(t, sim.Repository)
}

func TestRunUploadsMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.CloudStorage = models.CloudStorageConfig{Provider: "s3", BucketName: "maps", UploadMap: true}
	client := &fakeS3{}
	sim := newTestSimulator(t, cfg, germany())
	sim.CloudWriterFactory = cloudwriter.NewS3WriterFactoryWithClient(client)

	require.NoError(t, sim.Run(context.Background()))

	require.Len(t, client.keys, 1)
	assert.Equal(t, sim.RunID+"/"+models.DefaultMapOutputFile, client.keys[0])
	assert.Contains(t, client.bodies[0], "leaflet")
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	first := newTestSimulator(t, testConfig(t), germany())
	second := newTestSimulator(t, testConfig(t), germany())

	require.NoError(t, first.Run(context.Background()))
	require.NoError(t, second.Run(context.Background()))

	assert.Equal(t, first.Customers, second.Customers)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			n++
		}
	}
	require.NoError(t, scanner.Err())
	return n
}
