package simulator

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faldi95/supplynet/internal/cloudwriter"
	"github.com/faldi95/supplynet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"go.uber.org/zap/zaptest"
)

func sampleNodeMessages(t *testing.T) [][]byte {
	t.Helper()
	nodes := []models.Node{
		{ID: models.NodeRetailer, Type: models.NodeTypeRetailer, City: "Gelsenkirchen", Position: &models.Position{Lon: 7.0857, Lat: 51.5177}},
		{ID: "Customer_1", Type: models.NodeTypeCustomer, City: "Köln", Position: &models.Position{Lon: 6.9603, Lat: 50.9375}, Demand: 9},
	}
	var msgs [][]byte
	for _, n := range nodes {
		msg, err := json.Marshal(NewNodeRecord("run1", 1700000000000, n))
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
	return msgs
}

func sampleEdgeMessages(t *testing.T) [][]byte {
	t.Helper()
	share := 0.2
	edges := []models.Edge{
		{From: models.NodeWineryMosel, To: models.NodeWholesaler, Percentage: &share, DistanceKm: 160.2},
		{From: models.NodeRetailer, To: "Customer_1", DistanceKm: 65.1},
	}
	var msgs [][]byte
	for _, e := range edges {
		msg, err := json.Marshal(NewEdgeRecord("run1", 1700000000000, e))
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
	return msgs
}

func writeAll(t *testing.T, out OutputDestination, topic string, msgs [][]byte) {
	t.Helper()
	for _, msg := range msgs {
		require.NoError(t, out.WriteMessage(topic, msg))
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)

	require.NoError(t, out.WriteMessage(models.TopicNodes, []byte(`{"id":"Retailer"}`)))
	require.NoError(t, out.Close())

	assert.Equal(t, "[supply_network_nodes] {\"id\":\"Retailer\"}\n", buf.String())
}

func TestJSONOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "export")

	writeAll(t, out, models.TopicNodes, sampleNodeMessages(t))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(filepath.Join(dir, "export", models.TopicNodes, "data.json"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var rec NodeRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "Customer_1", rec.ID)
	assert.Equal(t, int32(9), rec.Demand)
}

func TestJSONOutputRejectsInvalidMessage(t *testing.T) {
	out := NewJSONOutput(t.TempDir(), "export")
	defer out.Close()

	assert.Error(t, out.WriteMessage(models.TopicNodes, []byte("{not json")))
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewCSVOutput(dir, "export")

	writeAll(t, out, models.TopicEdges, sampleEdgeMessages(t))
	require.NoError(t, out.Close())

	f, err := os.Open(filepath.Join(dir, "export", models.TopicEdges, "data.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"distance_km", "from", "generated_at", "percentage", "run_id", "to"}, rows[0])
	assert.Equal(t, "0.2", rows[1][3])
	// a missing share is an empty cell
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "Customer_1", rows[2][5])
}

func TestParquetOutputLocal(t *testing.T) {
	dir := t.TempDir()
	out := NewParquetOutput(dir, "export", nil, "", "")

	writeAll(t, out, models.TopicNodes, sampleNodeMessages(t))
	writeAll(t, out, models.TopicEdges, sampleEdgeMessages(t))
	require.NoError(t, out.Close())

	fr, err := local.NewLocalFileReader(filepath.Join(dir, "export", models.TopicEdges, "data.parquet"))
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(EdgeRecord), 4)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())
	edges := make([]EdgeRecord, pr.GetNumRows())
	require.NoError(t, pr.Read(&edges))

	assert.Equal(t, models.NodeWineryMosel, edges[0].From)
	require.NotNil(t, edges[0].Percentage)
	assert.InDelta(t, 0.2, *edges[0].Percentage, 1e-9)
	assert.Nil(t, edges[1].Percentage)
	assert.InDelta(t, 65.1, edges[1].DistanceKm, 1e-9)

	assert.FileExists(t, filepath.Join(dir, "export", models.TopicNodes, "data.parquet"))
}

func TestParquetOutputUnknownTopic(t *testing.T) {
	out := NewParquetOutput(t.TempDir(), "export", nil, "", "")
	defer out.Close()

	assert.Error(t, out.WriteMessage("orders", []byte(`{}`)))
}

func TestParquetOutputCloud(t *testing.T) {
	client := &fakeS3{}
	out := NewParquetOutput("", "export", cloudwriter.NewS3WriterFactoryWithClient(client), "exports", "run1")

	writeAll(t, out, models.TopicNodes, sampleNodeMessages(t))
	assert.Empty(t, client.keys)
	require.NoError(t, out.Close())

	require.Len(t, client.keys, 1)
	assert.Equal(t, "run1/export/supply_network_nodes/data.parquet", client.keys[0])
	assert.True(t, strings.HasPrefix(client.bodies[0], "PAR1"))
	assert.True(t, strings.HasSuffix(client.bodies[0], "PAR1"))
}

func TestDetermineOutputDestination(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{format: "", want: nil},
		{format: "console", want: &ConsoleOutput{}},
		{format: "json", want: &JSONOutput{}},
		{format: "csv", want: &CSVOutput{}},
		{format: "parquet", want: &ParquetOutput{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.OutputFormat = tt.format
			cfg.OutputPath = t.TempDir()
			sim := NewSimulator(cfg, zaptest.NewLogger(t).Sugar())

			out, err := sim.determineOutputDestination(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, out)
				return
			}
			assert.IsType(t, tt.want, out)
			require.NoError(t, out.Close())
		})
	}
}

func TestDetermineOutputDestinationCloudParquet(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputFormat = "parquet"
	cfg.OutputDestination = "cloud"
	cfg.CloudStorage = models.CloudStorageConfig{Provider: "s3", BucketName: "exports"}
	sim := NewSimulator(cfg, zaptest.NewLogger(t).Sugar())
	sim.CloudWriterFactory = cloudwriter.NewS3WriterFactoryWithClient(&fakeS3{})

	out, err := sim.determineOutputDestination(context.Background())

	require.NoError(t, err)
	parquetOut, ok := out.(*ParquetOutput)
	require.True(t, ok)
	assert.Equal(t, sim.RunID, parquetOut.cloudPrefix)
	assert.Equal(t, "exports", parquetOut.cloudBucketName)
}
