package render

import (
	"bufio"
	"fmt"
	"html"
	"html/template"
	"io"
	"os"

	"github.com/faldi95/supplynet/internal/models"
	"go.uber.org/zap"
)

// Network is the read-only view of a supply network the renderer needs.
type Network interface {
	Nodes() []models.Node
	Edges() []models.Edge
}

type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Color   string  `json:"color"`
	Icon    string  `json:"icon"`
	Popup   string  `json:"popup"`
	Tooltip string  `json:"tooltip"`
}

type Line struct {
	Points  [][2]float64 `json:"points"` // [lat, lon]
	Color   string       `json:"color"`
	Weight  float64      `json:"weight"`
	Opacity float64      `json:"opacity"`
	Tooltip string       `json:"tooltip"`
}

type MapView struct {
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	TileURL     string
	Attribution string
	Markers     []Marker
	Lines       []Line
}

type MapRenderer struct {
	cfg    models.MapConfig
	logger *zap.SugaredLogger
}

func NewMapRenderer(cfg models.MapConfig, logger *zap.SugaredLogger) *MapRenderer {
	return &MapRenderer{cfg: cfg, logger: logger}
}

// Build projects the network onto map markers and lines. Nodes without a
// position are skipped with a warning, and so are edges touching them.
func (r *MapRenderer) Build(network Network) MapView {
	layer := tiles(r.cfg.Tiles)
	view := MapView{
		CenterLat:   r.cfg.CenterLat,
		CenterLon:   r.cfg.CenterLon,
		Zoom:        r.cfg.Zoom,
		TileURL:     layer.URL,
		Attribution: layer.Attribution,
		Markers:     []Marker{},
		Lines:       []Line{},
	}

	nodes := make(map[string]models.Node)
	for _, node := range network.Nodes() {
		nodes[node.ID] = node
		if node.Position == nil {
			r.logger.Warnf("Node %s has no position and will not be drawn", node.ID)
			continue
		}

		color, icon := nodeStyle(node.Type)
		view.Markers = append(view.Markers, Marker{
			Lat:     node.Position.Lat,
			Lon:     node.Position.Lon,
			Color:   color,
			Icon:    icon,
			Popup:   popupText(node),
			Tooltip: node.ID,
		})
	}

	for _, edge := range network.Edges() {
		from, okFrom := nodes[edge.From]
		to, okTo := nodes[edge.To]
		if !okFrom || !okTo || from.Position == nil || to.Position == nil {
			continue
		}

		style := edgeStyle(from.Type)
		view.Lines = append(view.Lines, Line{
			Points: [][2]float64{
				{from.Position.Lat, from.Position.Lon},
				{to.Position.Lat, to.Position.Lon},
			},
			Color:   style.Color,
			Weight:  style.Weight,
			Opacity: style.Opacity,
			Tooltip: edgeTooltip(edge),
		})
	}

	return view
}

func popupText(node models.Node) string {
	text := fmt.Sprintf("<b>%s</b> (%s)<br>City: %s",
		html.EscapeString(node.ID), html.EscapeString(string(node.Type)), html.EscapeString(node.City))
	if node.Type == models.NodeTypeCustomer {
		text += fmt.Sprintf("<br>Demand: %d Flaschen", node.Demand)
	}
	return text
}

func edgeTooltip(edge models.Edge) string {
	tooltip := fmt.Sprintf("%s -> %s", edge.From, edge.To)
	if edge.Percentage != nil {
		tooltip += fmt.Sprintf(" (%.0f%%)", *edge.Percentage*100)
	}
	return tooltip
}

func (r *MapRenderer) Render(w io.Writer, network Network) error {
	if err := mapTemplate.Execute(w, r.Build(network)); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}

// RenderFile writes the map to path, replacing any existing file.
func (r *MapRenderer) RenderFile(path string, network Network) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map file %s: %w", path, err)
	}

	buf := bufio.NewWriter(file)
	if err := r.Render(buf, network); err != nil {
		file.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write map file %s: %w", path, err)
	}
	return file.Close()
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Liefernetz</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.2.0/css/all.min.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>
<style>html, body, #map { width: 100%; height: 100%; margin: 0; padding: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer({{.TileURL}}, {attribution: {{.Attribution}}, maxZoom: 19}).addTo(map);

var markers = {{.Markers}};
markers.forEach(function (m) {
  L.marker([m.lat, m.lon], {
    icon: L.AwesomeMarkers.icon({icon: m.icon, markerColor: m.color, prefix: "fa"})
  }).bindPopup(m.popup, {maxWidth: 300}).bindTooltip(m.tooltip).addTo(map);
});

var lines = {{.Lines}};
lines.forEach(function (l) {
  L.polyline(l.points, {color: l.color, weight: l.weight, opacity: l.opacity})
    .bindTooltip(l.tooltip).addTo(map);
});
</script>
</body>
</html>
`))
