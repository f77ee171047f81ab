package render

import "github.com/faldi95/supplynet/internal/models"

var nodeColors = map[models.NodeType]string{
	models.NodeTypeWinery:     "darkred",
	models.NodeTypeWholesaler: "orange",
	models.NodeTypeRetailer:   "blue",
	models.NodeTypeCustomer:   "green",
}

// Font Awesome icon names
var nodeIcons = map[models.NodeType]string{
	models.NodeTypeWinery:     "industry",
	models.NodeTypeWholesaler: "truck",
	models.NodeTypeRetailer:   "shopping-cart",
	models.NodeTypeCustomer:   "user",
}

type lineStyle struct {
	Color   string
	Weight  float64
	Opacity float64
}

var defaultLineStyle = lineStyle{Color: "gray", Weight: 1.5, Opacity: 0.6}

// edge styles are keyed by the type of the source node
var lineStyles = map[models.NodeType]lineStyle{
	models.NodeTypeWinery:     {Color: "darkred", Weight: 2, Opacity: 0.7},
	models.NodeTypeWholesaler: {Color: "orange", Weight: 2, Opacity: 0.7},
	models.NodeTypeRetailer:   {Color: "blue", Weight: 1, Opacity: 0.5},
}

func nodeStyle(t models.NodeType) (color, icon string) {
	color, ok := nodeColors[t]
	if !ok {
		color = "gray"
	}
	icon, ok = nodeIcons[t]
	if !ok {
		icon = "circle"
	}
	return color, icon
}

func edgeStyle(sourceType models.NodeType) lineStyle {
	if s, ok := lineStyles[sourceType]; ok {
		return s
	}
	return defaultLineStyle
}

type tileLayer struct {
	URL         string
	Attribution string
}

var tileLayers = map[string]tileLayer{
	"CartoDB positron": {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
	"OpenStreetMap": {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
}

// tiles resolves a named tile set; any other value is used as a URL template.
func tiles(name string) tileLayer {
	if t, ok := tileLayers[name]; ok {
		return t
	}
	return tileLayer{URL: name}
}
