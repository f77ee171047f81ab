package models

type NodeType string

const (
	NodeTypeWinery     NodeType = "Winery"
	NodeTypeWholesaler NodeType = "Wholesaler"
	NodeTypeRetailer   NodeType = "Retailer"
	NodeTypeCustomer   NodeType = "Customer"
)

// Position is a map position in (lon, lat) order.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type Node struct {
	ID       string    `json:"id"`
	Type     NodeType  `json:"type"`
	City     string    `json:"city"`
	Position *Position `json:"pos,omitempty"`
	Demand   int       `json:"demand,omitempty"` // Customer nodes only
}

type Edge struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Percentage *float64 `json:"percentage,omitempty"` // supply share, winery edges only
	DistanceKm float64  `json:"distance_km"`
}

type Customer struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Demand   int      `json:"demand"`
	Location Location `json:"location"`
}
