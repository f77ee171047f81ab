package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/faldi95/supplynet/internal/models"
)

// ErrMissingFixedLocation means a winery, the wholesaler or the retailer could not
// be geocoded. The network cannot be built without them.
var ErrMissingFixedLocation = errors.New("critical location could not be geocoded")

type FixedLocations struct {
	Retailer       models.Location
	Wholesaler     models.Location
	WineryMosel    models.Location
	WineryRheingau models.Location
}

type fixedNode struct {
	id       string
	nodeType models.NodeType
	location models.Location
}

// nodes lists the fixed nodes in graph insertion order.
func (f FixedLocations) nodes() []fixedNode {
	return []fixedNode{
		{models.NodeWineryMosel, models.NodeTypeWinery, f.WineryMosel},
		{models.NodeWineryRheingau, models.NodeTypeWinery, f.WineryRheingau},
		{models.NodeWholesaler, models.NodeTypeWholesaler, f.Wholesaler},
		{models.NodeRetailer, models.NodeTypeRetailer, f.Retailer},
	}
}

// Missing returns "<node id> (<place>)" for every fixed location without coordinates.
func (f FixedLocations) Missing() []string {
	var missing []string
	for _, n := range f.nodes() {
		if !n.location.Resolved() {
			missing = append(missing, fmt.Sprintf("%s (%s)", n.id, n.location.Name))
		}
	}
	return missing
}

type EdgeSpec struct {
	From       string
	To         string
	Percentage *float64
}

func percentage(p float64) *float64 {
	return &p
}

// FixedTopology is the supply chain between the fixed nodes. The winery shares
// are not required to sum to 1.
var FixedTopology = []EdgeSpec{
	{From: models.NodeWineryMosel, To: models.NodeWholesaler, Percentage: percentage(0.20)},
	{From: models.NodeWineryRheingau, To: models.NodeWholesaler, Percentage: percentage(0.80)},
	{From: models.NodeWholesaler, To: models.NodeRetailer},
}

// Assemble builds the supply network. Every customer is served by the retailer.
// Customers without coordinates are left out.
func Assemble(fixed FixedLocations, customers []models.Customer) (*Graph, error) {
	if missing := fixed.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFixedLocation, strings.Join(missing, ", "))
	}

	g := NewGraph()
	for _, n := range fixed.nodes() {
		if err := g.AddNode(models.Node{
			ID:       n.id,
			Type:     n.nodeType,
			City:     n.location.Name,
			Position: n.location.Position(),
		}); err != nil {
			return nil, err
		}
	}

	var served []string
	for _, c := range customers {
		if !c.Location.Resolved() {
			continue
		}
		if err := g.AddNode(models.Node{
			ID:       c.ID,
			Type:     models.NodeTypeCustomer,
			City:     c.City,
			Position: c.Location.Position(),
			Demand:   c.Demand,
		}); err != nil {
			return nil, err
		}
		served = append(served, c.ID)
	}

	for _, link := range FixedTopology {
		var share *float64
		if link.Percentage != nil {
			share = percentage(*link.Percentage)
		}
		if err := g.AddEdge(models.Edge{From: link.From, To: link.To, Percentage: share}); err != nil {
			return nil, err
		}
	}
	for _, id := range served {
		if err := g.AddEdge(models.Edge{From: models.NodeRetailer, To: id}); err != nil {
			return nil, err
		}
	}

	return g, nil
}
