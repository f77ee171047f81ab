package models

import "fmt"

type Coordinates struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
}

// Location is a named place. A nil Coordinates means the geocoder found no match.
type Location struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

func (l Location) Resolved() bool {
	return l.Coordinates != nil
}

// Position returns the node position for this location, or nil when unresolved.
// Note the (lon, lat) axis order.
func (l Location) Position() *Position {
	if l.Coordinates == nil {
		return nil
	}
	return &Position{Lon: l.Coordinates.Lon, Lat: l.Coordinates.Lat}
}

// Scan reads a WKT point as produced by ST_AsText.
func (c *Coordinates) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &c.Lon, &c.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &c.Lon, &c.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Coordinates: %T", value)
	}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%f, %f)", c.Lat, c.Lon)
}
