package signal

// Grid is an ordered set of points for one named signal context, such as
// "candidate", "opponent", "base" or "tag:economy".
type Grid struct {
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Points   []LocationPoint `json:"points"`
	// Error records why the grid is empty when the fetch degraded.
	Error string `json:"error,omitempty"`
	// Dropped counts rows removed for a missing coordinate or metric.
	Dropped int `json:"dropped,omitempty"`
}

// NewGrid normalizes raw provider points: rows with a NaN coordinate or
// metric are dropped and the rest are annotated. Input order is preserved.
func NewGrid(name, location string, raw []LocationPoint) *Grid {
	g := &Grid{Name: name, Location: location, Points: make([]LocationPoint, 0, len(raw))}
	for _, p := range raw {
		if !p.Valid() {
			g.Dropped++
			continue
		}
		p.Annotate()
		g.Points = append(g.Points, p)
	}
	return g
}

// EmptyGrid is the sentinel returned when a fetch fails or yields nothing.
func EmptyGrid(name, location, reason string) *Grid {
	return &Grid{Name: name, Location: location, Points: []LocationPoint{}, Error: reason}
}

// Len returns the number of points. A nil grid has none.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Points)
}

// IsEmpty reports whether the grid has no usable points.
func (g *Grid) IsEmpty() bool { return g.Len() == 0 }

// Index maps join keys to points. When the provider repeats a key the first
// occurrence wins.
func (g *Grid) Index() map[Key]LocationPoint {
	idx := make(map[Key]LocationPoint, g.Len())
	if g == nil {
		return idx
	}
	for _, p := range g.Points {
		if _, ok := idx[p.Key()]; !ok {
			idx[p.Key()] = p
		}
	}
	return idx
}

// SortedKeys returns the distinct keys in (lat, lon) order.
func (g *Grid) SortedKeys() []Key {
	idx := g.Index()
	keys := make([]Key, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// StrategyCounts counts points per strategy.
func (g *Grid) StrategyCounts() map[Strategy]int {
	out := make(map[Strategy]int, len(Strategies))
	if g == nil {
		return out
	}
	for _, p := range g.Points {
		out[p.Strategy]++
	}
	return out
}

//Personal.AI order the ending
