package mapview

import (
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONView is a MapView that records markers and produces a GeoJSON
// FeatureCollection for a client-side map library.
type GeoJSONView struct {
	// DetailPath, when set, adds a detail_url property to every feature.
	DetailPath func(userID uuid.UUID) string

	mu      sync.Mutex
	order   []string
	markers map[string]Marker
	clicks  map[string]func()
	bounds  *Bounds
}

func NewGeoJSONView() *GeoJSONView {
	return &GeoJSONView{
		markers: make(map[string]Marker),
		clicks:  make(map[string]func()),
	}
}

func (v *GeoJSONView) AddMarker(m Marker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.markers[m.ID]; !exists {
		v.order = append(v.order, m.ID)
	}
	v.markers[m.ID] = m
}

func (v *GeoJSONView) RemoveMarker(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.markers[id]; !exists {
		return
	}
	delete(v.markers, id)
	delete(v.clicks, id)
	for i, existing := range v.order {
		if existing == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

func (v *GeoJSONView) FitBounds(b Bounds) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bounds = &b
}

func (v *GeoJSONView) OnMarkerClick(id string, handler func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.markers[id]; exists {
		v.clicks[id] = handler
	}
}

// Click invokes the handler attached to a marker. It reports whether one ran.
func (v *GeoJSONView) Click(id string) bool {
	v.mu.Lock()
	handler, ok := v.clicks[id]
	v.mu.Unlock()
	if !ok {
		return false
	}
	handler()
	return true
}

func (v *GeoJSONView) Markers() []Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Marker, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.markers[id])
	}
	return out
}

func (v *GeoJSONView) Bounds() (Bounds, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bounds == nil {
		return Bounds{}, false
	}
	return *v.bounds, true
}

// FeatureCollection renders one Point feature per marker. Feature geometry is
// already in [lng, lat] order.
func (v *GeoJSONView) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	markers := v.Markers()
	for _, m := range markers {
		f := geojson.NewFeature(m.Position.Point())
		f.ID = m.ID
		f.Properties["user_id"] = m.UserID.String()
		f.Properties["label"] = m.Label
		if m.Glyph.ImageURL != "" {
			f.Properties["avatar_url"] = m.Glyph.ImageURL
		} else {
			f.Properties["initial"] = m.Glyph.Initial
		}
		if v.DetailPath != nil {
			f.Properties["detail_url"] = v.DetailPath(m.UserID)
		}
		fc.Append(f)
	}
	if b, ok := v.Bounds(); ok && len(markers) > 0 {
		fc.BBox = geojson.NewBBox(b.orb())
	}
	return fc
}

var _ MapView = (*GeoJSONView)(nil)
