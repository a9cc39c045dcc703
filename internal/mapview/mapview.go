// Package mapview turns visible friend locations into map pins behind a small
// MapView port, so the map library can be swapped or faked in tests.
package mapview

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/Nimsara-boop/destinasian-journey-sisterhood-sub000/internal/models"
)

// LngLat is a coordinate in map-library order: [longitude, latitude].
type LngLat [2]float64

// ToLngLat is the only place (latitude, longitude) is reordered for the map.
func ToLngLat(latitude, longitude float64) LngLat {
	return LngLat{longitude, latitude}
}

func (c LngLat) Lng() float64 { return c[0] }
func (c LngLat) Lat() float64 { return c[1] }

// Point converts to an orb point, which shares the [lng, lat] order.
func (c LngLat) Point() orb.Point { return orb.Point(c) }

type Bounds struct {
	SouthWest LngLat `json:"south_west"`
	NorthEast LngLat `json:"north_east"`
}

// BoundsOf returns the smallest box containing every coordinate.
// ok is false when coords is empty.
func BoundsOf(coords []LngLat) (Bounds, bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}
	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, c.Point())
	}
	b := mp.Bound()
	return Bounds{SouthWest: LngLat(b.Min), NorthEast: LngLat(b.Max)}, true
}

func (b Bounds) orb() orb.Bound {
	return orb.Bound{Min: orb.Point(b.SouthWest), Max: orb.Point(b.NorthEast)}
}

// Glyph is what a pin shows: the avatar image when there is one, otherwise
// the upper-cased first letter of the name.
type Glyph struct {
	ImageURL string `json:"image_url,omitempty"`
	Initial  string `json:"initial,omitempty"`
}

func GlyphFor(loc models.VisibleFriendLocation) Glyph {
	if loc.AvatarURL != nil && *loc.AvatarURL != "" {
		return Glyph{ImageURL: *loc.AvatarURL}
	}
	name := strings.TrimSpace(displayName(loc))
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return Glyph{Initial: "?"}
	}
	return Glyph{Initial: string(unicode.ToUpper(r))}
}

type Marker struct {
	ID       string
	UserID   uuid.UUID
	Position LngLat
	Label    string
	Glyph    Glyph
}

func MarkerID(userID uuid.UUID) string {
	return "friend-" + userID.String()
}

// MapView is the port a map implementation provides.
type MapView interface {
	AddMarker(m Marker)
	RemoveMarker(id string)
	FitBounds(b Bounds)
	OnMarkerClick(id string, handler func())
}

// Renderer keeps a MapView in sync with a set of visible locations.
type Renderer struct {
	view     MapView
	onSelect func(models.VisibleFriendLocation)

	mu      sync.Mutex
	current []string
}

func NewRenderer(view MapView, onSelect func(models.VisibleFriendLocation)) *Renderer {
	return &Renderer{view: view, onSelect: onSelect}
}

// Render drops every pin from the previous render and adds fresh ones for the
// locations matching filter, then fits the viewport to them. It returns the
// markers it added.
func (r *Renderer) Render(locs []models.VisibleFriendLocation, filter string) []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.current {
		r.view.RemoveMarker(id)
	}
	r.current = r.current[:0]

	shown := FilterByName(locs, filter)
	markers := make([]Marker, 0, len(shown))
	coords := make([]LngLat, 0, len(shown))
	for _, loc := range shown {
		m := Marker{
			ID:       MarkerID(loc.UserID),
			UserID:   loc.UserID,
			Position: ToLngLat(loc.Latitude, loc.Longitude),
			Label:    displayName(loc),
			Glyph:    GlyphFor(loc),
		}
		r.view.AddMarker(m)
		if r.onSelect != nil {
			selected := loc
			r.view.OnMarkerClick(m.ID, func() { r.onSelect(selected) })
		}
		r.current = append(r.current, m.ID)
		markers = append(markers, m)
		coords = append(coords, m.Position)
	}

	if b, ok := BoundsOf(coords); ok {
		r.view.FitBounds(b)
	}
	return markers
}

// FilterByName keeps locations whose display name contains query, ignoring
// case. An empty query keeps everything. The input slice is not modified.
func FilterByName(locs []models.VisibleFriendLocation, query string) []models.VisibleFriendLocation {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.VisibleFriendLocation, 0, len(locs))
	for _, loc := range locs {
		if q == "" || strings.Contains(strings.ToLower(displayName(loc)), q) {
			out = append(out, loc)
		}
	}
	return out
}

func displayName(loc models.VisibleFriendLocation) string {
	if loc.DisplayName != "" {
		return loc.DisplayName
	}
	return loc.Username
}
