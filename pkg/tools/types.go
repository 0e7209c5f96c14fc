package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/NERVsystems/photogeo/pkg/cluster"
	"github.com/NERVsystems/photogeo/pkg/geo"
)

// MaxPhotos caps the photos accepted by one tool call.
const MaxPhotos = 50000

// ErrTooManyPhotos is returned when a call carries more than MaxPhotos.
var ErrTooManyPhotos = errors.New("too many photos")

// PhotoMeta is the opaque payload carried with each photo. It satisfies
// cluster.Captioner and cluster.Favoriter.
type PhotoMeta struct {
	Text     string `json:"caption,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

func (m PhotoMeta) Caption() string  { return m.Text }
func (m PhotoMeta) IsFavorite() bool { return m.Favorite }

// PhotoItem is a photo as the clustering and viewport packages see it.
type PhotoItem = cluster.Item[PhotoMeta]

// Photo is the wire form of a photo in tool output.
type Photo struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Caption   string  `json:"caption,omitempty"`
	Favorite  bool    `json:"favorite,omitempty"`
}

// Skipped reports an input photo that was dropped.
type Skipped struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

func photoFromItem(it PhotoItem) Photo {
	return Photo{
		ID:        it.ID,
		Latitude:  it.Coordinate.Latitude,
		Longitude: it.Coordinate.Longitude,
		Name:      it.Name,
		Caption:   it.Payload.Text,
		Favorite:  it.Payload.Favorite,
	}
}

func photosFromItems(items []PhotoItem) []Photo {
	out := make([]Photo, len(items))
	for i, it := range items {
		out[i] = photoFromItem(it)
	}
	return out
}

// decodePhotos converts the loosely typed "photos" argument. Numbers may
// arrive as strings and IDs as numbers; cast normalizes both. Records
// with a missing ID or invalid coordinates are skipped, never fatal.
func decodePhotos(raw any) ([]PhotoItem, []Skipped, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("photos must be an array, got %T", raw)
	}
	if len(list) > MaxPhotos {
		return nil, nil, fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooManyPhotos, len(list), MaxPhotos)
	}

	items := make([]PhotoItem, 0, len(list))
	skipped := make([]Skipped, 0)
	for i, entry := range list {
		m, err := cast.ToStringMapE(entry)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: "not an object"})
			continue
		}

		id := strings.TrimSpace(cast.ToString(m["id"]))
		if id == "" {
			skipped = append(skipped, Skipped{Index: i, Reason: "missing id"})
			continue
		}

		coord, err := decodeCoordinate(m)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, ID: id, Reason: err.Error()})
			continue
		}

		items = append(items, PhotoItem{
			ID:         id,
			Name:       cast.ToString(m["name"]),
			Coordinate: coord,
			Payload: PhotoMeta{
				Text:     cast.ToString(m["caption"]),
				Favorite: cast.ToBool(m["favorite"]),
			},
		})
	}
	return items, skipped, nil
}

// decodeCoordinate reads latitude/longitude (or lat/lon/lng) from m and
// validates the pair.
func decodeCoordinate(m map[string]any) (geo.Coordinate, error) {
	latRaw, ok := firstPresent(m, "latitude", "lat")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("missing latitude")
	}
	lonRaw, ok := firstPresent(m, "longitude", "lon", "lng")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("missing longitude")
	}

	lat, err := cast.ToFloat64E(latRaw)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude is not a number")
	}
	lon, err := cast.ToFloat64E(lonRaw)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude is not a number")
	}

	if err := geo.ValidateCoords(lat, lon); err != nil {
		return geo.Coordinate{}, err
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// decodePoints converts a "points" argument of {latitude, longitude}
// objects. Unlike photos, any invalid point fails the whole call.
func decodePoints(raw any) ([]geo.Coordinate, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("points must be an array, got %T", raw)
	}
	if len(list) > MaxPhotos {
		return nil, fmt.Errorf("%d points exceeds the limit of %d", len(list), MaxPhotos)
	}

	out := make([]geo.Coordinate, 0, len(list))
	for i, entry := range list {
		m, err := cast.ToStringMapE(entry)
		if err != nil {
			return nil, fmt.Errorf("point %d is not an object", i)
		}
		c, err := decodeCoordinate(m)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
