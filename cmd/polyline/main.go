// Command polyline decodes and encodes Polyline5 strings, the format
// great_circle_path returns with encoding=polyline.
//
//	polyline decode <encoded>
//	polyline encode <lat,lon> [<lat,lon> ...]
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/NERVsystems/photogeo/pkg/geo"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "polyline:", err)
		fmt.Fprintln(os.Stderr, "Usage: polyline decode <encoded> | polyline encode <lat,lon>...")
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("missing arguments")
	}

	switch args[0] {
	case "decode":
		points, err := geo.DecodePolyline(args[1])
		if err != nil {
			return err
		}
		for i, pt := range points {
			fmt.Fprintf(w, "Decoded Point %d: Latitude: %.5f, Longitude: %.5f\n", i, pt.Latitude, pt.Longitude)
		}
		return nil

	case "encode":
		points := make([]geo.Coordinate, 0, len(args)-1)
		for _, a := range args[1:] {
			pt, err := parsePoint(a)
			if err != nil {
				return err
			}
			points = append(points, pt)
		}
		fmt.Fprintln(w, geo.EncodePolyline(points))
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// parsePoint reads "lat,lon" and validates it.
func parsePoint(s string) (geo.Coordinate, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("point %q is not lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("point %q: bad latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("point %q: bad longitude: %w", s, err)
	}
	if err := geo.ValidateCoords(lat, lon); err != nil {
		return geo.Coordinate{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}
