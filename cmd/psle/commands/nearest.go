package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/geo"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <points-file>",
	Short: "Find each school's nearest neighbouring school",
	Long: `Find the nearest distinct neighbour of every point in a list.

The input is a YAML or JSON list of points:

  - id: PS1104063
    lat: -3.3731
    lon: 36.6948

Distance is planar Euclidean distance over the raw coordinates. Points that
share a location with every other point have no neighbour.

Examples:
  psle nearest schools.yaml
  psle nearest --format jsonl schools.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)
}

type namedPoint struct {
	ID  string  `yaml:"id"`
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

type neighbour struct {
	ID        string   `json:"id" yaml:"id"`
	NearestID *string  `json:"nearest_id" yaml:"nearest_id"`
	Distance  *float64 `json:"distance" yaml:"distance"`
}

func runNearest(cmd *cobra.Command, args []string) error {
	points, err := readPoints(args[0])
	if err != nil {
		return err
	}

	coords := make([]geo.Point, len(points))
	for i, p := range points {
		coords[i] = geo.Point{Lat: p.Lat, Lon: p.Lon}
	}

	w, closeOutput, err := openWriter(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	isolated := 0
	for i, m := range geo.NearestAll(coords) {
		out := neighbour{ID: points[i].ID}
		if m != nil {
			out.NearestID = &points[m.Index].ID
			out.Distance = &m.Distance
		} else {
			isolated++
		}
		if err := w.Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	logger.Info("nearest neighbours computed", "points", len(points), "without_neighbour", isolated)

	return closeOutput()
}

// readPoints loads a point list. JSON input is read as YAML.
func readPoints(path string) ([]namedPoint, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var points []namedPoint
	if err := yaml.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return points, nil
}
