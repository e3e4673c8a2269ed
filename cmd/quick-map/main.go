package main

import (
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/geometry"
	"quartermaps/internal/mapping"
	"quartermaps/internal/tabular"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	tableFile := flag.String("table", "", "Table file in the data directory or an absolute path")
	geometryFile := flag.String("geometry", "", "GeoJSON file in the geojson directory or an absolute path")
	idCol := flag.String("id-col", "", "Column joining the table to the geometry properties")
	valueCol := flag.String("value-col", "", "Optional column to color the fill by")
	tooltipCols := flag.String("tooltip-cols", "", "Comma-separated columns to show in the tooltip")
	output := flag.String("output", "", "Output HTML path (defaults to quick_map.html in the outputs directory)")
	tiles := flag.String("tiles", "cartodbpositron", "Base tile layer")
	zoomStart := flag.Int("zoom-start", 10, "Initial map zoom")
	flag.Parse()

	if *tableFile == "" || *geometryFile == "" || *idCol == "" {
		logger.Fatal("--table, --geometry and --id-col are required")
	}
	if *output == "" {
		*output = config.Resolve(cfg.OutputsDir, "quick_map.html")
	}

	table, err := tabular.Load(cfg.DataPath(*tableFile), tabular.Options{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to load table")
	}

	fc, err := geometry.LoadCollection(cfg.GeoJSONPath(*geometryFile))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load geometry")
	}

	centerLat, centerLon, err := geometry.BoundsCenter(fc)
	if err != nil {
		logger.WithError(err).Fatal("Failed to place map center")
	}

	var cols []string
	if *tooltipCols != "" {
		for _, col := range strings.Split(*tooltipCols, ",") {
			if col = strings.TrimSpace(col); col != "" {
				cols = append(cols, col)
			}
		}
	}

	m := mapping.New("Быстрая карта", centerLat, centerLon, *zoomStart, *tiles, logger)
	if err := m.AddJoinedLayer(fc, table, mapping.JoinedLayer{
		Name:        *valueCol,
		IDColumn:    *idCol,
		ValueColumn: *valueCol,
		TooltipCols: cols,
	}); err != nil {
		logger.WithError(err).Fatal("Failed to join table with geometry")
	}

	if err := m.Save(*output); err != nil {
		logger.WithError(err).Fatal("Failed to save map")
	}
}
