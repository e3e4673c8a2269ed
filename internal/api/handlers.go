package api

import (
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quartermaps/internal/database"
	"quartermaps/internal/geometry"
	"quartermaps/internal/models"
)

type Handler struct {
	db          *database.Database
	logger      *logrus.Logger
	geojsonPath string
}

func NewHandler(db *database.Database, geojsonPath string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:          db,
		logger:      logger,
		geojsonPath: geojsonPath,
	}
}

// GetQuarterMetrics returns the aggregated metrics for every quarter,
// ordered by cadastral number. NaN values are serialized as null.
func (h *Handler) GetQuarterMetrics(c *gin.Context) {
	metrics, err := h.db.GetQuarterMetrics()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quarter metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quarter metrics"})
		return
	}

	out := make([]gin.H, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, metricJSON(m))
	}
	c.JSON(http.StatusOK, out)
}

// GetQuarterMetric returns the metrics for a single cadastral quarter.
func (h *Handler) GetQuarterMetric(c *gin.Context) {
	cadnum := c.Param("cadnum")

	metric, err := h.db.GetQuarterMetric(cadnum)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quarter metric")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quarter metric"})
		return
	}
	if metric == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quarter not found"})
		return
	}

	c.JSON(http.StatusOK, metricJSON(*metric))
}

// GetBids returns all stored offer points.
func (h *Handler) GetBids(c *gin.Context) {
	bids, err := h.db.GetBids()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get bids")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bids"})
		return
	}

	c.JSON(http.StatusOK, bids)
}

// GetQuarters returns the city polygon collection filtered down to the
// quarters that have metrics in the database.
func (h *Handler) GetQuarters(c *gin.Context) {
	fc, err := geometry.LoadCollection(h.geojsonPath)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load quarter polygons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quarter polygons"})
		return
	}

	metrics, err := h.db.GetQuarterMetrics()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quarter metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get quarter metrics"})
		return
	}

	allowed := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		allowed[m.Quarter] = struct{}{}
	}

	c.JSON(http.StatusOK, geometry.FilterByQuarters(fc, allowed))
}

// metricJSON renders a metric with NaN fields as null, which
// encoding/json cannot do for float64 on its own.
func metricJSON(m models.QuarterMetric) gin.H {
	return gin.H{
		"quarter_cad_number": m.Quarter,
		"count":              m.Count,
		"arith_mean":         nullableFloat(m.ArithMean),
		"geom_mean":          nullableFloat(m.GeomMean),
		"median":             nullableFloat(m.Median),
	}
}

func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
