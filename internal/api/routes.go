package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quartermaps/config"
	"quartermaps/internal/database"
)

func SetupRoutes(router *gin.Engine, db *database.Database, cfg *config.Config, logger *logrus.Logger) {
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	handler := NewHandler(db, cfg.GeoJSONPath("78_filtered.geojson"), logger)

	api := router.Group("/api")
	{
		api.GET("/metrics", handler.GetQuarterMetrics)
		api.GET("/metrics/:cadnum", handler.GetQuarterMetric)
		api.GET("/bids", handler.GetBids)
		api.GET("/quarters", handler.GetQuarters)
	}

	// Rendered map pages are served as-is.
	router.Static("/maps", cfg.MapsDir)
}
