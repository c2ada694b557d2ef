package main

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"safe-route-server/geodata"
	"safe-route-server/routing"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	if err := godotenv.Load(); err != nil {
		logger.Infow("no .env file found, using environment variables")
	}

	svc := routing.NewService()

	// The graph build is the dominant one-time cost. It runs in the
	// background so the server binds immediately; requests that arrive
	// first get a clean 503 from the service gate.
	go initEngine(svc, logger)

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	r.GET("/api/route", handleRoute(svc, logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "ready": svc.Ready()})
	})

	addr := getEnv("ADDR", ":8080")
	logger.Infow("safe route server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalw("server failed", "error", err)
	}
}

// initEngine builds (or restores) the road graph, loads the clinics,
// and publishes the router. A failure here leaves the process unable
// to ever serve routes, so it is fatal.
func initEngine(svc *routing.Service, logger *zap.SugaredLogger) {
	cfg := engineConfig(logger)

	roadsFile := getEnv("ROADS_FILE", "data/roads_subset.geojson")
	clinicsFile := getEnv("CLINICS_FILE", "data/clinics.geojson")
	snapshotFile := getEnv("GRAPH_SNAPSHOT", "data/road_graph.gob")

	started := time.Now()
	graph, err := geodata.LoadGraphSnapshot(snapshotFile)
	if err == nil {
		logger.Infow("graph restored from snapshot", "file", snapshotFile, "nodes", len(graph.Nodes))
	} else {
		if !os.IsNotExist(err) {
			logger.Warnw("graph snapshot unusable, rebuilding", "file", snapshotFile, "error", err)
		}
		segments, err := geodata.LoadRoadSegments(roadsFile, logger)
		if err != nil {
			logger.Fatalw("failed to load road data", "error", err)
		}
		graph, err = routing.BuildGraph(segments, logger)
		if err != nil {
			logger.Fatalw("failed to build road graph", "error", err)
		}
		if err := geodata.SaveGraphSnapshot(snapshotFile, graph); err != nil {
			logger.Warnw("failed to save graph snapshot", "file", snapshotFile, "error", err)
		}
	}

	clinics, err := geodata.LoadClinics(clinicsFile, logger)
	if err != nil {
		logger.Fatalw("failed to load clinics", "error", err)
	}

	router, err := routing.NewRouter(graph, clinics, cfg, logger)
	if err != nil {
		logger.Fatalw("failed to initialize router", "error", err)
	}

	svc.Activate(router)
	logger.Infow("routing engine ready", "elapsed", time.Since(started).String())
}

func engineConfig(logger *zap.SugaredLogger) routing.Config {
	cfg := routing.DefaultConfig()

	if path := os.Getenv("POLICY_CONFIG"); path != "" {
		policy, err := routing.LoadPolicyConfig(path)
		if err != nil {
			logger.Fatalw("failed to load policy config", "file", path, "error", err)
		}
		cfg.Policy = policy
	}

	if v := os.Getenv("MAX_SNAP_DISTANCE_M"); v != "" {
		if snap, err := strconv.ParseFloat(v, 64); err == nil && snap > 0 {
			cfg.MaxSnapMeters = snap
		} else {
			logger.Warnw("ignoring invalid MAX_SNAP_DISTANCE_M", "value", v)
		}
	}

	if v := os.Getenv("SOLVE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SolveTimeout = d
		} else {
			logger.Warnw("ignoring invalid SOLVE_TIMEOUT", "value", v)
		}
	}

	return cfg
}

func handleRoute(svc *routing.Service, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req routing.RouteRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Lat == 0 && req.Lon == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
			return
		}
		if req.Week < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week must be non-negative"})
			return
		}

		requestID := uuid.NewString()
		start := orb.Point{req.Lon, req.Lat}

		result, err := svc.BestRoute(c.Request.Context(), start, req.Week, req.HighRisk())
		if err != nil {
			status := statusFor(err)
			logger.Warnw("route request failed",
				"requestId", requestID,
				"lat", req.Lat, "lon", req.Lon,
				"week", req.Week, "risk", req.Risk,
				"status", status, "error", err,
			)
			c.JSON(status, gin.H{"error": err.Error(), "requestId": requestID})
			return
		}

		logger.Infow("route computed",
			"requestId", requestID,
			"kind", result.Kind,
			"distanceM", result.DistanceM,
			"cost", result.Cost,
			"clinic", result.Destination.Name,
		)
		c.JSON(http.StatusOK, routing.PrepareResponse(requestID, result))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, routing.ErrGraphNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, routing.ErrNoCoverage), errors.Is(err, routing.ErrNoPath):
		return http.StatusNotFound
	case errors.Is(err, routing.ErrRouteTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
