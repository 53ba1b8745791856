package cmd

import (
	"log"
	"os"
	"strconv"

	"tunesmith/config"
	"tunesmith/genai"
	"tunesmith/handlers"
	"tunesmith/middleware"
	"tunesmith/services"
	"tunesmith/websocket"

	"github.com/gin-gonic/gin"
)

// Services bundles the long-lived objects behind the HTTP shell
type Services struct {
	Hub          websocket.Hub
	Orchestrator *services.Orchestrator
	Runner       services.BatchRunner
}

// NewServices wires the orchestrator, batch runner and hub around generator.
// Outcome notifications go to the log and to every "all" websocket client.
func NewServices(generator services.Generator) *Services {
	hub := websocket.NewHub()
	notifier := services.MultiNotifier{services.LogNotifier{}, hub}

	orchestrator := services.NewOrchestrator(
		services.NewScanner(config.ReadTagsAtScan()),
		services.NewSuggestionClient(generator),
		notifier,
	)

	return &Services{
		Hub:          hub,
		Orchestrator: orchestrator,
		Runner:       services.NewBatchRunner(orchestrator, hub),
	}
}

// NewGenerator builds the suggestion service client from the environment
func NewGenerator() *genai.Client {
	return genai.NewClient(genai.Config{
		Endpoint: config.GetEndpoint(),
		Model:    config.GetModel(),
		APIKey:   config.GetAPIKey(),
		Timeout:  config.GetTimeout(),
	})
}

// StartWebServer starts the web server
func StartWebServer(port int) {
	// Set production mode if not specified
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if config.GetAPIKey() == "" {
		log.Printf("Warning: GENAI_API_KEY is not set, suggestion requests will fail")
	}

	svc := NewServices(NewGenerator())
	go svc.Hub.Run()
	defer svc.Hub.Stop()

	r := NewRouter(svc)

	portStr := strconv.Itoa(config.GetServerPort(port))
	log.Printf("Tunesmith web server starting on port %s", portStr)
	if err := r.Run(":" + portStr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(svc *Services) *gin.Engine {
	candidateHandler := handlers.NewCandidateHandler(svc.Orchestrator, svc.Runner)
	batchHandler := handlers.NewBatchHandler(svc.Runner, svc.Hub)
	healthHandler := handlers.NewHealthHandler(svc.Orchestrator)
	settingsHandler := handlers.NewSettingsHandler()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logging())
	r.Use(middleware.Security())

	setupRoutes(r, candidateHandler, batchHandler, healthHandler, settingsHandler)
	return r
}

// setupRoutes configures all the HTTP routes
func setupRoutes(r *gin.Engine, candidateHandler *handlers.CandidateHandler, batchHandler *handlers.BatchHandler, healthHandler *handlers.HealthHandler, settingsHandler *handlers.SettingsHandler) {
	// Health check endpoint
	r.GET("/health", healthHandler.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/status", healthHandler.APIStatus)

		// Folder and selection
		apiGroup.POST("/folder", candidateHandler.LoadFolder)
		candidatesGroup := apiGroup.Group("/candidates")
		{
			candidatesGroup.GET("", candidateHandler.ListCandidates)
			candidatesGroup.POST("/toggle-all", candidateHandler.ToggleAll)
			candidatesGroup.POST("/:id/toggle", candidateHandler.Toggle)
			candidatesGroup.POST("/:id/rename", candidateHandler.RenameOne)
		}

		// Batch runs
		batchesGroup := apiGroup.Group("/batches")
		{
			batchesGroup.POST("", batchHandler.CreateBatch)
			batchesGroup.GET("", batchHandler.GetAllJobs)
			batchesGroup.GET("/:batchId", batchHandler.GetJob)
			batchesGroup.DELETE("/:batchId", batchHandler.CancelJob)
		}

		// WebSocket endpoints for real-time progress
		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/batches/:batchId", batchHandler.HandleWebSocketConnection)
			wsGroup.GET("/batches", batchHandler.HandleWebSocketAllConnection)
		}

		// Settings endpoints
		apiGroup.GET("/settings", settingsHandler.GetSettings)
		apiGroup.POST("/settings", settingsHandler.UpdateSettings)
	}
}
