package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SamayGala/StockGPT/internal/assistant"
	"github.com/SamayGala/StockGPT/internal/config"
	"github.com/SamayGala/StockGPT/internal/handlers"
	"github.com/SamayGala/StockGPT/internal/kite"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults or environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS for the dashboard frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	h := &handlers.Handler{}

	if cfg.ZerodhaConfigured() {
		h.Market = kite.New(cfg.ZerodhaAPIKey, cfg.ZerodhaAccessToken)
		log.Println("Zerodha Kite Connect initialized")
	} else {
		log.Println("Zerodha credentials missing; brokerage endpoints will report unconfigured")
	}

	if cfg.OpenAIAPIKey != "" {
		h.Assistant = assistant.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("Assistant initialized with model %s", cfg.OpenAIModel)
	} else {
		log.Println("OPENAI_API_KEY missing; chat endpoint will report unconfigured")
	}

	h.Register(router)

	log.Println("Server starting on http://localhost:" + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
