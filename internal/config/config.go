package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Canvas platform
	CanvasBaseURL string
	// LLM configuration (request headers may override all three)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	// Agent flags
	AgentVerbose bool
	// Static frontend bundle directory (served when it exists)
	FrontendDir string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8000"),
		Environment:   getEnv("ENVIRONMENT", "dev"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		CanvasBaseURL: getEnv("CANVAS_BASE_URL", ""),
		LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:     getEnv("LLM_API_KEY", ""),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		AgentVerbose:  getEnv("AGENT_VERBOSE", "false") == "true",
		FrontendDir:   getEnv("FRONTEND_DIR", "frontend"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
