package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Matching MatchingConfig
	Batch    BatchConfig
	Notifier NotifierConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey string
}

// MatchingConfig holds the scoring knobs. Criteria weights must sum to 100
// so that every criteria score is explainable as a weighted sum of exactly
// four named parts.
type MatchingConfig struct {
	SkillsWeight     float64
	ExperienceWeight float64
	EducationWeight  float64
	LocationWeight   float64
	TopK             int
	CandidateCap     int
	RetrieverTimeout time.Duration
}

type BatchConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type NotifierConfig struct {
	WebhookURL string
	BufferSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "talent_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "talent_matcher_profiles"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Matching: MatchingConfig{
			SkillsWeight:     getEnvAsFloat("MATCH_SKILLS_WEIGHT", 40),
			ExperienceWeight: getEnvAsFloat("MATCH_EXPERIENCE_WEIGHT", 30),
			EducationWeight:  getEnvAsFloat("MATCH_EDUCATION_WEIGHT", 15),
			LocationWeight:   getEnvAsFloat("MATCH_LOCATION_WEIGHT", 15),
			TopK:             getEnvAsInt("MATCH_TOP_K", 100),
			CandidateCap:     getEnvAsInt("MATCH_CANDIDATE_CAP", 1000),
			RetrieverTimeout: getEnvAsDuration("MATCH_RETRIEVER_TIMEOUT", "5s"),
		},
		Batch: BatchConfig{
			Concurrency:  getEnvAsInt("BATCH_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("BATCH_POLL_INTERVAL", "10s"),
		},
		Notifier: NotifierConfig{
			WebhookURL: getEnv("NOTIFIER_WEBHOOK_URL", ""),
			BufferSize: getEnvAsInt("NOTIFIER_BUFFER_SIZE", 256),
		},
	}
}

// Validate rejects weight sets that do not sum to 100.
func (m *MatchingConfig) Validate() error {
	sum := m.SkillsWeight + m.ExperienceWeight + m.EducationWeight + m.LocationWeight
	if sum != 100 {
		return fmt.Errorf("criteria weights must sum to 100, got %.2f", sum)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
