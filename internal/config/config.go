package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string        `envconfig:"REDIS_URL" required:"true"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Локальное хранилище вложений чата
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	UploadBaseURL string `envconfig:"UPLOAD_BASE_URL" default:"/uploads"`
	MaxUploadSize int64  `envconfig:"MAX_UPLOAD_SIZE" default:"10485760"` // 10MB
}

// Load читает .env (если есть) и собирает конфигурацию из окружения
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
