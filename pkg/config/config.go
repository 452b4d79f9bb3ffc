package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	HTTP struct {
		Port int
	}
	JWT struct {
		Secret     string
		TokenHours int
	}
}

func LoadConfig(filename string) (*Config, error) {
	if filename != "" {
		if err := loadEnvFile(filename); err != nil {
			return nil, err
		}
	}
	cfg := &Config{}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "ridepool_user")
	cfg.DB.Password = getEnv("DB_PASS", "ridepool_pass")
	cfg.DB.Database = getEnv("DB_NAME", "ridepool_db")
	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	cfg.RabbitMQ.Port = getEnvAsInt("RABBITMQ_PORT", 5672)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", "guest")
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASS", "guest")
	cfg.HTTP.Port = getEnvAsInt("HTTP_PORT", 3000)
	cfg.JWT.Secret = getEnv("JWT_SECRET", "dev-secret-change-me")
	cfg.JWT.TokenHours = getEnvAsInt("JWT_TOKEN_HOURS", 72)

	return cfg, nil
}

func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading env file: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
