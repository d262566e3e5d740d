package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config configuration de l'application
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	Vote   VoteConfig
	Proxy  ProxyConfig
	CORS   CORSConfig
	Redis  RedisConfig
}

// ServerConfig serveur HTTP
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig authentification
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	GoogleClientID     string
	SecureCookie       bool
}

// VoteConfig vote électronique
type VoteConfig struct {
	// TokenSecret clé HMAC des jetons de vote; jamais le secret JWT
	TokenSecret string
	TokenExpiry time.Duration
	// ResultCacheTTL durée de vie du cache de résultat d'une motion
	ResultCacheTTL time.Duration
}

// ProxyConfig délégations de pouvoir
type ProxyConfig struct {
	// ReceiverCap plafond de mandants par mandataire
	ReceiverCap int
	// RemotePresenceTTL durée de validité d'un battement de présence
	// distancielle
	RemotePresenceTTL time.Duration
}

// CORSConfig CORS
type CORSConfig struct {
	AllowOrigins string
	AllowHeaders string
}

// RedisConfig Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load charge la configuration depuis l'environnement
func Load() *Config {
	// .env optionnel
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment variables")
	}

	jwtSecret := getRequiredEnv("JWT_SECRET")
	tokenSecret := getRequiredEnv("VOTE_TOKEN_SECRET")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			AccessTokenExpiry:  getDuration("ACCESS_TOKEN_EXPIRY", 1*time.Hour),
			RefreshTokenExpiry: getDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			SecureCookie:       getBool("SECURE_COOKIE", false),
		},
		Vote: VoteConfig{
			TokenSecret:    tokenSecret,
			TokenExpiry:    getDuration("VOTE_TOKEN_EXPIRY", 2*time.Hour),
			ResultCacheTTL: getDuration("RESULT_CACHE_TTL", 30*time.Second),
		},
		Proxy: ProxyConfig{
			ReceiverCap:       getInt("PROXY_RECEIVER_CAP", 99),
			RemotePresenceTTL: getDuration("REMOTE_PRESENCE_TTL", 90*time.Second),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
			AllowHeaders: getEnv("CORS_ALLOW_HEADERS", "Origin, Content-Type, Accept"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
	}
}

// getRequiredEnv variable obligatoire (Fatal si absente)
func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("🚨 CRITICAL: Required environment variable %s is not set!", key)
	}
	return value
}

// getEnv variable avec valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt variable entière
func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getBool variable booléenne
func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getDuration variable durée; un nombre nu est lu en secondes
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if !strings.ContainsAny(value, "smh") {
			if secs, err := strconv.Atoi(value); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
