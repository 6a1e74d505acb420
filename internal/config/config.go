// 환경변수 기반 설정 로딩
//
// 환경변수:
//   - PORT: HTTP 서버 포트 (default: 8080)
//   - AI_API_KEY: Gemini API 키 (없으면 추론 기능이 degraded 모드로 동작)
//   - GENAI_MODEL: 추론 모델 (default: gemini-2.0-flash)
//   - HEAL_THINK_SECONDS: 진단 전 thinking 대기 시간 (default: 2)
//   - HEAL_ACTION_SECONDS: 복구 조치 실행 대기 시간 (default: 4)
//   - INGEST_MAX_CHARS: parseLogs에 전달하는 원본 텍스트 최대 길이 (default: 10000)

package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Healing  HealingConfig
	Ingest   IngestConfig
	Slack    SlackConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port string
}

type AIConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type HealingConfig struct {
	ThinkSeconds  int
	ActionSeconds int
}

type IngestConfig struct {
	MaxChars int
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

type AuthConfig struct {
	JWTSecret      string
	JWTAccessTTL   string
	JWTRefreshTTL  string
	AllowSignup    string
	AdminUsername  string
	AdminPassword  string
	CookieSecure   string
	CookieSameSite string
	CookiePath     string
	CookieDomain   string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8080"),
		},
		AI: AIConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			Model:          getenv("GENAI_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getenv("GENAI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		Healing: HealingConfig{
			ThinkSeconds:  getenvInt("HEAL_THINK_SECONDS", 2),
			ActionSeconds: getenvInt("HEAL_ACTION_SECONDS", 4),
		},
		Ingest: IngestConfig{
			MaxChars: getenvInt("INGEST_MAX_CHARS", 10000),
		},
		Slack: SlackConfig{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTAccessTTL:   getenv("JWT_ACCESS_TTL", "1h"),
			JWTRefreshTTL:  getenv("JWT_REFRESH_TTL", "720h"),
			AllowSignup:    os.Getenv("ALLOW_SIGNUP"),
			AdminUsername:  os.Getenv("ADMIN_USERNAME"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
			CookieSecure:   os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite: os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookiePath:     os.Getenv("AUTH_COOKIE_PATH"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
