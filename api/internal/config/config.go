package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port            string
	CORSAllowOrigin string

	Engine       string
	SolveTimeout time.Duration

	GeminiAPIKey string
	GeminiModel  string

	VertexProject  string
	VertexLocation string
	VertexModel    string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	DeepseekAPIKey string
	DeepseekModel  string

	YCOAuthToken string
	YCFolderID   string
	YandexModel  string

	TelegramBotToken string
	WebhookURL       string

	DatabaseURL      string
	JournalRetention time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		Engine:       strings.ToLower(getEnv("LLM_ENGINE", "gemini")),
		SolveTimeout: getDuration("SOLVE_TIMEOUT", 90*time.Second),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),

		VertexProject:  getEnv("VERTEX_PROJECT", ""),
		VertexLocation: getEnv("VERTEX_LOCATION", ""),
		VertexModel:    getEnv("VERTEX_MODEL", "gemini-2.5-pro"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		DeepseekAPIKey: getEnv("DEEPSEEK_API_KEY", ""),
		DeepseekModel:  getEnv("DEEPSEEK_MODEL", "deepseek-chat"),

		YCOAuthToken: getEnv("YC_OAUTH_TOKEN", ""),
		YCFolderID:   getEnv("YC_FOLDER_ID", ""),
		YandexModel:  getEnv("YANDEX_MODEL", "yandexgpt/latest"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		DatabaseURL:      resolveDSN(),
		JournalRetention: getDuration("JOURNAL_RETENTION", 90*24*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("MOBTAKIR_LOG_FILE", ""),
	}
}

// Require reports the first of the named env keys that has no value.
func (c *Config) Require(keys ...string) error {
	values := map[string]string{
		"TELEGRAM_BOT_TOKEN": c.TelegramBotToken,
		"GEMINI_API_KEY":     c.GeminiAPIKey,
		"VERTEX_PROJECT":     c.VertexProject,
		"VERTEX_LOCATION":    c.VertexLocation,
		"OPENAI_API_KEY":     c.OpenAIAPIKey,
		"DEEPSEEK_API_KEY":   c.DeepseekAPIKey,
		"YC_OAUTH_TOKEN":     c.YCOAuthToken,
		"YC_FOLDER_ID":       c.YCFolderID,
		"DATABASE_URL":       c.DatabaseURL,
	}
	for _, k := range keys {
		v, known := values[k]
		if !known {
			return fmt.Errorf("unknown config key %s", k)
		}
		if v == "" {
			return fmt.Errorf("missing required env %s", k)
		}
	}
	return nil
}

// EngineKeys lists the env keys the named engine cannot start without.
func EngineKeys(engine string) []string {
	switch engine {
	case "gemini":
		return []string{"GEMINI_API_KEY"}
	case "vertex":
		return []string{"VERTEX_PROJECT", "VERTEX_LOCATION"}
	case "gpt", "openai":
		return []string{"OPENAI_API_KEY"}
	case "deepseek":
		return []string{"DEEPSEEK_API_KEY"}
	case "yandex":
		return []string{"YC_OAUTH_TOKEN", "YC_FOLDER_ID"}
	default:
		return nil
	}
}

// resolveDSN prefers DATABASE_URL and falls back to POSTGRES_*/PG* variables.
// An empty result disables the solve journal.
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" {
		return ""
	}
	user := getEnv("POSTGRES_USER", "mobtakir")
	host := getEnv("PGHOST", "db")
	port := getEnv("PGPORT", "5432")
	db := getEnv("POSTGRES_DB", "mobtakir")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary renders a DSN without its password for logs.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
