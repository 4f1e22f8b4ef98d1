package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "cfguard_bot"

var ErrMissingTelegramToken = errors.New("telegram.token is required")

var loadConfigOnce sync.Once
var configInstance AppConfig

// LoadConfig reads the process configuration once from bot.yaml and the
// environment. It panics when the configuration is unusable.
func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		config, err := Load(viper.GetViper())
		if err != nil {
			panic(fmt.Errorf("fatal error config: %w", err))
		}
		configInstance = config
	})

	return configInstance
}

// Load resolves the configuration from v. The config file is optional.
func Load(v *viper.Viper) (AppConfig, error) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigName("bot")
	v.AddConfigPath("config")
	v.AddConfigPath("/config")
	setDefaults(v)

	// legacy variable names of the first deployments
	_ = v.BindEnv("telegram.token", "CFGUARD_BOT_TELEGRAM_TOKEN", "TG_TOKEN")
	_ = v.BindEnv("backend.url", "CFGUARD_BOT_BACKEND_URL", "API_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	allowed, err := parseChatIDs(v.GetStringSlice("telegram.allowed_chat_ids"))
	if err != nil {
		return AppConfig{}, err
	}

	config := AppConfig{
		General: GeneralConfig{
			LogLevel: v.GetString("general.log_level"),
		},
		Telegram: TelegramConfig{
			Token:          strings.TrimSpace(v.GetString("telegram.token")),
			BaseURL:        v.GetString("telegram.base_url"),
			PollTimeout:    v.GetDuration("telegram.poll_timeout"),
			AllowedChatIDs: allowed,
			OffsetFile:     v.GetString("telegram.offset_file"),
		},
		Backend: BackendConfig{
			URL:           v.GetString("backend.url"),
			EventTimeout:  v.GetDuration("backend.event_timeout"),
			QueryTimeout:  v.GetDuration("backend.query_timeout"),
			UploadTimeout: v.GetDuration("backend.upload_timeout"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			Path:   v.GetString("database.path"),
			DSN:    v.GetString("database.dsn"),
		},
		Imports: ImportsConfig{
			PendingTTL:    v.GetDuration("imports.pending_ttl"),
			SweepSchedule: v.GetString("imports.sweep_schedule"),
		},
		Reports: ReportsConfig{
			StagingDir: v.GetString("reports.staging_dir"),
			ChunkSize:  v.GetInt("reports.chunk_size"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			AllowedOrigins: v.GetStringSlice("http.allowed_origins"),
		},
		OTel: OTelConfig{
			Enabled:  v.GetBool("otel.enabled"),
			Endpoint: v.GetString("otel.endpoint"),
		},
	}

	if config.Telegram.Token == "" {
		return AppConfig{}, ErrMissingTelegramToken
	}

	switch config.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return AppConfig{}, fmt.Errorf("unsupported database.driver %q", config.Database.Driver)
	}
	if config.Database.Driver == DriverPostgres && config.Database.DSN == "" {
		return AppConfig{}, errors.New("database.dsn is required for postgres")
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", 30*time.Second)
	v.SetDefault("telegram.allowed_chat_ids", []string{})
	v.SetDefault("telegram.offset_file", "")
	v.SetDefault("backend.url", "http://127.0.0.1:8000")
	v.SetDefault("backend.event_timeout", time.Second)
	v.SetDefault("backend.query_timeout", 5*time.Second)
	v.SetDefault("backend.upload_timeout", 30*time.Second)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "cfguard.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("imports.pending_ttl", time.Duration(0))
	v.SetDefault("imports.sweep_schedule", "@every 1m")
	v.SetDefault("reports.staging_dir", "")
	v.SetDefault("reports.chunk_size", 4000)
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
}

// parseChatIDs accepts YAML lists as well as "1,2 3" from the environment.
func parseChatIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		for _, field := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing telegram.allowed_chat_ids %q: %w", field, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type AppConfig struct {
	General  GeneralConfig
	Telegram TelegramConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Imports  ImportsConfig
	Reports  ReportsConfig
	HTTP     HTTPConfig
	OTel     OTelConfig
}

type GeneralConfig struct {
	LogLevel string
}

type TelegramConfig struct {
	Token          string
	BaseURL        string
	PollTimeout    time.Duration
	AllowedChatIDs []int64
	OffsetFile     string
}

type BackendConfig struct {
	URL           string
	EventTimeout  time.Duration
	QueryTimeout  time.Duration
	UploadTimeout time.Duration
}

type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

type ImportsConfig struct {
	PendingTTL    time.Duration
	SweepSchedule string
}

type ReportsConfig struct {
	StagingDir string
	ChunkSize  int
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}
