package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config configuración del servidor, leída de archivos y variables de entorno
type Config struct {
	Env     string  `mapstructure:"env"`     // entorno actual (local, dev, production)
	HTTP    HTTP    `mapstructure:"http"`    // servidor HTTP
	Quiz    Quiz    `mapstructure:"quiz"`    // origen del documento del quiz
	Session Session `mapstructure:"session"` // sesión del navegador
	Redis   Redis   `mapstructure:"redis"`   // store Redis opcional
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

// Quiz de dónde obtiene el widget sus preguntas
type Quiz struct {
	SourceURL    string        `mapstructure:"source_url"`    // URL del único GET al montar
	DocumentPath string        `mapstructure:"document_path"` // JSON local servido en la ruta del documento
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // tiempo máximo de la carga al montar
}

type Session struct {
	TTL      time.Duration `mapstructure:"ttl"`
	HashKey  string        `mapstructure:"hash_key"`
	BlockKey string        `mapstructure:"block_key"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled indica si hay una dirección de Redis configurada
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Load lee la configuración de un .env opcional, de config/config.yaml y del entorno
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("quiz.source_url", "http://localhost:8080/Uw5CrX")
	v.SetDefault("quiz.document_path", "questions.json")
	v.SetDefault("quiz.fetch_timeout", "10s")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.hash_key", "")
	v.SetDefault("session.block_key", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.Quiz.SourceURL == "" {
		return nil, errors.New("quiz.source_url must not be empty")
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("session.ttl must be positive, got %s", cfg.Session.TTL)
	}

	return &cfg, nil
}
