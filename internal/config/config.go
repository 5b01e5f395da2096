package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	DBMaxConns               int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns               int32 `env:"DB_MIN_CONNS" envDefault:"1"`
	DBConnMaxLifetimeMinutes int   `env:"DB_CONN_MAX_LIFETIME_MINUTES" envDefault:"30"`
	DBConnMaxIdleMinutes     int   `env:"DB_CONN_MAX_IDLE_MINUTES" envDefault:"5"`
	DBConnectTimeoutSeconds  int   `env:"DB_CONNECT_TIMEOUT_SECONDS" envDefault:"5"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	PayPalClientID  string `env:"PAYPAL_CLIENT_ID,required"`
	PayPalSecret    string `env:"PAYPAL_CLIENT_SECRET,required"`
	PayPalMode      string `env:"PAYPAL_MODE" envDefault:"sandbox"`
	PayPalWebhookID string `env:"PAYPAL_WEBHOOK_ID,required"`

	AIAPIKey         string `env:"AI_API_KEY,required"`
	AIBaseURL        string `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AIModel          string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	AIEmbeddingModel string `env:"AI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// Límite mensual de búsquedas para el plan free. Un único valor de
	// configuración; ningún otro punto del código fija un límite.
	FreeMonthlySearchLimit int `env:"FREE_MONTHLY_SEARCH_LIMIT" envDefault:"100"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
