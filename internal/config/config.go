package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server    ServerConfig
	RabbitMQ  RabbitMQConfig
	Consumer  ConsumerConfig
	Outbound  OutboundConfig
	Email     EmailConfig
	Directory DirectoryConfig
	Clinica   ClinicaConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type RabbitMQConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// ConsumerConfig describes the queue the notification listener consumes.
type ConsumerConfig struct {
	QueueNotificacoes string
	PrefetchCount     int
}

// OutboundConfig describes where per-recipient notifications are republished.
type OutboundConfig struct {
	ExchangeConsultas string
	// RoutingKeyPrefix is completed with the consultation id,
	// e.g. "notificacao.cliente." + consultaID.
	RoutingKeyPrefix string
}

type EmailConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FromName    string
	MaxAttempts int
}

type DirectoryConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// ClinicaConfig carries the static clinic display fields embedded in
// every enriched notification.
type ClinicaConfig struct {
	Nome     string
	Endereco string
	Telefone string
}

func Load() (*Config, error) {
	var missing []string

	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8082"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Host:     get("RABBITMQ_HOST"),
			Port:     get("RABBITMQ_PORT"),
			User:     get("RABBITMQ_USER"),
			Password: get("RABBITMQ_PASSWORD"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
		},
		Consumer: ConsumerConfig{
			QueueNotificacoes: getEnv("RABBITMQ_QUEUE_NOTIFICACOES", "consultas.notificacoes"),
			PrefetchCount:     getEnvInt("RABBITMQ_PREFETCH_COUNT", 10),
		},
		Outbound: OutboundConfig{
			ExchangeConsultas: getEnv("RABBITMQ_EXCHANGE_CONSULTAS", "consultas.exchange"),
			RoutingKeyPrefix:  getEnv("RABBITMQ_ROUTING_KEY_CLIENTE_PREFIX", "notificacao.cliente."),
		},
		Email: EmailConfig{
			Enabled:     getEnvBool("EMAIL_ENABLED", false),
			Host:        os.Getenv("EMAIL_SMTP_HOST"),
			Port:        getEnvInt("EMAIL_SMTP_PORT", 587),
			Username:    os.Getenv("EMAIL_SMTP_USERNAME"),
			Password:    os.Getenv("EMAIL_SMTP_PASSWORD"),
			From:        os.Getenv("EMAIL_FROM"),
			FromName:    getEnv("EMAIL_FROM_NAME", "MedSync"),
			MaxAttempts: getEnvInt("EMAIL_MAX_ATTEMPTS", 3),
		},
		Directory: DirectoryConfig{
			BaseURL:        get("CADASTRO_SERVICE_URL"),
			TimeoutSeconds: getEnvInt("CADASTRO_SERVICE_TIMEOUT_SECONDS", 5),
		},
		Clinica: ClinicaConfig{
			Nome:     getEnv("CLINICA_NOME", "MedSync"),
			Endereco: os.Getenv("CLINICA_ENDERECO"),
			Telefone: os.Getenv("CLINICA_TELEFONE"),
		},
	}

	if len(missing) > 0 {
		// RABBITMQ_URL supersedes the individual host/port/user variables.
		if config.RabbitMQ.URL != "" {
			missing = withoutRabbitHostVars(missing)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required environment variables: %v", missing)
		}
	}

	return config, nil
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	vhost := c.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, vhost)
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func withoutRabbitHostVars(missing []string) []string {
	rabbitVars := map[string]bool{
		"RABBITMQ_HOST":     true,
		"RABBITMQ_PORT":     true,
		"RABBITMQ_USER":     true,
		"RABBITMQ_PASSWORD": true,
	}
	remaining := make([]string, 0, len(missing))
	for _, key := range missing {
		if !rabbitVars[key] {
			remaining = append(remaining, key)
		}
	}
	return remaining
}
