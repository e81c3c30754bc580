package config

import (
	"strings"

	"monitor/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Environment          string
	ServerPort           int
	BaseURL              string
	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int
	QAAuditorEmail       string
	AllowedEmailDomains  []string
	PrototypeName        string
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DATABASE_DB_PATH", "data/monitor.db")
	viper.SetDefault("DATABASE_CACHE_ADDRESS", "localhost")
	viper.SetDefault("DATABASE_CACHE_PORT", 6379)
	viper.SetDefault("QA_AUDITOR_EMAIL", "")
	viper.SetDefault("ALLOWED_EMAIL_DOMAINS", "")
	viper.SetDefault("PROTOTYPE_NAME", "")

	config := Config{
		Environment:          viper.GetString("ENVIRONMENT"),
		ServerPort:           viper.GetInt("SERVER_PORT"),
		BaseURL:              strings.TrimRight(viper.GetString("BASE_URL"), "/"),
		DatabaseDbPath:       viper.GetString("DATABASE_DB_PATH"),
		DatabaseCacheAddress: viper.GetString("DATABASE_CACHE_ADDRESS"),
		DatabaseCachePort:    viper.GetInt("DATABASE_CACHE_PORT"),
		QAAuditorEmail:       viper.GetString("QA_AUDITOR_EMAIL"),
		AllowedEmailDomains:  splitDomains(viper.GetString("ALLOWED_EMAIL_DOMAINS")),
		PrototypeName:        viper.GetString("PROTOTYPE_NAME"),
	}

	log.Info("Configuration loaded", "environment", config.Environment, "port", config.ServerPort)
	return config, nil
}

func splitDomains(raw string) []string {
	if raw == "" {
		return nil
	}
	var domains []string
	for _, domain := range strings.Split(raw, ",") {
		domain = strings.TrimSpace(domain)
		if domain != "" {
			domains = append(domains, domain)
		}
	}
	return domains
}

// EmailAllowed reports whether an address may register, per the
// configured allowlist. An empty allowlist admits everyone.
func (c Config) EmailAllowed(email string) bool {
	if len(c.AllowedEmailDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, allowed := range c.AllowedEmailDomains {
		if domain == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
