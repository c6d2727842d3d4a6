package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "openadr/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	OAuth    sharedConfig.OAuthConfig    `mapstructure:"oauth"`
	Mdns     sharedConfig.MdnsConfig     `mapstructure:"mdns"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables. The config
// file is optional; every value can come from the environment.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("OPENADR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindFlatEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// bindFlatEnv binds the conventional flat environment variables used by VTN
// deployments in addition to the OPENADR_* prefixed form.
func bindFlatEnv() {
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("oauth.base64_secret", "OAUTH_BASE64_SECRET")
	_ = viper.BindEnv("oauth.key_type", "OAUTH_KEY_TYPE")
	_ = viper.BindEnv("oauth.jwks_location", "OAUTH_JWKS_LOCATION")
	_ = viper.BindEnv("mdns.service_type", "MDNS_SERVICE_TYPE")
	_ = viper.BindEnv("mdns.server_name", "MDNS_SERVER_NAME")
	_ = viper.BindEnv("mdns.host_name", "MDNS_HOST_NAME")
	_ = viper.BindEnv("mdns.ip_address", "MDNS_IP_ADDRESS")
	_ = viper.BindEnv("mdns.base_path", "MDNS_BASE_PATH")
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.url", "sqlite://openadr.db")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("oauth.internal_enabled", true)
	viper.SetDefault("oauth.base64_secret", "")
	viper.SetDefault("oauth.key_type", "HMAC")
	viper.SetDefault("oauth.jwks_location", "")
	viper.SetDefault("oauth.ven_writes", "open")

	viper.SetDefault("mdns.enabled", false)
	viper.SetDefault("mdns.service_type", "_openadr3._tcp.local.")
	viper.SetDefault("mdns.server_name", "openadr-vtn")
	viper.SetDefault("mdns.host_name", "")
	viper.SetDefault("mdns.ip_address", "")
	viper.SetDefault("mdns.base_path", "")
}
