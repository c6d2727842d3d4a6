// Package config defines the typed configuration structures shared across
// the application. Values are populated by the viper loader in
// internal/infrastructure/config.
package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode string `mapstructure:"mode"`
}

func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig describes the storage backend. URL accepts either a MySQL
// DSN ("user:pass@tcp(host:port)/db") or a sqlite path ("sqlite://file.db").
type DatabaseConfig struct {
	URL             string `mapstructure:"url" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// OAuthClientConfig is one registered client for the internal OAuth feature.
// SecretHash is a bcrypt hash of the client secret.
type OAuthClientConfig struct {
	ClientID   string   `mapstructure:"client_id"`
	SecretHash string   `mapstructure:"secret_hash"`
	Scopes     []string `mapstructure:"scopes"`
}

type OAuthConfig struct {
	// InternalEnabled turns on the POST /auth/token issuance endpoint.
	InternalEnabled bool `mapstructure:"internal_enabled"`
	// Base64Secret is the symmetric JWT key, base64-encoded, at least 32
	// bytes after decoding. When empty a random per-process secret is used
	// and a warning is logged.
	Base64Secret string `mapstructure:"base64_secret"`
	// KeyType selects JWKS parsing for external OAuth: HMAC, RSA, EC or ED.
	KeyType string `mapstructure:"key_type" validate:"omitempty,oneof=HMAC RSA EC ED"`
	// JWKSLocation is the URL of the external provider's JWKS document.
	JWKSLocation string `mapstructure:"jwks_location"`
	// VenWrites selects who may update or delete VENs: "open" admits any
	// caller holding the write scope, "owner" restricts writes to BL
	// callers and the owning client.
	VenWrites string              `mapstructure:"ven_writes" validate:"omitempty,oneof=open owner"`
	Clients   []OAuthClientConfig `mapstructure:"clients"`
}

type MdnsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceType string `mapstructure:"service_type"`
	ServerName  string `mapstructure:"server_name"`
	HostName    string `mapstructure:"host_name"`
	IPAddress   string `mapstructure:"ip_address"`
	BasePath    string `mapstructure:"base_path"`
}
