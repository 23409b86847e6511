package config

import (
	"fmt"
	"time"
)

// MySQLConfig configures the primary store and optional read replicas.
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
	Params   string `json:"params" yaml:"params" mapstructure:"params"` // extra DSN query, e.g. charset=utf8mb4&parseTime=True

	// Replicas are full DSNs routed through dbresolver for reads.
	Replicas []string `json:"replicas" yaml:"replicas" mapstructure:"replicas"`

	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns" mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns" mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime" mapstructure:"connMaxLifetime"`
	SlowThreshold   time.Duration `json:"slowThreshold" yaml:"slowThreshold" mapstructure:"slowThreshold"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate" mapstructure:"autoMigrate"`
}

// DSN builds the go-sql-driver/mysql connection string for the primary.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, c.Params)
}

// DefaultMySQLConfig returns local development defaults (aligned with docker compose service names).
func DefaultMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Host:            "mysql",
		Port:            3306,
		User:            "vkinder",
		Password:        "vkinder",
		Database:        "vkinder",
		Params:          "charset=utf8mb4&parseTime=True&loc=Local",
		MaxOpenConns:    30,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   200 * time.Millisecond,
		AutoMigrate:     true,
	}
}
