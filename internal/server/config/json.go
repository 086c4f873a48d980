package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/identity/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Only the
// keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	HashCost                     *int            `json:"hash_cost"`
	AccessTokenSecret            *string         `json:"access_token_secret"`
	RefreshTokenSecret           *string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	RevealConflictField          *bool           `json:"reveal_conflict_field"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson loads path (if not empty) and copies every key it sets into
// config. An unreadable file or invalid JSON panics.
func parseJson(config *Config, path string) {
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.HashCost != nil {
		config.HashCost = *c.HashCost
	}
	if c.AccessTokenSecret != nil {
		config.AccessTokenSecret = *c.AccessTokenSecret
	}
	if c.RefreshTokenSecret != nil {
		config.RefreshTokenSecret = *c.RefreshTokenSecret
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RevealConflictField != nil {
		config.RevealConflictField = *c.RevealConflictField
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
}
