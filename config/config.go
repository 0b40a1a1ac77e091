// Package config loads server and client configuration from TOML files:
// general/storage/tls/log for the server, and general/tls for the
// client.
/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Rotation names a log rotation policy.
type Rotation string

const (
	RotationHourly Rotation = "hourly"
	RotationDaily  Rotation = "daily"
	RotationNever  Rotation = "never"
)

// GeneralConfig carries the listen/dial address shared by server and client.
type GeneralConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig names where logs go and the rotation cadence. The cadence
// drives a periodic log flush scheduled through the hk package; no log
// file is rotated by this module itself.
type LogConfig struct {
	Path     string   `toml:"path"`
	Rotation Rotation `toml:"rotation"`
}

// StorageConfig selects a storage backend. An empty Path means an
// in-memory table; a non-empty Path opens the on-disk bbolt backend at
// that path.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ServerTLSConfig names the server's certificate material. Cert/Key/CA are
// file paths passed to whatever TLS-config constructor the caller uses;
// certificate loading itself is out of scope for this package.
type ServerTLSConfig struct {
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
	CA   string `toml:"ca"`
}

// ClientTLSConfig names the client's expected server identity and,
// optionally, its own client certificate for mutual TLS.
type ClientTLSConfig struct {
	Domain       string `toml:"domain"`
	IdentityCert string `toml:"identity_cert"`
	IdentityKey  string `toml:"identity_key"`
	CA           string `toml:"ca"`
}

// ServerConfig is the top-level server configuration file shape.
type ServerConfig struct {
	General GeneralConfig   `toml:"general"`
	Storage StorageConfig   `toml:"storage"`
	TLS     ServerTLSConfig `toml:"tls"`
	Log     LogConfig       `toml:"log"`
}

// ClientConfig is the top-level client configuration file shape.
type ClientConfig struct {
	General GeneralConfig   `toml:"general"`
	TLS     ClientTLSConfig `toml:"tls"`
}

// LoadServerConfig reads and parses a server configuration file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: load server config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadClientConfig reads and parses a client configuration file.
func LoadClientConfig(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: load client config %s: %w", path, err)
	}
	return &cfg, nil
}
