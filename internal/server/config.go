package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jerynmathew/thurup/internal/deck"
	"github.com/jerynmathew/thurup/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameDefaults   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	DBPath   string `hcl:"db_path,optional"`
}

// GameDefaults seeds new games that omit a setting in the create request.
type GameDefaults struct {
	Mode            string `hcl:"mode,optional"`
	Seats           int    `hcl:"seats,optional"`
	MinBid          int    `hcl:"min_bid,optional"`
	HiddenTrumpMode string `hcl:"hidden_trump_mode,optional"`
	AutoStart       bool   `hcl:"auto_start,optional"`
	BotDelayMs      int    `hcl:"bot_delay_ms,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			DBPath:   "thurup.db",
		},
		Game: GameDefaults{
			Mode:            string(deck.Mode28),
			Seats:           4,
			MinBid:          14,
			HiddenTrumpMode: string(game.RevealOnFirstNonfollow),
			AutoStart:       true,
			BotDelayMs:      500,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultServerConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.DBPath == "" {
		config.Server.DBPath = defaults.Server.DBPath
	}
	if config.Game.Mode == "" {
		config.Game.Mode = defaults.Game.Mode
	}
	if config.Game.Seats == 0 {
		config.Game.Seats = defaults.Game.Seats
	}
	if config.Game.MinBid == 0 {
		config.Game.MinBid = defaults.Game.MinBid
	}
	if config.Game.HiddenTrumpMode == "" {
		config.Game.HiddenTrumpMode = defaults.Game.HiddenTrumpMode
	}
	if config.Game.BotDelayMs == 0 {
		config.Game.BotDelayMs = defaults.Game.BotDelayMs
	}

	if !deck.Mode(config.Game.Mode).Valid() {
		return nil, fmt.Errorf("invalid game mode %q", config.Game.Mode)
	}
	if !game.RevealMode(config.Game.HiddenTrumpMode).Valid() {
		return nil, fmt.Errorf("invalid hidden trump mode %q", config.Game.HiddenTrumpMode)
	}
	return &config, nil
}

// SessionConfig converts the defaults block to a game config.
func (g GameDefaults) SessionConfig() game.Config {
	return game.Config{
		Mode:       deck.Mode(g.Mode),
		Seats:      g.Seats,
		RevealMode: game.RevealMode(g.HiddenTrumpMode),
		MinBid:     g.MinBid,
	}
}

// ListenAddr joins address and port for http.ListenAndServe.
func (s ServerSettings) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}
