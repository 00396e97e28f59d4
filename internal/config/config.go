package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pmattes/x3270ifSimple/x3270protocol"
)

// FileName is the configuration file looked for in the home directory.
const FileName = ".x3270if.toml"

// Config holds the CLI settings.
type Config struct {
	// EmulatorPath is the emulator StartEmulator launches.
	EmulatorPath string
	// ExtraOptions are appended to the emulator command line.
	ExtraOptions []string
	// Host is a host specification to connect to after startup.
	Host string
	// ScriptPort, when non-zero, attaches to an emulator already listening
	// on this loopback port instead of starting one.
	ScriptPort int
	Debug      bool
	LogLevel   string
	LogFile    string
	// HistoryFile is the REPL history file.
	HistoryFile string
}

type fileConfig struct {
	EmulatorPath string   `toml:"emulator_path"`
	ExtraOptions []string `toml:"extra_options"`
	Host         string   `toml:"host"`
	ScriptPort   int      `toml:"script_port"`
	Debug        bool     `toml:"debug"`
	LogLevel     string   `toml:"log_level"`
	LogFile      string   `toml:"log_file"`
	HistoryFile  string   `toml:"history_file"`
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		EmulatorPath: x3270protocol.DefaultEmulatorPath,
		LogLevel:     "info",
		HistoryFile:  filepath.Join(homeDir(), ".x3270if_history"),
	}
}

// DefaultPath returns the configuration file in the home directory.
func DefaultPath() string {
	return filepath.Join(homeDir(), FileName)
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("emulator_path") {
		if p := strings.TrimSpace(raw.EmulatorPath); p != "" {
			cfg.EmulatorPath = p
		}
	}
	if meta.IsDefined("extra_options") {
		cfg.ExtraOptions = raw.ExtraOptions
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("script_port") {
		cfg.ScriptPort = raw.ScriptPort
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_file") {
		cfg.LogFile = strings.TrimSpace(raw.LogFile)
	}
	if meta.IsDefined("history_file") {
		cfg.HistoryFile = strings.TrimSpace(raw.HistoryFile)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later.
func Validate(cfg Config) error {
	if cfg.Host != "" {
		if _, err := x3270protocol.ParseHostSpecification(cfg.Host); err != nil {
			return fmt.Errorf("host: %w", err)
		}
	}
	if cfg.ScriptPort < 0 || cfg.ScriptPort > 65535 {
		return fmt.Errorf("script_port %d out of range", cfg.ScriptPort)
	}
	if strings.TrimSpace(cfg.EmulatorPath) == "" {
		return errors.New("emulator_path is empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
