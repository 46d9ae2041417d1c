// Package config resolves process configuration. Precedence, lowest to
// highest: built-in defaults, .env file, WHISPER_* environment, flags.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultEngineAddr is where the engine daemon listens when nothing
// overrides it.
const DefaultEngineAddr = "ws://127.0.0.1:8765"

type Config struct {
	EngineAddr string `env:"WHISPER_ENGINE_ADDR"`
	LogPath    string `env:"WHISPER_LOG_PATH"`
	Headless   bool   `env:"WHISPER_HEADLESS"`

	// Flag-only modes.
	Setup   bool
	Doctor  bool
	Version bool
	Overlay bool

	// Developer switches. Profile serves pprof on the given address; Crash
	// panics right after the crash log is armed.
	Profile string
	Crash   bool
}

func Defaults() *Config {
	return &Config{EngineAddr: DefaultEngineAddr}
}

// Load builds the configuration from args (os.Args[1:] in main). A missing
// .env is not an error.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("whisper", flag.ContinueOnError)
	fs.StringVar(&cfg.EngineAddr, "engine", cfg.EngineAddr, "engine websocket address")
	fs.StringVar(&cfg.LogPath, "logpath", cfg.LogPath, "directory for log files")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without connecting to the engine")
	fs.BoolVar(&cfg.Setup, "setup", false, "pick the capture device at startup")
	fs.BoolVar(&cfg.Doctor, "doctor", false, "check the environment and exit")
	fs.BoolVar(&cfg.Version, "version", false, "print version and exit")
	fs.BoolVar(&cfg.Overlay, "overlay", false, "show the desktop recording indicator (needs the gui build)")
	fs.StringVar(&cfg.Profile, "profile", "", "serve pprof on this address (e.g. localhost:6060)")
	fs.BoolVar(&cfg.Crash, "crash", false, "panic immediately to test crash logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
