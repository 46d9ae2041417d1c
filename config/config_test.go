package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineAddr != DefaultEngineAddr {
		t.Errorf("EngineAddr = %q, want %q", cfg.EngineAddr, DefaultEngineAddr)
	}
	if cfg.Headless || cfg.Setup || cfg.Doctor || cfg.Version {
		t.Errorf("mode flags set by default: %+v", cfg)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("WHISPER_ENGINE_ADDR", "ws://10.0.0.5:9000")
	t.Setenv("WHISPER_HEADLESS", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineAddr != "ws://10.0.0.5:9000" {
		t.Errorf("EngineAddr = %q", cfg.EngineAddr)
	}
	if !cfg.Headless {
		t.Error("Headless = false, want env value")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("WHISPER_ENGINE_ADDR", "ws://10.0.0.5:9000")

	cfg, err := Load([]string{"-engine", "ws://127.0.0.1:7777", "-doctor"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineAddr != "ws://127.0.0.1:7777" {
		t.Errorf("EngineAddr = %q, want the flag value", cfg.EngineAddr)
	}
	if !cfg.Doctor {
		t.Error("Doctor = false")
	}
}

func TestDotEnvFileFillsUnsetVariables(t *testing.T) {
	dir := t.TempDir()
	content := "WHISPER_LOG_PATH=" + filepath.Join(dir, "logs") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogPath != filepath.Join(dir, "logs") {
		t.Errorf("LogPath = %q, want the .env value", cfg.LogPath)
	}
}

func TestDeveloperFlags(t *testing.T) {
	cfg, err := Load([]string{"-profile", "localhost:6060", "-crash"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile != "localhost:6060" {
		t.Errorf("Profile = %q", cfg.Profile)
	}
	if !cfg.Crash {
		t.Error("Crash = false")
	}
}

func TestUnknownFlagRejected(t *testing.T) {
	if _, err := Load([]string{"-no-such-flag"}); err == nil {
		t.Fatal("Load accepted an unknown flag")
	}
}
