package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestVersionTriple(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
		ok   bool
	}{
		{"1.2.3", [3]int{1, 2, 3}, true},
		{"v0.1.5", [3]int{0, 1, 5}, true},
		{"v1.0.0-dirty", [3]int{1, 0, 0}, true},
		{"v2.3.4-rc1+build", [3]int{2, 3, 4}, true},
		{"dev", [3]int{}, false},
		{"", [3]int{}, false},
		{"1.2", [3]int{}, false},
		{"1.2.x", [3]int{}, false},
	}
	for _, tt := range tests {
		got, ok := versionTriple(tt.in)
		if ok != tt.ok {
			t.Errorf("versionTriple(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("versionTriple(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewerThan(t *testing.T) {
	tests := []struct {
		release string
		current string
		want    bool
	}{
		{"v0.2.0", "v0.1.5", true},
		{"v0.1.5", "v0.1.5", false},
		{"v0.1.4", "v0.1.5", false},
		{"v1.0.0", "v0.9.9", true},
		{"v0.1.6", "v0.1.5-dirty", true},
		{"v0.1.5", "dev", false},
		{"invalid", "v0.1.5", false},
	}
	for _, tt := range tests {
		got := Release{Version: tt.release}.NewerThan(tt.current)
		if got != tt.want {
			t.Errorf("Release{%q}.NewerThan(%q) = %v, want %v", tt.release, tt.current, got, tt.want)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()

	rel := &Release{Version: "v0.2.0", URL: "https://github.com/" + Repo + "/releases/tag/v0.2.0"}
	writeCache(dir, rel)

	got, ok := readCache(dir)
	if !ok || got == nil {
		t.Fatalf("readCache = %v, %v after write", got, ok)
	}
	if *got != *rel {
		t.Errorf("readCache = %+v, want %+v", got, rel)
	}
}

func TestCacheRemembersUpToDate(t *testing.T) {
	dir := t.TempDir()

	writeCache(dir, nil)

	got, ok := readCache(dir)
	if !ok {
		t.Fatal("fresh up-to-date entry should hit")
	}
	if got != nil {
		t.Errorf("readCache = %+v, want nil release", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()

	stale, err := json.Marshal(cacheEntry{
		Version: "v0.2.0",
		URL:     "https://example.invalid",
		Checked: time.Now().Add(-cacheTTL - time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, cacheFile), stale, 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := readCache(dir); ok {
		t.Error("expired entry should miss")
	}
}

func TestCacheCorrupt(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, cacheFile), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := readCache(dir); ok {
		t.Error("corrupt entry should miss")
	}
}
