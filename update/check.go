package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFile     = "update_check.json"
	cacheTTL      = 24 * time.Hour
	checkInterval = 5 * time.Minute
)

// The check runs from a background goroutine, so it must not hang on a
// stuck connection.
var httpClient = &http.Client{Timeout: 15 * time.Second}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type cacheEntry struct {
	Version string    `json:"version"`
	URL     string    `json:"url"`
	Checked time.Time `json:"checked"`
}

// CheckLatest asks the GitHub API for the latest release and returns it
// when it is newer than currentVersion, nil otherwise. Dev builds never
// see updates.
func CheckLatest(currentVersion string) (*Release, error) {
	if currentVersion == "dev" {
		return nil, nil
	}

	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", Repo)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("github api: %s", resp.Status)
	}

	var gh ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, err
	}

	rel := &Release{Version: gh.TagName, URL: gh.HTMLURL}
	if !rel.NewerThan(currentVersion) {
		return nil, nil
	}
	return rel, nil
}

// CheckLatestCached is CheckLatest behind a day-long on-disk cache, so
// restarting the app does not hammer the API.
func CheckLatestCached(currentVersion, cacheDir string) (*Release, error) {
	if currentVersion == "dev" {
		return nil, nil
	}
	if rel, ok := readCache(cacheDir); ok {
		return rel, nil
	}
	rel, err := CheckLatest(currentVersion)
	if err != nil {
		return nil, err
	}
	writeCache(cacheDir, rel)
	return rel, nil
}

// StartBackgroundCheck polls for updates and calls notify for each
// newer release it sees. The first check runs immediately.
func StartBackgroundCheck(currentVersion, cacheDir string, notify func(Release)) {
	if currentVersion == "dev" {
		return
	}
	go func() {
		tick := time.NewTicker(checkInterval)
		defer tick.Stop()
		for {
			if rel, err := CheckLatestCached(currentVersion, cacheDir); err == nil && rel != nil {
				notify(*rel)
			}
			<-tick.C
		}
	}()
}

func readCache(cacheDir string) (*Release, bool) {
	data, err := os.ReadFile(filepath.Join(cacheDir, cacheFile))
	if err != nil {
		return nil, false
	}
	var c cacheEntry
	if json.Unmarshal(data, &c) != nil {
		return nil, false
	}
	if time.Since(c.Checked) > cacheTTL {
		return nil, false
	}
	if c.Version == "" {
		// A fresh entry with no version means the last check came back
		// up to date.
		return nil, true
	}
	return &Release{Version: c.Version, URL: c.URL}, true
}

func writeCache(cacheDir string, rel *Release) {
	c := cacheEntry{Checked: time.Now()}
	if rel != nil {
		c.Version = rel.Version
		c.URL = rel.URL
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	_ = os.MkdirAll(cacheDir, 0755)
	_ = os.WriteFile(filepath.Join(cacheDir, cacheFile), data, 0644)
}
