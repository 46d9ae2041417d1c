//go:build darwin

package login

import (
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// The LaunchAgent label also names the plist file.
const agentLabel = "com.whisper.app"

// carryEnv lists variables the login copy must inherit; launchd starts
// agents without the shell environment.
var carryEnv = []string{"WHISPER_ENGINE_ADDR", "WHISPER_LOG_PATH"}

func agentPath() string {
	return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", agentLabel+".plist")
}

func guiDomain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}

func Supported() bool { return true }

// Enabled reports whether the LaunchAgent plist is installed.
func Enabled() bool {
	_, err := os.Stat(agentPath())
	return err == nil
}

func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	path := agentPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(path, agentPlist(exe), 0600); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}

	// Bootout first so re-enabling replaces an already loaded agent.
	exec.Command("launchctl", "bootout", guiDomain(), path).Run()
	if out, err := exec.Command("launchctl", "bootstrap", guiDomain(), path).CombinedOutput(); err != nil {
		return fmt.Errorf("launchctl bootstrap: %w (%s)", err, out)
	}
	return nil
}

func Disable() error {
	path := agentPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	exec.Command("launchctl", "bootout", guiDomain(), path).Run()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove plist: %w", err)
	}
	return nil
}

// agentPlist renders the LaunchAgent definition. Values are XML-escaped
// and the environment dict only appears when something is carried.
func agentPlist(exe string) []byte {
	var env strings.Builder
	for _, key := range carryEnv {
		if v := os.Getenv(key); v != "" {
			fmt.Fprintf(&env, "\t\t<key>%s</key>\n\t\t<string>%s</string>\n", key, html.EscapeString(v))
		}
	}
	envDict := ""
	if env.Len() > 0 {
		envDict = fmt.Sprintf("\t<key>EnvironmentVariables</key>\n\t<dict>\n%s\t</dict>\n", env.String())
	}

	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>LimitLoadToSessionType</key>
	<string>Aqua</string>
%s</dict>
</plist>
`, agentLabel, html.EscapeString(exe), envDict))
}
