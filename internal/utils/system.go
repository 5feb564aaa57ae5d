package utils

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var execCommand = exec.Command

// OpenURL opens an http(s) link, such as a created issue, in the browser.
func OpenURL(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("open url: %q is not an http(s) link", target)
	}

	name, args := opener(runtime.GOOS, target)
	cmd := execCommand(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open url: %w", err)
	}
	return cmd.Wait()
}

func opener(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
