package visualization

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

// openCommand returns the platform command that hands target to the
// default viewer.
func openCommand(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "darwin":
		return exec.Command("open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// OpenFile opens a rendered chart in the user's default viewer. The
// command is started but not waited on.
func OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	cmd, err := openCommand(runtime.GOOS, abs)
	if err != nil {
		return err
	}
	return cmd.Start()
}
