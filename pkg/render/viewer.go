package render

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/paulbouuu/K-means/pkg/errors"
)

// SystemViewer opens files with the operating system's default viewer.
// It does not wait for the viewer to exit.
type SystemViewer struct{}

// Show launches the platform viewer for path.
func (SystemViewer) Show(path string) error {
	name, args, err := viewerCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func viewerCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, errors.New(errors.ErrCodeUnsupported, "no image viewer known for %s", goos)
	}
}
