package render

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/kmeans"
)

type recordingViewer struct {
	shown []string
	err   error
}

func (v *recordingViewer) Show(path string) error {
	v.shown = append(v.shown, path)
	return v.err
}

func steppedEngine(t *testing.T, steps int) *kmeans.Engine {
	t.Helper()
	eng, err := kmeans.New(3, kmeans.WithSeed(2))
	require.NoError(t, err)
	r := kmeans.NewRand(3)
	points := make([]kmeans.Point, 90)
	for i := range points {
		cx := float64(i%3)*3 - 3
		points[i] = kmeans.Point{X: cx + r.NormFloat64()*0.4, Y: r.NormFloat64() * 0.4}
	}
	eng.Load(points)
	for i := 0; i < steps; i++ {
		require.NoError(t, eng.Step())
	}
	return eng
}

func TestRender_PNGSize(t *testing.T) {
	eng := steppedEngine(t, 2)

	var buf bytes.Buffer
	require.NoError(t, New(WithSize(320, 240)).Render(&buf, eng))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRender_BeforeFirstStep(t *testing.T) {
	eng := steppedEngine(t, 0)

	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, eng))
	_, err := png.Decode(&buf)
	require.NoError(t, err)
}

func TestWriteFrame(t *testing.T) {
	dir := t.TempDir()
	eng := steppedEngine(t, 3)
	viewer := &recordingViewer{}

	path, err := New(WithViewer(viewer)).WriteFrame(dir, eng)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "k_means_3.png"), path)
	assert.Equal(t, []string{path}, viewer.shown)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestWriteFrame_ViewerFailureLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{})
	viewer := &recordingViewer{err: fmt.Errorf("no display")}

	path, err := New(WithViewer(viewer), WithLogger(logger)).WriteFrame(t.TempDir(), steppedEngine(t, 1))
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, []string{path}, viewer.shown)
	assert.Contains(t, logs.String(), "could not display frame")
	assert.Contains(t, logs.String(), "no display")
}

func TestWriteFrame_MissingDir(t *testing.T) {
	eng := steppedEngine(t, 1)
	_, err := New().WriteFrame(filepath.Join(t.TempDir(), "missing", "deeper"), eng)
	assert.Error(t, err)
}

func TestViewerCommand(t *testing.T) {
	tests := []struct {
		goos    string
		name    string
		wantErr bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := viewerCommand(tt.goos, "frame.png")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, "frame.png", args[len(args)-1])
		})
	}
}
