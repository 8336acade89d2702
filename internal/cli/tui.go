package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/paulbouuu/K-means/pkg/errors"
	"github.com/paulbouuu/K-means/pkg/frames"
	"github.com/paulbouuu/K-means/pkg/kmeans"
	"github.com/paulbouuu/K-means/pkg/render"
)

// Stepper styles
var (
	stepLabelStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(11)
	stepDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	stepErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	stepReseededStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// StepModel - Interactive stepping through the algorithm
// =============================================================================

// StepModel is the bubbletea model for the interactive stepper.
// Each step key advances the engine by one iteration.
type StepModel struct {
	Engine *kmeans.Engine

	// Renderer and FramesDir are optional; when both are set a frame is
	// written after every step.
	Renderer  *render.Renderer
	FramesDir string

	LastFrame string
	Err       error
}

// NewStepModel creates a stepper for an engine that already holds a dataset.
func NewStepModel(e *kmeans.Engine) StepModel {
	return StepModel{Engine: e}
}

func (m StepModel) Init() tea.Cmd {
	return nil
}

func (m StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "enter", "right", "l", "n":
			m.step()
		case "r":
			m.reinitialize()
		}
	}
	return m, nil
}

// reinitialize restarts the engine and drops the frames of the previous
// sequence so the directory only ever holds one run.
func (m *StepModel) reinitialize() {
	m.Engine.Reinitialize()
	m.LastFrame = ""
	m.Err = nil
	if m.FramesDir == "" {
		return
	}
	if _, err := frames.Clear(m.FramesDir); err != nil {
		m.Err = err
	}
}

func (m *StepModel) step() {
	if err := m.Engine.Step(); err != nil {
		m.Err = err
		return
	}
	m.Err = nil
	if m.Renderer == nil || m.FramesDir == "" {
		return
	}
	path, err := m.Renderer.WriteFrame(m.FramesDir, m.Engine)
	if err != nil {
		m.Err = err
		return
	}
	m.LastFrame = path
}

func (m StepModel) View() string {
	var b strings.Builder

	e := m.Engine
	b.WriteString(StyleTitle.Render("K-means"))
	b.WriteString(stepDimStyle.Render(fmt.Sprintf("  k=%d · %d points · domain %s", e.K(), len(e.Dataset()), e.Domain())))
	b.WriteString("\n")
	b.WriteString(stepDimStyle.Render("space/enter step  r reinitialize  q quit"))
	b.WriteString("\n\n")

	inertia := "—"
	if e.Iteration() > 0 {
		inertia = fmt.Sprintf("%.3f", e.Inertia())
	}
	b.WriteString(stepLabelStyle.Render("Iteration") + " " + StyleNumber.Render(fmt.Sprint(e.Iteration())) + "\n")
	b.WriteString(stepLabelStyle.Render("Inertia") + " " + StyleValue.Render(inertia) + "\n\n")

	b.WriteString(m.centroidTable())
	b.WriteString("\n")

	if m.LastFrame != "" {
		b.WriteString("\n" + StyleDim.Render(iconArrow) + " " + StyleValue.Render(m.LastFrame))
	}
	if m.Err != nil {
		b.WriteString("\n" + stepErrorStyle.Render(iconError+" "+errors.UserMessage(m.Err)))
	}
	b.WriteString("\n")

	return b.String()
}

func (m StepModel) centroidTable() string {
	e := m.Engine
	centroids := e.Centroids()
	sizes := e.Sizes()
	reseeded := make(map[int]bool)
	for _, i := range e.Reseeded() {
		reseeded[i] = true
	}
	labelled := e.Labels() != nil

	rows := make([][]string, len(centroids))
	for i, c := range centroids {
		size := "—"
		if labelled {
			size = fmt.Sprint(sizes[i])
		}
		note := ""
		if reseeded[i] {
			note = "re-seeded"
		}
		rows[i] = []string{fmt.Sprint(i), fmt.Sprintf("%.3f", c.X), fmt.Sprintf("%.3f", c.Y), size, note}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cluster", "X", "Y", "Size", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(centroids) && reseeded[row] {
				return base.Inherit(stepReseededStyle)
			}
			if col == 0 {
				return base.Foreground(colorCyan)
			}
			return base
		})

	return t.Render()
}
