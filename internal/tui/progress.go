package tui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type progressStep struct {
	label  string
	status stepStatus
	err    error
}

type stepDoneMsg struct {
	index int
	err   error
}

type progressModel struct {
	state   *wizardState
	steps   []progressStep
	spinner spinner.Model
	current int
	done    bool
	errMsg  string

	cfg       provision.DeploymentConfig
	lifecycle *provision.Lifecycle
}

func newProgressModel(state *wizardState) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &progressModel{
		state:   state,
		spinner: sp,
		steps: []progressStep{
			{label: "Writing configuration and artifacts"},
			{label: "Pulling images"},
			{label: "Starting stack"},
		},
	}
}

func (m *progressModel) Init() tea.Cmd {
	// Reset state for fresh run
	m.current = 0
	m.done = false
	m.errMsg = ""
	for i := range m.steps {
		m.steps[i].status = stepPending
		m.steps[i].err = nil
	}
	m.steps[0].status = stepRunning

	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

func (m *progressModel) runStep(index int) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch index {
		case 0:
			err = m.doConfigure()
		case 1:
			err = m.doPull()
		case 2:
			err = m.doStart()
		}
		return stepDoneMsg{index: index, err: err}
	}
}

// captureOutput keeps the pipeline's plain prints off the alt screen.
func captureOutput(fn func() error) (string, error) {
	oldOut, oldErr := os.Stdout, os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout, os.Stderr = w, w
	err := fn()
	w.Close()
	os.Stdout, os.Stderr = oldOut, oldErr
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func (m *progressModel) doConfigure() error {
	cfg, err := provision.Resolve(m.state.answers())
	if err != nil {
		return err
	}
	m.cfg = cfg

	_, err = captureOutput(func() error {
		return provision.InitDeployment(cfg)
	})
	if err != nil {
		return err
	}

	lc, err := provision.NewLifecycle(cfg)
	if err != nil {
		return err
	}
	m.lifecycle = lc
	return nil
}

func (m *progressModel) doPull() error {
	_, err := captureOutput(func() error {
		return m.lifecycle.PullImages(context.Background())
	})
	return err
}

func (m *progressModel) doStart() error {
	_, err := captureOutput(func() error {
		return m.lifecycle.Start(context.Background())
	})
	return err
}

func (m *progressModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		m.steps[msg.index].status = stepDone
		if msg.err != nil {
			m.steps[msg.index].status = stepFailed
			m.steps[msg.index].err = msg.err
			m.errMsg = msg.err.Error()
			if hint := provision.Remediation(msg.err); hint != "" {
				m.errMsg += "\n  " + strings.ReplaceAll(hint, "\n", "\n  ")
			}
			m.done = true
			return m, nil
		}

		next := msg.index + 1
		if next >= len(m.steps) {
			m.done = true
			return m, func() tea.Msg { return navigateMsg{to: screenComplete} }
		}
		m.current = next
		m.steps[next].status = stepRunning
		return m, m.runStep(next)

	case tea.KeyMsg:
		if m.done && m.errMsg != "" {
			if isEnter(msg) || isEsc(msg) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Provisioning"))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		var icon string
		switch step.status {
		case stepPending:
			icon = mutedStyle.Render("  ")
		case stepRunning:
			icon = m.spinner.View()
		case stepDone:
			icon = successStyle.Render("OK")
		case stepFailed:
			icon = errorStyle.Render("XX")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, normalStyle.Render(step.label)))
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + m.errMsg))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("\n  press enter or esc to exit"))
	}

	return b.String()
}
