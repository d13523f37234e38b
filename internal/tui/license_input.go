package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type licenseInputModel struct {
	state  *wizardState
	input  textinput.Model
	errMsg string
}

func newLicenseInputModel(state *wizardState) *licenseInputModel {
	ti := textinput.New()
	ti.Placeholder = "license token"
	ti.CharLimit = 512
	ti.Width = 50
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'

	return &licenseInputModel{
		state: state,
		input: ti,
	}
}

func (m *licenseInputModel) Init() tea.Cmd {
	if m.state.licenseToken != "" {
		m.input.SetValue(m.state.licenseToken)
	}
	m.input.Focus()
	return textinput.Blink
}

func (m *licenseInputModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenHostInput} }
		}
		if isEnter(msg) {
			val := strings.TrimSpace(m.input.Value())
			if val == "" {
				m.errMsg = "The license token is required; it was issued with your installation"
				return m, nil
			}
			m.errMsg = ""
			m.state.licenseToken = val
			return m, func() tea.Msg { return navigateMsg{to: screenProxyConfirm} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *licenseInputModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("License Token"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Paste the license token for this installation."))
	b.WriteString("\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  enter: confirm  esc: back"))
	return b.String()
}
