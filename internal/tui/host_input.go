package tui

import (
	"net"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*\.)+[a-zA-Z]{2,}$`)

func validHost(v string) bool {
	return hostnameRegex.MatchString(v) || net.ParseIP(v) != nil
}

type hostInputModel struct {
	state  *wizardState
	input  textinput.Model
	errMsg string
}

func newHostInputModel(state *wizardState) *hostInputModel {
	ti := textinput.New()
	ti.Placeholder = "taskbot.example.com"
	ti.CharLimit = 253
	ti.Width = 40

	return &hostInputModel{
		state: state,
		input: ti,
	}
}

func (m *hostInputModel) Init() tea.Cmd {
	if m.state.host != "" {
		m.input.SetValue(m.state.host)
	}
	m.input.Focus()
	return textinput.Blink
}

func (m *hostInputModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenWelcome} }
		}
		if isEnter(msg) {
			val := strings.TrimSpace(m.input.Value())
			if !validHost(val) {
				m.errMsg = "Enter a valid domain name or IP address"
				return m, nil
			}
			m.errMsg = ""
			m.state.host = val
			return m, func() tea.Msg { return navigateMsg{to: screenLicenseInput} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *hostInputModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Public Host"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Enter the domain or IP address users will reach this deployment on."))
	b.WriteString("\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  enter: confirm  esc: back"))
	return b.String()
}
