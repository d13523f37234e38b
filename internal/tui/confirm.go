package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"
)

type confirmModel struct {
	state  *wizardState
	cursor int
}

func newConfirmModel(state *wizardState) *confirmModel {
	return &confirmModel{state: state}
}

func (m *confirmModel) Init() tea.Cmd {
	m.cursor = 0
	return nil
}

// confirmBackScreen returns the screen the user actually arrived from, so
// Back re-opens the deepest question answered instead of rewinding the whole
// TLS flow.
func confirmBackScreen(s *wizardState) screen {
	switch {
	case s.useExistingProxy:
		return screenProxyConfirm
	case !s.wantHTTPS:
		return screenHTTPSConfirm
	case s.ownCerts:
		return screenCertInput
	default:
		return screenTLSSelect
	}
}

func (m *confirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: confirmBackScreen(m.state)} }
		}
		if (isLeft(msg) || isUp(msg)) && m.cursor > 0 {
			m.cursor--
		}
		if (isRight(msg) || isDown(msg)) && m.cursor < 2 {
			m.cursor++
		}
		if isEnter(msg) {
			switch m.cursor {
			case 0: // Confirm
				return m, func() tea.Msg { return navigateMsg{to: screenPreflight} }
			case 1: // Back
				return m, func() tea.Msg { return navigateMsg{to: confirmBackScreen(m.state)} }
			case 2: // Cancel
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	var b strings.Builder
	mode := m.state.tlsMode()

	b.WriteString(titleStyle.Render("Confirm Setup"))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("  Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Public host:  %s\n", selectedStyle.Render(m.state.host)))
	b.WriteString(fmt.Sprintf("  License:      %s\n", selectedStyle.Render(maskToken(m.state.licenseToken))))
	b.WriteString(fmt.Sprintf("  TLS mode:     %s\n", selectedStyle.Render(string(mode))))
	if mode == provision.TLSUserProvided {
		b.WriteString(fmt.Sprintf("  Certificate:  %s\n", normalStyle.Render(m.state.certPath)))
		b.WriteString(fmt.Sprintf("  Private key:  %s\n", normalStyle.Render(m.state.keyPath)))
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Equivalent CLI Command"))
	b.WriteString("\n")
	cli := fmt.Sprintf("  $ taskbotctl init --host %s --license-token *** --tls %s", m.state.host, mode)
	if mode == provision.TLSUserProvided {
		cli += fmt.Sprintf(" --cert %s --key %s", m.state.certPath, m.state.keyPath)
	}
	b.WriteString(mutedStyle.Render(cli))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ taskbotctl apply"))
	b.WriteString("\n\n")

	buttons := []string{"Confirm", "Back", "Cancel"}
	for i, btn := range buttons {
		if i == m.cursor {
			b.WriteString("  " + borderStyle.Render(selectedStyle.Render(btn)))
		} else {
			b.WriteString("  " + normalStyle.Render("["+btn+"]"))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n  left/right: navigate  enter: select  esc: back"))
	return b.String()
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + strings.Repeat("*", 8)
}
