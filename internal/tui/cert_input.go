package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type certInputModel struct {
	state     *wizardState
	certInput textinput.Model
	keyInput  textinput.Model
	focusKey  bool
	errMsg    string
}

func newCertInputModel(state *wizardState) *certInputModel {
	cert := textinput.New()
	cert.Placeholder = "/etc/ssl/taskbot/fullchain.pem"
	cert.CharLimit = 512
	cert.Width = 50

	key := textinput.New()
	key.Placeholder = "/etc/ssl/taskbot/privkey.pem"
	key.CharLimit = 512
	key.Width = 50

	return &certInputModel{
		state:     state,
		certInput: cert,
		keyInput:  key,
	}
}

func (m *certInputModel) Init() tea.Cmd {
	if m.state.certPath != "" {
		m.certInput.SetValue(m.state.certPath)
	}
	if m.state.keyPath != "" {
		m.keyInput.SetValue(m.state.keyPath)
	}
	m.focusKey = false
	m.keyInput.Blur()
	m.certInput.Focus()
	return textinput.Blink
}

func (m *certInputModel) switchFocus() tea.Cmd {
	m.focusKey = !m.focusKey
	if m.focusKey {
		m.certInput.Blur()
		return m.keyInput.Focus()
	}
	m.keyInput.Blur()
	return m.certInput.Focus()
}

func (m *certInputModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenTLSSelect} }
		}
		if isTab(msg) {
			return m, m.switchFocus()
		}
		if isEnter(msg) {
			if !m.focusKey {
				return m, m.switchFocus()
			}
			certPath := strings.TrimSpace(m.certInput.Value())
			keyPath := strings.TrimSpace(m.keyInput.Value())
			for _, p := range []string{certPath, keyPath} {
				if p == "" {
					m.errMsg = "Both paths are required"
					return m, nil
				}
				if _, err := os.Stat(p); err != nil {
					m.errMsg = "File not found: " + p
					return m, nil
				}
			}
			m.errMsg = ""
			m.state.certPath = certPath
			m.state.keyPath = keyPath
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
	}

	var cmd tea.Cmd
	if m.focusKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else {
		m.certInput, cmd = m.certInput.Update(msg)
	}
	return m, cmd
}

func (m *certInputModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Certificate Paths"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Both files must already exist on this host."))
	b.WriteString("\n\n")
	b.WriteString("  Certificate chain\n")
	b.WriteString("  " + m.certInput.View())
	b.WriteString("\n\n")
	b.WriteString("  Private key\n")
	b.WriteString("  " + m.keyInput.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  tab: switch field  enter: confirm  esc: back"))
	return b.String()
}
