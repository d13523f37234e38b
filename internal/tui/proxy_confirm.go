package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type proxyConfirmModel struct {
	state  *wizardState
	cursor int // 0=no, 1=yes
}

func newProxyConfirmModel(state *wizardState) *proxyConfirmModel {
	return &proxyConfirmModel{state: state}
}

func (m *proxyConfirmModel) Init() tea.Cmd {
	if m.state.useExistingProxy {
		m.cursor = 1
	}
	return nil
}

func (m *proxyConfirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenLicenseInput} }
		}
		if isUp(msg) || isDown(msg) {
			m.cursor = 1 - m.cursor
		}
		if isEnter(msg) {
			m.state.useExistingProxy = m.cursor == 1
			if m.state.useExistingProxy {
				// Host proxy terminates TLS; nothing more to ask.
				return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
			}
			return m, func() tea.Msg { return navigateMsg{to: screenHTTPSConfirm} }
		}
	}
	return m, nil
}

func (m *proxyConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Existing Reverse Proxy"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Is another reverse proxy on this host already terminating TLS?"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("If so, the stack stays off ports 80/443 and writes merge instructions instead."))
	b.WriteString("\n\n")

	options := []string{"No, manage the proxy for me", "Yes, I run my own proxy"}
	for i, opt := range options {
		radio := radioOff
		label := normalStyle.Render(opt)
		if i == m.cursor {
			radio = radioOn
			label = selectedStyle.Render(opt)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", radio, label))
	}

	b.WriteString(helpStyle.Render("\n  up/down: navigate  enter: select  esc: back"))
	return b.String()
}
