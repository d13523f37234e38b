package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type httpsConfirmModel struct {
	state  *wizardState
	cursor int // 0=yes, 1=no
}

func newHTTPSConfirmModel(state *wizardState) *httpsConfirmModel {
	return &httpsConfirmModel{state: state}
}

func (m *httpsConfirmModel) Init() tea.Cmd {
	if !m.state.wantHTTPS {
		m.cursor = 1
	}
	return nil
}

func (m *httpsConfirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenProxyConfirm} }
		}
		if isUp(msg) || isDown(msg) {
			m.cursor = 1 - m.cursor
		}
		if isEnter(msg) {
			m.state.wantHTTPS = m.cursor == 0
			if !m.state.wantHTTPS {
				return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
			}
			return m, func() tea.Msg { return navigateMsg{to: screenTLSSelect} }
		}
	}
	return m, nil
}

func (m *httpsConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HTTPS"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Serve the deployment over HTTPS? Port 80 will redirect to 443."))
	b.WriteString("\n\n")

	options := []string{"Yes, enable HTTPS", "No, plain HTTP"}
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
