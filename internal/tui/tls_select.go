package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type tlsOption struct {
	label string
	desc  string
}

type tlsSelectModel struct {
	state   *wizardState
	cursor  int // 0=self-signed, 1=own certificate
	options []tlsOption
}

func newTLSSelectModel(state *wizardState) *tlsSelectModel {
	return &tlsSelectModel{
		state: state,
		options: []tlsOption{
			{label: "Generate a self-signed certificate", desc: "Quick start; browsers will warn until the cert is trusted"},
			{label: "Use my own certificate", desc: "Point at an existing fullchain and private key on this host"},
		},
	}
}

func (m *tlsSelectModel) Init() tea.Cmd {
	if m.state.ownCerts {
		m.cursor = 1
	}
	return nil
}

func (m *tlsSelectModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenHTTPSConfirm} }
		}
		if isUp(msg) || isDown(msg) {
			m.cursor = 1 - m.cursor
		}
		if isEnter(msg) {
			m.state.ownCerts = m.cursor == 1
			if m.state.ownCerts {
				return m, func() tea.Msg { return navigateMsg{to: screenCertInput} }
			}
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
	}
	return m, nil
}

func (m *tlsSelectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Certificate Source"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Choose how the HTTPS certificate is obtained."))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		radio := radioOff
		label := normalStyle.Render(opt.label)
		if i == m.cursor {
			radio = radioOn
			label = selectedStyle.Render(opt.label)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", radio, label))
		b.WriteString(fmt.Sprintf("      %s\n", mutedStyle.Render(opt.desc)))
	}

	b.WriteString(helpStyle.Render("\n  up/down: navigate  enter: select  esc: back"))
	return b.String()
}
