package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"
)

type completeModel struct {
	state  *wizardState
	cursor int // 0=Exit
}

func newCompleteModel(state *wizardState) *completeModel {
	return &completeModel{state: state}
}

func (m *completeModel) Init() tea.Cmd {
	return nil
}

func (m *completeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEnter(msg) || msg.String() == "q" || isEsc(msg) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *completeModel) View() string {
	var b strings.Builder

	b.WriteString(successStyle.Render("  Deployment Complete!"))
	b.WriteString("\n\n")

	mode := m.state.tlsMode()
	scheme := "https"
	if mode == provision.TLSNone {
		scheme = "http"
	}

	b.WriteString(fmt.Sprintf("  Public URL:  %s\n", selectedStyle.Render(scheme+"://"+m.state.host)))
	b.WriteString(fmt.Sprintf("  Home:        %s\n", normalStyle.Render(provision.DeployHome(""))))
	b.WriteString(fmt.Sprintf("  TLS mode:    %s\n", normalStyle.Render(string(mode))))

	if mode == provision.TLSHostDelegated {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  Merge proxy-instructions.yml into your reverse proxy to finish."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Next Steps"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ taskbotctl status      # check container state"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ taskbotctl update      # pull fresh images and restart"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ taskbotctl doctor      # verify system"))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n  press enter or q to exit"))
	return b.String()
}
