package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"
)

type screen int

const (
	screenWelcome screen = iota
	screenHostInput
	screenLicenseInput
	screenProxyConfirm
	screenHTTPSConfirm
	screenTLSSelect
	screenCertInput
	screenConfirm
	screenPreflight
	screenProgress
	screenComplete
	screenHelp
)

type navigateMsg struct {
	to screen
}

type wizardState struct {
	host             string
	licenseToken     string
	useExistingProxy bool
	wantHTTPS        bool
	ownCerts         bool
	certPath         string
	keyPath          string
}

func (s *wizardState) tlsMode() provision.TLSMode {
	return resolveTLSMode(s.useExistingProxy, s.wantHTTPS, s.ownCerts)
}

func (s *wizardState) answers() provision.Answers {
	a := provision.Answers{
		Host:         s.host,
		LicenseToken: s.licenseToken,
		TLSMode:      s.tlsMode(),
	}
	if a.TLSMode == provision.TLSUserProvided {
		a.CertPath = s.certPath
		a.KeyPath = s.keyPath
	}
	return a
}

type screenModel interface {
	Init() tea.Cmd
	Update(tea.Msg) (screenModel, tea.Cmd)
	View() string
}

type rootModel struct {
	current  screen
	previous screen
	state    *wizardState
	screens  map[screen]screenModel
	width    int
	height   int
	quitting bool
}

// StartWizard runs the interactive setup flow.
func StartWizard() error {
	state := &wizardState{}
	screens := map[screen]screenModel{
		screenWelcome:      newWelcomeModel(),
		screenHostInput:    newHostInputModel(state),
		screenLicenseInput: newLicenseInputModel(state),
		screenProxyConfirm: newProxyConfirmModel(state),
		screenHTTPSConfirm: newHTTPSConfirmModel(state),
		screenTLSSelect:    newTLSSelectModel(state),
		screenCertInput:    newCertInputModel(state),
		screenConfirm:      newConfirmModel(state),
		screenPreflight:    newPreflightModel(state),
		screenProgress:     newProgressModel(state),
		screenComplete:     newCompleteModel(state),
		screenHelp:         newHelpModel(),
	}

	m := rootModel{
		current: screenWelcome,
		state:   state,
		screens: screens,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m rootModel) Init() tea.Cmd {
	return m.screens[m.current].Init()
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		// Help overlay accessible via '?' from any non-progress screen
		if msg.String() == "?" && m.current != screenProgress && m.current != screenHelp {
			m.previous = m.current
			m.current = screenHelp
			return m, m.screens[m.current].Init()
		}

	case navigateMsg:
		m.current = msg.to
		s := m.screens[m.current]
		return m, s.Init()

	case helpReturnMsg:
		m.current = m.previous
		return m, nil
	}

	s := m.screens[m.current]
	newScreen, cmd := s.Update(msg)
	m.screens[m.current] = newScreen
	return m, cmd
}

func (m rootModel) View() string {
	if m.quitting {
		return ""
	}
	return m.screens[m.current].View()
}
