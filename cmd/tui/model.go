package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// Application states.
const (
	StateProviderSelect = iota
	StateDashboard
)

// ProviderFactory opens the named provider.
type ProviderFactory func(name marketdata.ProviderType) (provider.Provider, error)

// Model is the Bubble Tea model of the terminal dashboard.
type Model struct {
	state        int
	providerList list.Model
	symbolInput  textinput.Model
	barsTable    table.Model
	providerName string
	session      *session.Session
	dispatcher   *dispatcher
	snapshot     session.Snapshot
	loaded       bool
	loading      bool
	err          error
	width        int
	height       int

	newProvider ProviderFactory
	logger      *logger.Logger
}

// NewModel creates a new Model with initial state.
func NewModel(newProvider ProviderFactory, log *logger.Logger) Model {
	if log == nil {
		log = logger.NewNop()
	}

	return Model{
		state:        StateProviderSelect,
		providerList: NewProviderList(),
		symbolInput:  NewSymbolInput(),
		barsTable:    NewBarsTable(),
		width:        80,
		height:       24,
		newProvider:  newProvider,
		logger:       log,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// 'q' is a letter while typing a symbol
			if !m.symbolInput.Focused() {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.providerList.SetSize(msg.Width, msg.Height-4)
		m.barsTable.SetWidth(msg.Width)

		return m, nil

	case SessionStartedMsg:
		m.session = msg.Session
		m.dispatcher = newDispatcher(msg.Session)
		m.state = StateDashboard
		m.loading = true

		return m, m.dispatch(view.InitialLoad{})

	case SnapshotMsg:
		if m.isStale(msg.Snapshot) {
			return m, nil
		}

		m.snapshot = msg.Snapshot
		m.loaded = true
		m.loading = false
		m.err = nil
		m.barsTable = UpdateTableRows(m.barsTable, msg.Snapshot.VisibleBars())

		return m, nil

	case DispatchErrorMsg:
		m.err = msg.Err
		m.loading = false

		return m, nil
	}

	switch m.state {
	case StateProviderSelect:
		return m.updateProviderSelect(msg)
	case StateDashboard:
		return m.updateDashboard(msg)
	}

	return m, nil
}

func (m Model) updateProviderSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.providerList.SelectedItem().(listItem); ok {
			m.providerName = item.name

			return m, m.openProvider(marketdata.ProviderType(item.name))
		}
	}

	var cmd tea.Cmd
	m.providerList, cmd = m.providerList.Update(msg)

	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)

	if m.symbolInput.Focused() {
		if ok {
			switch key.String() {
			case "enter":
				raw := m.symbolInput.Value()
				m.symbolInput.Reset()
				m.symbolInput.Blur()
				m.loading = true

				return m, m.dispatch(view.Search{Raw: raw})
			case "esc":
				m.symbolInput.Blur()

				return m, nil
			}
		}

		var cmd tea.Cmd
		m.symbolInput, cmd = m.symbolInput.Update(msg)

		return m, cmd
	}

	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "/":
		m.symbolInput.Focus()

		return m, textinput.Blink
	case "m":
		return m, m.dispatch(view.ToggleMarkers{})
	case "esc":
		if m.dispatcher != nil {
			m.dispatcher.close()
		}

		m.session = nil
		m.dispatcher = nil
		m.loaded = false
		m.err = nil
		m.state = StateProviderSelect

		return m, nil
	default:
		if preset, ok := presetForKey(k); ok {
			return m, m.dispatch(view.RangePreset{Preset: preset})
		}
	}

	return m, nil
}

// presetForKey maps "1".."7" onto the presets in button order.
func presetForKey(key string) (view.Preset, bool) {
	presets := view.Presets()

	if len(key) != 1 || key[0] < '1' || int(key[0]-'1') >= len(presets) {
		return "", false
	}

	return presets[key[0]-'1'], true
}

// openProvider builds the provider and a session over it.
func (m Model) openProvider(name marketdata.ProviderType) tea.Cmd {
	newProvider := m.newProvider
	log := m.logger

	return func() tea.Msg {
		p, err := newProvider(name)
		if err != nil {
			return DispatchErrorMsg{Err: err}
		}

		return SessionStartedMsg{Session: session.New(uuid.New().String(), p, log)}
	}
}

// dispatch queues action on the session off the UI goroutine.
func (m Model) dispatch(action view.Action) tea.Cmd {
	if m.dispatcher == nil {
		return nil
	}

	return m.dispatcher.enqueue(action)
}

// isStale reports whether snapshot is older than what is shown, or belongs to
// a session that was already left.
func (m Model) isStale(snapshot session.Snapshot) bool {
	if m.session == nil || snapshot.SessionID != m.session.ID() {
		return true
	}

	return m.loaded && snapshot.Version < m.snapshot.Version
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateProviderSelect:
		s.WriteString(TitleStyle.Render("Stock Price Dashboard"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(m.providerList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, q to quit"))

	case StateDashboard:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Stock Price Dashboard (%s)", m.providerName)))
		s.WriteString("\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		switch {
		case !m.loaded:
			s.WriteString("Loading...\n")
		case m.snapshot.Failed():
			s.WriteString(ErrorStyle.Render(m.snapshot.ErrorMessage()))
			s.WriteString("\n")
		default:
			s.WriteString(m.statusLine())
			s.WriteString("\n")
			s.WriteString(chart.RenderTerminal(m.snapshot, max(m.width-2, 20), max(m.height-18, 8)))
			s.WriteString("\n\n")
			s.WriteString(m.barsTable.View())
			s.WriteString("\n")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(fmt.Sprintf("/: symbol | %s | m: markers | Esc: providers | q: quit", PresetHelp())))
	}

	return s.String()
}

func (m Model) statusLine() string {
	state := m.snapshot.State
	parts := []string{state.ActiveSymbol}

	if r, ok := state.Range(); ok {
		parts = append(parts, r.String())
	}

	parts = append(parts, MarkersLabel(state.ShowMarkers))

	if m.loading {
		parts = append(parts, "loading")
	}

	return strings.Join(parts, " | ")
}
