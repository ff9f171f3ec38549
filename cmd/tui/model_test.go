package main

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/stockview/internal/session"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/view"
	"github.com/rxtech-lab/stockview/mocks"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

func mockFactory(t *testing.T) ProviderFactory {
	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)

	aapl := mocks.GenerateDaily("AAPL", types.Date(2022, 1, 3), 600)
	tsla := mocks.GenerateDaily("TSLA", types.Date(2022, 1, 3), 600)

	p.EXPECT().FetchSeries(gomock.Any(), "AAPL", gomock.Any(), gomock.Any()).Return(aapl, nil).AnyTimes()
	p.EXPECT().FetchCompanyName(gomock.Any(), "AAPL").Return("Apple Inc.").AnyTimes()
	p.EXPECT().FetchSeries(gomock.Any(), "TSLA", gomock.Any(), gomock.Any()).Return(tsla, nil).AnyTimes()
	p.EXPECT().FetchCompanyName(gomock.Any(), "TSLA").Return("Tesla, Inc.").AnyTimes()
	p.EXPECT().FetchSeries(gomock.Any(), "ZZZZ", gomock.Any(), gomock.Any()).
		Return(types.PriceSeries{}, provider.NotFound("ZZZZ")).AnyTimes()

	return func(_ marketdata.ProviderType) (provider.Provider, error) {
		return p, nil
	}
}

func waitFor(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte(text))
	}, teatest.WithDuration(3*time.Second))
}

func startDashboard(t *testing.T) *teatest.TestModel {
	t.Helper()

	tm := teatest.NewTestModel(t, NewModel(mockFactory(t), nil), teatest.WithInitialTermSize(100, 40))

	waitFor(t, tm, "yahoo")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Price evolution for Apple Inc. (AAPL)")

	return tm
}

func TestNewModel(t *testing.T) {
	m := NewModel(nil, nil)

	assert.Equal(t, StateProviderSelect, m.state)
	assert.Nil(t, m.session)
	assert.False(t, m.loaded)
	assert.False(t, m.symbolInput.Focused())
}

func TestPresetForKey(t *testing.T) {
	tests := []struct {
		key      string
		expected view.Preset
		ok       bool
	}{
		{key: "1", expected: view.Preset5D, ok: true},
		{key: "4", expected: view.Preset6M, ok: true},
		{key: "7", expected: view.PresetAll, ok: true},
		{key: "8"},
		{key: "0"},
		{key: "m"},
		{key: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			preset, ok := presetForKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, preset)
		})
	}
}

func TestPresetHelp(t *testing.T) {
	assert.Equal(t, "1:5D 2:1M 3:3M 4:6M 5:1Y 6:5Y 7:All", PresetHelp())
}

func TestFormatClose(t *testing.T) {
	assert.Equal(t, "10.50", FormatClose(10.5, 0))
	assert.Equal(t, "10.50 ▲", FormatClose(10.5, 10))
	assert.Equal(t, "10.50 ▼", FormatClose(10.5, 11))
	assert.Equal(t, "10.50", FormatClose(10.5, 10.5))
}

func TestUpdateTableRows(t *testing.T) {
	series := mocks.GenerateDaily("AAPL", types.Date(2024, 1, 1), 10)
	bars := series.Bars()

	tbl := UpdateTableRows(NewBarsTable(), bars)
	rows := tbl.Rows()

	require.Len(t, rows, recentBars)
	assert.Equal(t, bars[len(bars)-1].Date.Format(types.DateLayout), rows[0][0])
	assert.Equal(t, bars[len(bars)-recentBars].Date.Format(types.DateLayout), rows[recentBars-1][0])

	assert.Empty(t, UpdateTableRows(NewBarsTable(), nil).Rows())
}

func TestProviderSelectionLoadsDefaultSymbol(t *testing.T) {
	tm := startDashboard(t)
	waitFor(t, tm, "Markers On")

	require.NoError(t, tm.Quit())
}

func TestToggleAndPreset(t *testing.T) {
	tm := startDashboard(t)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	waitFor(t, tm, "Markers Off")

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	waitFor(t, tm, "AAPL |")

	require.NoError(t, tm.Quit())
}

func TestSearch(t *testing.T) {
	tm := startDashboard(t)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	tm.Type("tsla")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Price evolution for Tesla, Inc. (TSLA)")

	require.NoError(t, tm.Quit())
}

func TestSearchUnknownSymbol(t *testing.T) {
	tm := startDashboard(t)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	tm.Type("zzzz")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Error: No data found for the symbol")

	require.NoError(t, tm.Quit())
}

func TestQuitWhileTypingIsText(t *testing.T) {
	tm := startDashboard(t)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	tm.Type("q")
	waitFor(t, tm, "> q")

	require.NoError(t, tm.Quit())
}

func dashboardModel(t *testing.T, id string) Model {
	t.Helper()

	m := NewModel(nil, nil)
	m.session = session.New(id, nil, nil)
	m.state = StateDashboard

	return m
}

func snapshotFor(id string, version uint64, symbol string, markers bool) SnapshotMsg {
	state := view.InitialState()
	state.ActiveSymbol = symbol
	state.ShowMarkers = markers
	state.IsInitialLoad = false

	return SnapshotMsg{Snapshot: session.Snapshot{SessionID: id, Version: version, State: state}}
}

func TestOlderSnapshotDoesNotReplaceNewer(t *testing.T) {
	var model tea.Model = dashboardModel(t, "s1")

	model, _ = model.Update(snapshotFor("s1", 3, "TSLA", true))
	model, _ = model.Update(snapshotFor("s1", 2, "AAPL", false))

	m := model.(Model)
	assert.Equal(t, uint64(3), m.snapshot.Version)
	assert.Equal(t, "TSLA", m.snapshot.State.ActiveSymbol)
	assert.True(t, m.snapshot.State.ShowMarkers)

	model, _ = model.Update(snapshotFor("s1", 4, "AAPL", false))

	m = model.(Model)
	assert.Equal(t, uint64(4), m.snapshot.Version)
	assert.Equal(t, "AAPL", m.snapshot.State.ActiveSymbol)
}

func TestSnapshotFromLeftSessionIsIgnored(t *testing.T) {
	var model tea.Model = dashboardModel(t, "s2")

	model, _ = model.Update(snapshotFor("s1", 5, "TSLA", true))

	m := model.(Model)
	assert.False(t, m.loaded)
	assert.Equal(t, "", m.snapshot.SessionID)
}

func TestDispatcherKeepsEnqueueOrder(t *testing.T) {
	p, err := mockFactory(t)(marketdata.ProviderYahoo)
	require.NoError(t, err)

	d := newDispatcher(session.New("s1", p, nil))
	defer d.close()

	const toggles = 9

	cmds := []tea.Cmd{d.enqueue(view.InitialLoad{})}
	for i := 0; i < toggles; i++ {
		cmds = append(cmds, d.enqueue(view.ToggleMarkers{}))
	}

	var last uint64
	for i, cmd := range cmds {
		msg, ok := cmd().(SnapshotMsg)
		require.True(t, ok)
		assert.Greater(t, msg.Snapshot.Version, last)
		last = msg.Snapshot.Version

		// markers start on and flip once per toggle
		assert.Equal(t, i%2 == 0, msg.Snapshot.State.ShowMarkers)
	}
}
