package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/decenza/de1-sim/internal/config"
	"github.com/decenza/de1-sim/internal/engine"
	"github.com/decenza/de1-sim/internal/eventlog"
)

// View selects the lower tab.
type View int

const (
	ViewLog View = iota
	ViewProfile
)

// ghcModeLabels mirror the machine's five panel configurations.
var ghcModeLabels = []string{
	"0 - Not installed (app CAN start)",
	"1 - Present but unused (app CAN start)",
	"2 - Installed but inactive (app CAN start)",
	"3 - Present and active (app CANNOT start)",
	"4 - Debug mode (app CAN start)",
}

// Model is the main Bubbletea model for the simulator TUI.
type Model struct {
	eng      *engine.Engine
	log      *eventlog.Log
	settings config.Settings

	view   View
	width  int
	height int

	connecting bool
	errorMsg   string

	snap    engine.Snapshot
	entries []eventlog.Entry

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
}

// refreshTickMsg drives the periodic snapshot poll.
type refreshTickMsg time.Time

// connectResultMsg signals a connection attempt result.
type connectResultMsg struct {
	err error
}

// NewModel builds the TUI around a running engine.
func NewModel(eng *engine.Engine, log *eventlog.Log, settings config.Settings) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		eng:      eng,
		log:      log,
		settings: settings,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  s,
		styles:   DefaultStyles(),
		snap:     eng.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m Model) connectCmd() tea.Cmd {
	host, port := m.settings.Host, m.settings.Port
	eng := m.eng
	return func() tea.Msg {
		return connectResultMsg{err: eng.Connect(host, port)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case refreshTickMsg:
		m.snap = m.eng.Snapshot()
		m.entries = m.log.Snapshot()
		return m, refreshTick()

	case connectResultMsg:
		m.connecting = false
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
		} else {
			m.errorMsg = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.eng.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		if m.view == ViewLog {
			m.view = ViewProfile
		} else {
			m.view = ViewLog
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearLog):
		m.log.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Connect):
		if m.snap.Connected {
			m.eng.Disconnect()
			return m, nil
		}
		if m.connecting {
			return m, nil
		}
		m.connecting = true
		m.errorMsg = ""
		return m, m.connectCmd()

	case key.Matches(msg, m.keys.Ghc):
		m.eng.SetGHCMode((m.eng.GHCMode() + 1) % 5)
		return m, nil

	case key.Matches(msg, m.keys.Power):
		m.eng.Power()
		return m, nil
	case key.Matches(msg, m.keys.Espresso):
		m.eng.Espresso()
		return m, nil
	case key.Matches(msg, m.keys.Steam):
		m.eng.Steam()
		return m, nil
	case key.Matches(msg, m.keys.HotWater):
		m.eng.HotWater()
		return m, nil
	case key.Matches(msg, m.keys.Flush):
		m.eng.Flush()
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		m.eng.Stop()
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	title := m.styles.Title.Render("DE1 BLE Simulator")
	target := m.styles.Muted.Render(fmt.Sprintf("  agent %s:%d", m.settings.Host, m.settings.Port))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, title, target))
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.valuesLine())
	b.WriteString("\n")
	b.WriteString(m.ghcLine())
	b.WriteString("\n\n")

	b.WriteString(m.tabBar())
	b.WriteString("\n")
	switch m.view {
	case ViewLog:
		b.WriteString(m.logView())
	case ViewProfile:
		b.WriteString(m.profileView())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return m.styles.App.Render(b.String())
}

func (m Model) statusLine() string {
	var conn string
	switch {
	case m.connecting:
		conn = m.spinner.View() + " connecting..."
	case m.snap.Connected:
		conn = m.styles.StatusOnline.Render("connected")
	default:
		conn = m.styles.StatusOffline.Render("offline")
	}

	client := m.snap.BLEClient
	if client == "" {
		client = "none"
	}

	line := m.styles.StatusKey.Render("Agent:") + m.styles.StatusValue.Render(conn) +
		m.styles.StatusKey.Render("BLE client:") + m.styles.StatusValue.Render(client) +
		m.styles.StatusKey.Render("State:") +
		m.styles.Highlight.Render(fmt.Sprintf("%s/%s", m.snap.State, m.snap.SubState))

	if m.errorMsg != "" {
		line += "  " + m.styles.Error.Render(m.errorMsg)
	}
	return line
}

func (m Model) valuesLine() string {
	return m.styles.StatusKey.Render("Pressure:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%.1f bar", m.snap.Pressure)) +
		m.styles.StatusKey.Render("Flow:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%.1f mL/s", m.snap.Flow)) +
		m.styles.StatusKey.Render("Temp:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%.1f C", m.snap.Temperature)) +
		m.styles.StatusKey.Render("Timer:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%.1f s", m.snap.ShotTimer)) +
		m.styles.StatusKey.Render("Water:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%.0f %%", m.snap.WaterLevel)) +
		m.styles.StatusKey.Render("Frame:") +
		m.styles.StatusValue.Render(fmt.Sprintf("%d", m.snap.FrameNumber))
}

func (m Model) ghcLine() string {
	label := ghcModeLabels[m.snap.GhcMode]
	return m.styles.StatusKey.Render("GHC:") + m.styles.Value.Render(label)
}

func (m Model) tabBar() string {
	logTab := m.styles.TabInactive.Render("BLE Log")
	profileTab := m.styles.TabInactive.Render("Profile")
	if m.view == ViewLog {
		logTab = m.styles.TabActive.Render("BLE Log")
	} else {
		profileTab = m.styles.TabActive.Render("Profile")
	}
	return logTab + profileTab
}

// visibleLogLines is how many log rows fit under the fixed chrome.
func (m Model) visibleLogLines() int {
	n := m.height - 14
	if n < 5 {
		n = 5
	}
	return n
}

func (m Model) logView() string {
	n := m.visibleLogLines()
	entries := m.entries
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	var b strings.Builder
	for _, e := range entries {
		line := e.String()
		switch e.Category {
		case eventlog.Rx:
			line = m.styles.LogRx.Render(line)
		case eventlog.Tx:
			line = m.styles.LogTx.Render(line)
		case eventlog.Warn:
			line = m.styles.LogWarn.Render(line)
		case eventlog.Error:
			line = m.styles.LogErr.Render(line)
		default:
			line = m.styles.Value.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(entries) == 0 {
		b.WriteString(m.styles.Muted.Render("(no traffic yet)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) profileView() string {
	return m.styles.Value.Render(m.snap.Profile)
}
