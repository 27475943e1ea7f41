package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/game"
)

// Model is the Bubble Tea model for the blackjack table
type Model struct {
	table  *game.Table
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	snap        game.Snapshot
	gameLog     []string
	updates     chan struct{}
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// tableChangedMsg tells the model the table changed outside of a command,
// usually a paced dealer draw.
type tableChangedMsg struct{}

// NewModel creates a TUI model. Register Observe on the table and then call
// SetTable before running the program.
func NewModel(logger *log.Logger) *Model {
	return NewModelWithOptions(logger, false)
}

// NewModelWithOptions creates a TUI model with test mode option
func NewModelWithOptions(logger *log.Logger, testMode bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 50, deal, hit, stand, double, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = ActionStyle.Bold(true)
	ti.TextStyle = LogTextStyle
	ti.Prompt = "> "

	return &Model{
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		updates:     make(chan struct{}, 1),
		focusedPane: 1,
		testMode:    testMode,
	}
}

// SetTable attaches the table the model drives
func (m *Model) SetTable(t *game.Table) {
	m.table = t
	m.snap = t.Snapshot()
	m.AddLogEntry(TitleStyle.Render(" Trash Pandas Casino "))
	m.AddLogEntry(m.snap.Message + " Type 'help' for commands.")
}

// Observe is a game.Observer. It never blocks; changes are coalesced and the
// model re-reads the table when it handles them.
func (m *Model) Observe(game.Snapshot) {
	select {
	case m.updates <- struct{}{}:
	default:
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return tableChangedMsg{}
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tableChangedMsg:
		m.refresh(m.table.Snapshot())
		return m, m.waitForChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updated dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if m.Submit(input) {
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs one line of input against the table and reports whether the
// player asked to quit.
func (m *Model) Submit(input string) bool {
	cmd, err := ParseCommand(input, m.snap.State)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false
	}

	switch cmd.Kind {
	case CmdNone:
		return false
	case CmdQuit:
		m.quitting = true
		return true
	case CmdHelp:
		for _, line := range helpLines {
			m.AddLogEntry(HintStyle.Render(line))
		}
		return false
	case CmdShop:
		m.renderShop()
		return false
	}

	m.logger.Debug("Submitting command", "input", input, "kind", cmd.Kind)
	snap, err := apply(m.table, cmd)
	if err != nil {
		m.logChanges(m.snap, snap, false)
		m.AddLogEntry(ErrorStyle.Render(snap.Message))
		m.snap = snap
		return false
	}
	m.refresh(snap)
	return false
}

// refresh logs what changed since the last snapshot and keeps the new one
func (m *Model) refresh(next game.Snapshot) {
	m.logChanges(m.snap, next, true)
	m.snap = next
}

func (m *Model) logChanges(prev, next game.Snapshot, withMessage bool) {
	if next.Round != prev.Round && len(next.Player) > 0 {
		m.AddLogEntry("")
		m.AddLogEntry(HandStyle.Render(fmt.Sprintf("Round %d: %d on the table", next.Round, next.Stake)))
		m.AddLogEntry(fmt.Sprintf("You: %s (%d)", formatCards(next.Player), next.PlayerValue))
		m.AddLogEntry(fmt.Sprintf("Dealer: %s (%d)", formatCards(next.Dealer), next.DealerValue))
		prev.Player, prev.Dealer = next.Player, next.Dealer
	}

	if len(next.Player) > len(prev.Player) {
		for _, c := range next.Player[len(prev.Player):] {
			m.AddLogEntry(fmt.Sprintf("You draw %s (%d)", formatCard(c), next.PlayerValue))
		}
	}
	if len(prev.Dealer) >= 2 && prev.Dealer[1].FaceDown && len(next.Dealer) >= 2 && !next.Dealer[1].FaceDown {
		m.AddLogEntry(fmt.Sprintf("Dealer turns over %s", formatCard(next.Dealer[1])))
	}
	if len(next.Dealer) > len(prev.Dealer) && len(prev.Dealer) > 0 {
		for _, c := range next.Dealer[len(prev.Dealer):] {
			m.AddLogEntry(fmt.Sprintf("Dealer draws %s", formatCard(c)))
		}
	}

	if withMessage && next.Message != prev.Message && next.Message != "" {
		m.AddLogEntry(outcomeStyle(next.Outcome).Render(next.Message))
	}
}

func (m *Model) renderShop() {
	m.AddLogEntry(HandStyle.Render("Reward shop"))
	for _, item := range m.table.Catalog() {
		line := fmt.Sprintf("  %-10s %-28s %6d", item.ID, item.Name, item.UnitCost)
		if item.Variable {
			line += " each"
		}
		m.AddLogEntry(line)
	}
	m.AddLogEntry(HintStyle.Render("redeem <item> [quantity]"))
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(FocusedBorderColor).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(IdleBorderColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(IdleBorderColor).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(FocusedBorderColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the bankroll and shoe
func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	s := m.snap

	b.WriteString(BankrollStyle.Render(fmt.Sprintf("Bankroll: %d", s.Bankroll)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Bet: %d\n", s.Bet))
	if s.Stake > 0 {
		b.WriteString(fmt.Sprintf("At risk: %d\n", s.Stake))
	}
	b.WriteString(fmt.Sprintf("Top-ups left: %d\n\n", s.TopUpsRemaining))
	b.WriteString(HintStyle.Render(fmt.Sprintf("Round %d", s.Round)))
	b.WriteString("\n")
	b.WriteString(HintStyle.Render(fmt.Sprintf("Shoe: %d cards", s.CardsRemaining)))
	b.WriteString("\n")
	b.WriteString(HintStyle.Render(fmt.Sprintf("Discards: %d", s.Discarded)))
	return b.String()
}

// renderActionPane shows both hands, the available actions and the input
func (m *Model) renderActionPane() string {
	var b strings.Builder
	s := m.snap

	if len(s.Dealer) > 0 {
		b.WriteString(HandStyle.Render(fmt.Sprintf("Dealer: %s (%d)", formatCards(s.Dealer), s.DealerValue)))
		b.WriteString("\n")
		b.WriteString(HandStyle.Render(fmt.Sprintf("You:    %s (%d)", formatCards(s.Player), s.PlayerValue)))
		b.WriteString("\n")
	}

	b.WriteString(ActionsLabelStyle.Render("Actions: " + strings.Join(availableActions(s), " ")))
	b.WriteString("\n")

	m.actionInput.Placeholder = placeholder(s.State)
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"
	}
	b.WriteString(HintStyle.Render(help))
	return b.String()
}

func availableActions(s game.Snapshot) []string {
	switch s.State {
	case game.Betting:
		if s.Bankroll == 0 {
			if s.TopUpsRemaining > 0 {
				return []string{RiskyActionStyle.Render("[topup]"), RiskyActionStyle.Render("[reset]")}
			}
			return []string{RiskyActionStyle.Render("[reset]")}
		}
		return []string{ActionStyle.Render("[bet n]"), ActionStyle.Render("[deal]"), HintStyle.Render("[shop]")}
	case game.Playing:
		actions := []string{ActionStyle.Render("[hit]"), ActionStyle.Render("[stand]")}
		if s.CanDouble {
			actions = append(actions, RiskyActionStyle.Render("[double]"))
		}
		return actions
	case game.DealerTurn:
		return []string{HintStyle.Render("dealer is drawing...")}
	default:
		return []string{ActionStyle.Render("[new]"), HintStyle.Render("[shop]")}
	}
}

func placeholder(state game.State) string {
	switch state {
	case game.Betting:
		return "bet 50, then Enter to deal"
	case game.Playing:
		return "hit, stand or double"
	case game.GameOver:
		return "Enter for the next hand"
	default:
		return ""
	}
}

func outcomeStyle(o game.Outcome) lipgloss.Style {
	switch o {
	case game.Blackjack:
		return BlackjackStyle
	case game.Win:
		return WinStyle
	case game.Lose:
		return LoseStyle
	case game.Push:
		return PushStyle
	default:
		return LogTextStyle
	}
}

func formatCard(c deck.Card) string {
	switch {
	case c.FaceDown:
		return CardBackStyle.Render("??")
	case c.IsRed():
		return RedSuitStyle.Render(c.String())
	default:
		return BlackSuitStyle.Render(c.String())
	}
}

// formatCards formats cards with colors, hiding face-down cards
func formatCards(cards []deck.Card) string {
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = formatCard(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Snapshot returns the last table state the model rendered
func (m *Model) Snapshot() game.Snapshot {
	return m.snap
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
