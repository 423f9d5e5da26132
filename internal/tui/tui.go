package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/game"
)

var helpLines = []string{
	"Commands:",
	"  bet <amount>  (b)   place the current player's bet",
	"  hit           (h)   draw a card",
	"  stand         (s)   end the hand",
	"  double        (d)   double the bet and draw one card",
	"  split         (p)   split a pair into two hands",
	"  advance       (a)   step the dealer's turn",
	"  new           (n)   start the next round",
	"  quit          (q)   leave the table",
	"Enter on an empty line advances the dealer or starts the next round.",
}

// TUIModel is the Bubble Tea model for a local blackjack table. It only
// issues table commands and renders snapshots; every rule lives in the
// engine.
type TUIModel struct {
	table     *game.Table
	logger    *log.Logger
	formatter *game.EventFormatter

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	lastBet     int
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized
}

// NewTUIModel creates a model driving table. Subscribe it to the table's
// event bus so rounds show up in the log.
func NewTUIModel(table *game.Table, logger *log.Logger) *TUIModel {
	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 10, hit, stand, double, split (help for more)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		table:       table,
		logger:      logger.WithPrefix("tui"),
		formatter:   game.NewEventFormatter(game.FormattingOptions{ShowChips: true}),
		logViewport: vp,
		actionInput: ti,
		lastBet:     table.Rules().MinBet,
		focusedPane: 1,
	}
	m.AddLogEntry(HeaderStyle.Render(" Blackjack "))
	m.AddLogEntry(InfoStyle.Render("Type 'help' for commands."))
	return m
}

// Run shows the model full screen until the player quits or ctx is done
func Run(ctx context.Context, m *TUIModel) error {
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// OnEvent implements game.EventSubscriber
func (m *TUIModel) OnEvent(event game.GameEvent) {
	for _, line := range strings.Split(m.formatter.Format(event), "\n") {
		switch event.(type) {
		case game.RoundStartEvent:
			line = HeaderStyle.Render(line)
		case game.RoundEndEvent:
			line = SuccessStyle.Render(line)
		case game.ShuffleEvent:
			line = WarningStyle.Render(line)
		}
		m.AddLogEntry(line)
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
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
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processAction(input); cmd != nil {
					return m, cmd
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
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
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

// processAction runs one typed command against the table
func (m *TUIModel) processAction(input string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		m.runDefault()
		return nil
	}

	var err error
	switch parts[0] {
	case "bet", "b":
		amount := m.lastBet
		if len(parts) > 1 {
			amount, err = strconv.Atoi(strings.TrimPrefix(parts[1], "$"))
			if err != nil {
				m.AddLogEntry(ErrorStyle.Render("Usage: bet <amount>"))
				return nil
			}
		}
		if err = m.table.Bet(amount); err == nil {
			m.lastBet = amount
		}
	case "hit", "h":
		err = m.table.Hit()
	case "stand", "s":
		err = m.table.Stand()
	case "double", "d":
		err = m.table.DoubleDown()
	case "split", "p":
		err = m.table.Split()
	case "advance", "a":
		err = m.table.Advance()
	case "new", "n", "deal":
		err = m.table.NewRound()
	case "help", "?":
		for _, line := range helpLines {
			m.AddLogEntry(InfoStyle.Render(line))
		}
	case "quit", "q", "exit":
		m.quitting = true
		return tea.Quit
	default:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q, type 'help'", parts[0])))
		return nil
	}

	if err != nil {
		m.logger.Debug("Command rejected", "input", input, "error", err)
		m.AddLogEntry(ErrorStyle.Render(m.table.Message()))
	}
	return nil
}

// runDefault is what Enter on an empty line does in each phase
func (m *TUIModel) runDefault() {
	var err error
	switch m.table.Phase() {
	case game.DealerTurn:
		err = m.table.Advance()
	case game.GameOver:
		err = m.table.NewRound()
	default:
		return
	}
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(m.table.Message()))
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	snap := m.table.Snapshot()

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane(snap)
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 0 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#626262"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane(snap)
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left)
	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane lists the round state and every seat's stack
func (m *TUIModel) renderSidebarPane(snap game.Snapshot) string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Round #%d", snap.Round)))
	content.WriteString(" ")
	content.WriteString(InfoStyle.Render(snap.Phase.String()))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe: %d cards", snap.ShoeRemaining)))
	content.WriteString("\n\n")

	content.WriteString(InfoStyle.Render("Players:"))
	content.WriteString("\n")
	for i, p := range snap.Players {
		marker := "  "
		if i == snap.CurrentPlayer {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s: $%d", marker, p.Name, p.Chips)
		if bets := p.Bets(); len(bets) > 0 {
			parts := make([]string, len(bets))
			for j, b := range bets {
				parts[j] = fmt.Sprintf("$%d", b)
			}
			line += " (bet " + strings.Join(parts, "/") + ")"
		}
		if p.SittingOut {
			line = InfoStyle.Render(line + " sitting out")
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	return content.String()
}

// renderActionPane shows the dealer, the acting player and the input
func (m *TUIModel) renderActionPane(snap game.Snapshot) string {
	var content strings.Builder

	dealer := fmt.Sprintf("Dealer: %s", m.formatCards(snap.Dealer.Cards))
	if len(snap.Dealer.Cards) > 0 {
		dealer += fmt.Sprintf(" (%d)", snap.Dealer.Total)
	}
	content.WriteString(DealerStyle.Render(dealer))
	content.WriteString("\n")

	if snap.CurrentPlayer >= 0 {
		p := snap.Players[snap.CurrentPlayer]
		if snap.Phase == game.PlayerTurn {
			for i, h := range p.Hands {
				line := fmt.Sprintf("%s hand %d: %s %s $%d", p.Name, i+1, m.formatCards(h.Cards), formatTotal(h), h.Bet)
				if i == snap.CurrentHand {
					content.WriteString(CurrentHandStyle.Render(line))
				} else {
					content.WriteString(HandInfoStyle.Render(line))
				}
				content.WriteString("\n")
			}
		} else {
			content.WriteString(HandInfoStyle.Render(fmt.Sprintf("%s to bet ($%d-$%d), stack $%d",
				p.Name, m.table.Rules().MinBet, m.table.Rules().MaxBet, p.Chips)))
			content.WriteString("\n")
		}
	}

	content.WriteString(m.renderAvailableActions(snap.LegalActions))
	content.WriteString("\n")

	if snap.Message != "" {
		content.WriteString(snap.Message)
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// renderAvailableActions renders the commands the engine will accept
func (m *TUIModel) renderAvailableActions(legal []game.Action) string {
	var actions []string
	for _, a := range legal {
		switch a {
		case game.ActionBet:
			actions = append(actions, SuccessStyle.Render("[bet]"))
		case game.ActionHit:
			actions = append(actions, SuccessStyle.Render("[hit]"))
		case game.ActionStand:
			actions = append(actions, SuccessStyle.Render("[stand]"))
		case game.ActionDouble:
			actions = append(actions, WarningStyle.Render("[double]"))
		case game.ActionSplit:
			actions = append(actions, WarningStyle.Render("[split]"))
		case game.ActionAdvance:
			actions = append(actions, SuccessStyle.Render("[advance]"))
		case game.ActionNewRound:
			actions = append(actions, InfoStyle.Render("[new]"))
		}
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors
func (m *TUIModel) formatCards(cs []cards.Card) string {
	if len(cs) == 0 {
		return ""
	}

	formatted := make([]string, len(cs))
	for i, card := range cs {
		switch {
		case !card.FaceUp:
			formatted[i] = HiddenCardStyle.Render(card.Visible())
		case card.IsRed():
			formatted[i] = RedCardStyle.Render(card.String())
		default:
			formatted[i] = BlackCardStyle.Render(card.String())
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatTotal(h game.HandView) string {
	if h.Soft {
		return fmt.Sprintf("soft %d", h.Total)
	}
	return strconv.Itoa(h.Total)
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log
func (m *TUIModel) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}
