package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-islands/internal/game"
	"github.com/vovakirdan/tui-islands/internal/match"
)

// matchStage tracks which screen of a running match the player sees.
type matchStage int

const (
	stagePlacing      matchStage = iota // Positioning islands
	stageWaitingReady                   // Own islands set, rival still placing
	stageBattle                         // Alternate guessing
	stageOver                           // Match decided or abandoned
)

// matchCallTimeout bounds the synchronous calls into the session. The
// session goroutine answers in microseconds unless it is gone.
const matchCallTimeout = 3 * time.Second

// matchEventMsg wraps a session event for the Bubble Tea loop.
type matchEventMsg struct {
	evt match.Event
}

// MatchModel drives one match from island placement to the result
// screen. It owns no game state: every action goes through the session
// and the model renders the PlayerView snapshots it gets back.
type MatchModel struct {
	session *match.Session
	handle  *match.ChannelHandle
	seat    game.PlayerID
	name    string

	stage matchStage
	view  match.PlayerView

	cursor game.Coordinate
	pick   int // index into game.IslandTypes()

	sunk []game.IslandType // rival islands this player destroyed

	status      string
	statusIsErr bool

	winnerKnown bool
	winner      game.PlayerID
	abandoned   bool

	width     int
	height    int
	ticks     int
	keyMapper *KeyMapper
	quitting  bool
	back      bool
}

// NewMatchModel creates the model for a seated player. The handle must
// already be subscribed so no event between lobby and first render is
// lost.
func NewMatchModel(session *match.Session, handle *match.ChannelHandle, seat game.PlayerID, name string, width, height int) MatchModel {
	m := MatchModel{
		session:   session,
		handle:    handle,
		seat:      seat,
		name:      name,
		cursor:    game.Coordinate{Row: 5, Col: 5},
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
	defer cancel()
	if view, err := session.View(ctx, seat); err == nil {
		m.view = view
		m.stage = stageForView(view)
	}

	return m
}

// stageForView derives the screen from a fresh snapshot.
func stageForView(view match.PlayerView) matchStage {
	switch view.Phase {
	case game.PhaseInitialized, game.PhasePlayersSet:
		if view.YouReady {
			return stageWaitingReady
		}
		return stagePlacing
	case game.PhasePlayer1Turn, game.PhasePlayer2Turn:
		return stageBattle
	case game.PhaseGameOver:
		return stageOver
	}
	return stagePlacing
}

// Init arms the event bridge and the waiting animation.
func (m MatchModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), tickCmd(2))
}

// waitForEvent blocks until the session publishes something or shuts
// down. The session closing is folded into SessionClosedEvent so the
// update loop has a single exit path.
func (m MatchModel) waitForEvent() tea.Cmd {
	events := m.handle.Events()
	done := m.session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return matchEventMsg{evt}
		case <-done:
			return matchEventMsg{evt: match.SessionClosedEvent{}}
		}
	}
}

// refreshView fetches a new snapshot, keeping the old one when the
// session is already gone.
func (m MatchModel) refreshView() MatchModel {
	ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
	defer cancel()
	if view, err := m.session.View(ctx, m.seat); err == nil {
		m.view = view
	}
	return m
}

// Update handles messages.
func (m MatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.ticks++
		return m, tickCmd(2)

	case matchEventMsg:
		return m.handleEvent(msg.evt)
	}

	return m, nil
}

func (m MatchModel) handleEvent(evt match.Event) (tea.Model, tea.Cmd) {
	switch evt := evt.(type) {
	case match.PlayerJoinedEvent:
		m = m.refreshView()
		m.setInfo(fmt.Sprintf("%s sails in. Position your islands!", evt.Name))

	case match.IslandsReadyEvent:
		if evt.Player != m.seat {
			m = m.refreshView()
			m.setInfo("Your rival's islands are set")
		}

	case match.BattleStartedEvent:
		m = m.refreshView()
		m.stage = stageBattle
		if evt.FirstTurn == m.seat {
			m.setInfo("Battle begins. You fire first")
		} else {
			m.setInfo("Battle begins. Your rival fires first")
		}

	case match.GuessResolvedEvent:
		if evt.By != m.seat {
			m = m.refreshView()
			m.setInfo(rivalShotText(evt))
		}

	case match.GameOverEvent:
		m = m.refreshView()
		m.stage = stageOver
		m.winnerKnown = true
		m.winner = evt.Winner

	case match.SessionClosedEvent:
		if m.stage != stageOver {
			m.stage = stageOver
			m.abandoned = true
		}
		// The session is gone, nothing more will arrive.
		return m, nil
	}

	return m, m.waitForEvent()
}

// rivalShotText describes an incoming shot against this player's board.
func rivalShotText(evt match.GuessResolvedEvent) string {
	if evt.Result == game.Miss {
		return fmt.Sprintf("Rival fired at %s and missed", evt.Coordinate)
	}
	if evt.Destroyed != game.IslandNone {
		return fmt.Sprintf("Rival destroyed your %s island!", islandLabel(evt.Destroyed))
	}
	return fmt.Sprintf("Rival hit your island at %s", evt.Coordinate)
}

func (m MatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToGridAction(msg)

	if action == GridActionQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if action == GridActionBack {
		// Leaving a live match abandons it for both players.
		m.back = true
		return m, tea.Quit
	}

	switch m.stage {
	case stagePlacing:
		return m.handlePlacingKey(action)
	case stageBattle:
		return m.handleBattleKey(action)
	case stageOver:
		if action == GridActionConfirm {
			m.back = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m MatchModel) handlePlacingKey(action GridAction) (tea.Model, tea.Cmd) {
	switch action {
	case GridActionUp, GridActionDown, GridActionLeft, GridActionRight:
		m.cursor = moveCursor(m.cursor, action)
		m.clearStatus()

	case GridActionNextShape:
		m.pick = (m.pick + 1) % len(game.IslandTypes())
		m.clearStatus()

	case GridActionPrevShape:
		m.pick = (m.pick + len(game.IslandTypes()) - 1) % len(game.IslandTypes())
		m.clearStatus()

	case GridActionConfirm:
		typ := game.IslandTypes()[m.pick]
		ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
		defer cancel()
		if err := m.session.PositionIsland(ctx, m.seat, typ, m.cursor.Row, m.cursor.Col); err != nil {
			m.setError(friendlyMatchError(err))
			return m, nil
		}
		m = m.refreshView()
		m.setInfo(fmt.Sprintf("Placed the %s island", islandLabel(typ)))
		m.pick = m.nextUnplacedPick()

	case GridActionReady:
		if !m.view.Board.AllIslandsPlaced() {
			m.setError("Place all five islands first")
			return m, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
		defer cancel()
		if err := m.session.SetIslandsReady(ctx, m.seat); err != nil {
			m.setError(friendlyMatchError(err))
			return m, nil
		}
		m = m.refreshView()
		m.clearStatus()
		// Straight to battle when the rival was ready first, otherwise
		// the waiting screen until BattleStartedEvent arrives.
		m.stage = stageForView(m.view)
	}

	return m, nil
}

func (m MatchModel) handleBattleKey(action GridAction) (tea.Model, tea.Cmd) {
	switch action {
	case GridActionUp, GridActionDown, GridActionLeft, GridActionRight:
		m.cursor = moveCursor(m.cursor, action)
		m.clearStatus()

	case GridActionConfirm:
		if turn, ok := m.view.Phase.Turn(); !ok || turn != m.seat {
			m.setError("Wait for your turn")
			return m, nil
		}
		if m.view.Shots.Contains(m.cursor) {
			m.setError("You already fired there")
			return m, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), matchCallTimeout)
		defer cancel()
		reply, err := m.session.Guess(ctx, m.seat, m.cursor.Row, m.cursor.Col)
		if err != nil {
			m.setError(friendlyMatchError(err))
			return m, nil
		}
		m = m.refreshView()
		m.setInfo(m.describeShot(reply))
		if reply.Destroyed != game.IslandNone {
			m.sunk = append(m.sunk, reply.Destroyed)
		}
		if reply.Phase == game.PhaseGameOver {
			m.stage = stageOver
			m.winnerKnown = true
			m.winner = m.seat
		}
	}

	return m, nil
}

func (m MatchModel) describeShot(reply match.GuessReply) string {
	if reply.Result == game.Miss {
		return fmt.Sprintf("Splash. Nothing at %s", m.cursor)
	}
	if reply.Destroyed != game.IslandNone {
		return fmt.Sprintf("You destroyed their %s island!", islandLabel(reply.Destroyed))
	}
	return fmt.Sprintf("Direct hit at %s", m.cursor)
}

// moveCursor shifts the cursor one cell, staying on the grid.
func moveCursor(c game.Coordinate, action GridAction) game.Coordinate {
	switch action {
	case GridActionUp:
		if c.Row > 1 {
			c.Row--
		}
	case GridActionDown:
		if c.Row < game.BoardSize {
			c.Row++
		}
	case GridActionLeft:
		if c.Col > 1 {
			c.Col--
		}
	case GridActionRight:
		if c.Col < game.BoardSize {
			c.Col++
		}
	}
	return c
}

// nextUnplacedPick returns the index of the next island type that is
// not yet on the board, scanning forward from the current pick. When
// everything is placed the pick stays put.
func (m MatchModel) nextUnplacedPick() int {
	types := game.IslandTypes()
	for i := 1; i <= len(types); i++ {
		idx := (m.pick + i) % len(types)
		if _, placed := m.view.Board[types[idx]]; !placed {
			return idx
		}
	}
	return m.pick
}

// ghostCells previews the picked shape at the cursor. A shape that does
// not fit or would overlap comes back in the bad set.
func (m MatchModel) ghostCells() (ghost, bad game.CoordinateSet) {
	typ := game.IslandTypes()[m.pick]
	island, err := game.NewIsland(typ, m.cursor)
	if err != nil {
		return nil, game.NewCoordinateSet(m.cursor)
	}
	for t, placed := range m.view.Board {
		if t == typ {
			continue
		}
		for c := range island.Cells {
			if placed.Cells.Contains(c) {
				return nil, island.Cells
			}
		}
	}
	return island.Cells, nil
}

func (m *MatchModel) setInfo(text string) {
	m.status = text
	m.statusIsErr = false
}

func (m *MatchModel) setError(text string) {
	m.status = text
	m.statusIsErr = true
}

func (m *MatchModel) clearStatus() {
	m.status = ""
}

// View renders the current stage.
func (m MatchModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.stage {
	case stagePlacing:
		return m.viewPlacing()
	case stageWaitingReady:
		return m.viewWaitingReady()
	case stageBattle:
		return m.viewBattle()
	case stageOver:
		return m.viewOver()
	}
	return ""
}

func (m MatchModel) viewPlacing() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(theme.HUDTitle.Render("PLACE YOUR ISLANDS"))
	b.WriteString("\n\n")

	if m.view.Phase == game.PhaseInitialized {
		b.WriteString("  ")
		b.WriteString(theme.TurnWaiting.Render("Waiting for a rival to arrive" + waitingDots(m.ticks)))
		b.WriteString("\n\n")
	}

	ghost, bad := m.ghostCells()
	b.WriteString(indentBlock(renderOwnBoard(m.view.Board, ghost, bad, &m.cursor), 2))
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(theme.HUDLabel.Render("Shape: "))
	b.WriteString(m.shapePickerLine())
	b.WriteString("\n")

	if m.view.OpponentReady {
		b.WriteString("\n  ")
		b.WriteString(theme.HUDValue.Render(fmt.Sprintf("%s is ready and waiting", m.opponentLabel())))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n  ")
	b.WriteString(theme.HUDControls.Render("WASD/Arrows: Move  |  Tab: Next shape  |  Enter: Place  |  R: Ready  |  Esc: Leave"))
	b.WriteString("\n")

	return b.String()
}

func (m MatchModel) shapePickerLine() string {
	theme := GetIslandsTheme()
	parts := make([]string, 0, len(game.IslandTypes()))
	for i, t := range game.IslandTypes() {
		label := islandLabel(t)
		if _, placed := m.view.Board[t]; placed {
			label += " ✓"
		}
		if i == m.pick {
			parts = append(parts, theme.HUDValue.Render("["+label+"]"))
		} else {
			parts = append(parts, theme.HUDLabel.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m MatchModel) viewWaitingReady() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n  ")
	b.WriteString(theme.HUDTitle.Render("ISLANDS SET"))
	b.WriteString("\n\n")
	b.WriteString(indentBlock(renderOwnBoard(m.view.Board, nil, nil, nil), 2))
	b.WriteString("\n  ")
	b.WriteString(theme.TurnWaiting.Render(fmt.Sprintf("Waiting for %s to finish placing", m.opponentLabel()) + waitingDots(m.ticks)))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n  ")
	b.WriteString(theme.HUDControls.Render("Esc: Leave  |  Q: Quit"))
	b.WriteString("\n")

	return b.String()
}

func (m MatchModel) viewBattle() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n  ")
	if turn, ok := m.view.Phase.Turn(); ok && turn == m.seat {
		b.WriteString(theme.TurnActive.Render("YOUR TURN, pick a target"))
	} else {
		b.WriteString(theme.TurnWaiting.Render(fmt.Sprintf("%s is aiming%s", m.opponentLabel(), waitingDots(m.ticks))))
	}
	b.WriteString("\n\n")

	var targetCursor *game.Coordinate
	if turn, ok := m.view.Phase.Turn(); ok && turn == m.seat {
		targetCursor = &m.cursor
	}

	left := theme.HUDLabel.Render("YOUR WATERS") + "\n" + renderOwnBoard(m.view.Board, nil, nil, nil)
	right := theme.HUDLabel.Render("RIVAL WATERS") + "\n" + renderTargetGrid(m.view.Shots, targetCursor)
	b.WriteString(indentBlock(lipgloss.JoinHorizontal(lipgloss.Top, left, "      ", right), 2))
	b.WriteString("\n")

	if len(m.sunk) > 0 {
		labels := make([]string, len(m.sunk))
		for i, t := range m.sunk {
			labels[i] = islandLabel(t)
		}
		b.WriteString("  ")
		b.WriteString(theme.HUDLabel.Render("Sunk: "))
		b.WriteString(theme.HUDValue.Render(strings.Join(labels, ", ")))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(indentBlock(boardLegend(), 2))
	b.WriteString("\n  ")
	b.WriteString(theme.HUDControls.Render("WASD/Arrows: Aim  |  Enter: Fire  |  Esc: Leave"))
	b.WriteString("\n")

	return b.String()
}

func (m MatchModel) viewOver() string {
	theme := GetIslandsTheme()
	var b strings.Builder

	b.WriteString("\n  ")
	switch {
	case m.abandoned:
		b.WriteString(theme.TurnWaiting.Render("MATCH ABANDONED"))
		b.WriteString("\n\n  ")
		b.WriteString("Your rival left the duel.")
	case m.winnerKnown && m.winner == m.seat:
		b.WriteString(theme.Victory.Render("VICTORY"))
		b.WriteString("\n\n  ")
		b.WriteString(fmt.Sprintf("Every rival island destroyed in %d shots.", m.view.Shots.Count()))
	case m.winnerKnown:
		b.WriteString(theme.Defeat.Render("DEFEAT"))
		b.WriteString("\n\n  ")
		b.WriteString(fmt.Sprintf("%s destroyed your last island.", m.opponentLabel()))
	default:
		b.WriteString(theme.HUDTitle.Render("MATCH OVER"))
	}
	b.WriteString("\n\n")
	b.WriteString(indentBlock(renderOwnBoard(m.view.Board, nil, nil, nil), 2))
	b.WriteString("\n  ")
	b.WriteString(theme.HUDControls.Render("Enter: Back  |  Q: Quit"))
	b.WriteString("\n")

	return b.String()
}

func (m MatchModel) statusLine() string {
	if m.status == "" {
		return "\n"
	}
	theme := GetIslandsTheme()
	if m.statusIsErr {
		return "\n  " + theme.ErrorText.Render(m.status) + "\n"
	}
	return "\n  " + theme.HUDValue.Render(m.status) + "\n"
}

func (m MatchModel) opponentLabel() string {
	if m.view.OpponentName != "" {
		return m.view.OpponentName
	}
	return "your rival"
}

// BackToMenu reports whether the player wants the menu rather than a
// full quit.
func (m MatchModel) BackToMenu() bool {
	return m.back
}

// IsQuitting reports whether the player quit outright.
func (m MatchModel) IsQuitting() bool {
	return m.quitting
}

// islandLabel is the human name of a shape.
func islandLabel(t game.IslandType) string {
	switch t {
	case game.IslandLShape:
		return "L-shape"
	case game.IslandSShape:
		return "S-shape"
	default:
		return t.String()
	}
}

// indentBlock prefixes every line of a block with n spaces.
func indentBlock(block string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// friendlyMatchError maps session and rule errors to a short message.
func friendlyMatchError(err error) string {
	var ruleErr *game.RuleViolationError
	switch {
	case errors.Is(err, game.ErrOverlappingIsland):
		return "Islands cannot overlap"
	case errors.Is(err, game.ErrInvalidCoordinate):
		return "That shape does not fit there"
	case errors.Is(err, game.ErrNotAllIslandsPlaced):
		return "Place all five islands first"
	case errors.Is(err, match.ErrSessionClosed):
		return "The match has ended"
	case errors.As(err, &ruleErr):
		switch ruleErr.Phase {
		case game.PhaseInitialized:
			return "Waiting for a rival to arrive"
		case game.PhasePlayer1Turn, game.PhasePlayer2Turn:
			if _, ok := ruleErr.Action.(game.Guess); ok {
				return "Wait for your turn"
			}
			return "The battle is already underway"
		case game.PhaseGameOver:
			return "The match is over"
		}
		return "You cannot do that right now"
	}
	return err.Error()
}

// RunMatch runs a match to completion in its own program. It returns
// whether the player asked for the menu afterwards.
func RunMatch(session *match.Session, handle *match.ChannelHandle, seat game.PlayerID, name string, width, height int) (backToMenu bool, err error) {
	m := NewMatchModel(session, handle, seat, name, width, height)

	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running match: %w", err)
	}

	final, ok := finalModel.(MatchModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type: %T", finalModel)
	}

	return final.BackToMenu(), nil
}
