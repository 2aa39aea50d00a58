package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yiblet/pix/internal/clipboard"
	"github.com/yiblet/pix/internal/gallery"
	"github.com/yiblet/pix/internal/history"
)

// FlashDuration is how long a notice stays on the status line.
const FlashDuration = 2 * time.Second

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	SearchMode
	HelpMode
)

func (m UIMode) String() string {
	switch m {
	case NormalMode:
		return "normal"
	case SearchMode:
		return "search"
	case HelpMode:
		return "help"
	default:
		return "unknown"
	}
}

// AppMsg represents messages that the app component handles
type AppMsg interface {
	isAppMsg()
}

// fetchDoneMsg is sent when a controller operation returns.
type fetchDoneMsg struct{}

func (fetchDoneMsg) isAppMsg() {}

type flashExpiredMsg struct {
	id int
}

func (flashExpiredMsg) isAppMsg() {}

// Option configures an AppModel
type Option func(*AppModel)

// WithHistory records submitted queries and enables recall in the query bar.
func WithHistory(h *history.Manager) Option {
	return func(a *AppModel) { a.history = h }
}

// WithClipboard sets the clipboard used by the copy key.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(a *AppModel) { a.clipboard = c }
}

// WithInitialQuery submits query as soon as the program starts.
func WithInitialQuery(query string) Option {
	return func(a *AppModel) { a.initialQuery = query }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *AppModel) { a.logger = logger.With().Str("component", "tui").Logger() }
}

// AppModel is the bubbletea model for the gallery. Rendering always reads a
// fresh controller snapshot; controller calls run as commands so the event
// loop never blocks on the network.
type AppModel struct {
	Width       int
	Height      int
	CurrentMode UIMode

	// Sub-models
	Grid    GridModel
	Search  SearchModel
	Spinner spinner.Model

	FlashMessage string
	FlashLevel   gallery.Level
	FlashExpiry  time.Time

	ctx          context.Context
	controller   *gallery.Controller
	notices      *ChannelNotifier
	history      *history.Manager
	clipboard    clipboard.Clipboard
	logger       zerolog.Logger
	initialQuery string

	flashID  int
	spinning bool
	pending  int

	// run turns a controller call into a command; tests replace it.
	run func(op func(context.Context)) tea.Cmd
}

// NewAppModel creates the app. notices must be the notifier the controller
// was built with.
func NewAppModel(ctx context.Context, controller *gallery.Controller, notices *ChannelNotifier, opts ...Option) *AppModel {
	defaultWidth := 120
	defaultHeight := 30

	a := &AppModel{
		Width:       defaultWidth,
		Height:      defaultHeight,
		CurrentMode: NormalMode,
		Grid:        NewGridModel(defaultWidth, gridHeight(defaultHeight)),
		Search:      NewSearchModel(),
		Spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		ctx:         ctx,
		controller:  controller,
		notices:     notices,
		logger:      zerolog.Nop(),
	}
	a.run = a.runAsync

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// gridHeight is the window height minus header and status lines
func gridHeight(windowHeight int) int {
	return max(windowHeight-4, cardHeight)
}

func (a *AppModel) runAsync(op func(context.Context)) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		op(ctx)
		return fetchDoneMsg{}
	}
}

// Init starts listening for notices and submits the initial query, if any
func (a *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{a.notices.Wait()}
	if a.initialQuery != "" {
		cmds = append(cmds, a.submit(a.initialQuery))
	}
	return tea.Batch(cmds...)
}

// Update handles app-level messages and routes to sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleWindowResize(m)
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case fetchDoneMsg:
		a.pending = max(a.pending-1, 0)
		a.Grid.Update(ClampCursorMsg{Count: a.controller.State().Len()})
		return a, nil
	case noticeMsg:
		return a, tea.Batch(a.setFlash(m.Message, m.Level), a.notices.Wait())
	case flashExpiredMsg:
		if m.id == a.flashID {
			a.FlashMessage = ""
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	case spinner.TickMsg:
		if a.pending == 0 && !a.controller.State().Loading {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.Spinner, cmd = a.Spinner.Update(m)
		return a, cmd
	}

	return a, nil
}

// handleWindowResize processes window resize events
func (a *AppModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.Width = max(msg.Width, 30)
	a.Height = max(msg.Height, 10)
	a.Grid.Update(ResizeGridMsg{Width: a.Width, Height: gridHeight(a.Height)})
	a.Search.Input.Width = max(a.Width-4, 10)
	return a, nil
}

// handleKeyPress dispatches on the current mode first
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case SearchMode:
		return a.handleSearchModeKeys(msg)
	case HelpMode:
		return a.handleHelpModeKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg.String())
	}
}

// handleSearchModeKeys processes keys while the query bar has focus
func (a *AppModel) handleSearchModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.Search.Update(CancelSearchMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	case "enter":
		query := a.Search.Submit()
		a.CurrentMode = NormalMode
		return a, a.submit(query)
	case "up", "ctrl+p":
		return a, a.Search.Update(HistoryPrevMsg{})
	case "down", "ctrl+n":
		return a, a.Search.Update(HistoryNextMsg{})
	default:
		return a, a.Search.HandleKey(msg)
	}
}

// handleHelpModeKeys processes keys while the help screen is shown
func (a *AppModel) handleHelpModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a, tea.Quit
	case "z", "esc", "q":
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// handleNormalModeKeys processes keys on the grid
func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	state := a.controller.State()
	count := state.Len()

	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "z":
		a.CurrentMode = HelpMode
	case "/":
		a.CurrentMode = SearchMode
		return a, a.Search.Update(StartSearchMsg{Current: state.Query, History: a.recentQueries()})
	case "esc":
		if state.OverlayVisible() {
			a.controller.DismissOverlay()
		}
	case "enter", " ":
		if a.Grid.Cursor < count {
			a.controller.SelectItem(state.Items[a.Grid.Cursor])
		}
	case "m":
		return a, a.loadMore()
	case "c":
		return a, a.copyURL(state)
	case "left", "h":
		a.Grid.Update(MoveCursorMsg{Delta: -1, Count: count})
	case "right", "l":
		a.Grid.Update(MoveCursorMsg{Delta: 1, Count: count})
	case "up", "k":
		a.Grid.Update(MoveRowMsg{Rows: -1, Count: count})
	case "down", "j":
		a.Grid.Update(MoveRowMsg{Rows: 1, Count: count})
	case "g", "home":
		a.Grid.Update(GoToTopMsg{})
	case "G", "end":
		a.Grid.Update(GoToBottomMsg{Count: count})
	}

	return a, nil
}

// submit records query and hands it to the controller
func (a *AppModel) submit(query string) tea.Cmd {
	h := a.history
	logger := a.logger
	a.Grid.Update(GoToTopMsg{})
	return a.dispatch(func(ctx context.Context) {
		if h != nil {
			if _, err := h.Record(query); err != nil {
				logger.Warn().Err(err).Str("query", query).Msg("Failed to record query")
			}
		}
		a.controller.SubmitQuery(ctx, query)
	})
}

func (a *AppModel) loadMore() tea.Cmd {
	return a.dispatch(func(ctx context.Context) {
		a.controller.LoadMore(ctx)
	})
}

// dispatch runs op through the runner and keeps the spinner going
func (a *AppModel) dispatch(op func(context.Context)) tea.Cmd {
	a.pending++
	cmds := []tea.Cmd{a.run(op)}
	if !a.spinning {
		a.spinning = true
		cmds = append(cmds, a.Spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (a *AppModel) recentQueries() []string {
	if a.history == nil {
		return nil
	}
	queries, err := a.history.Queries()
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to load query history")
		return nil
	}
	return queries
}

// copyURL copies the open image, or the card under the cursor
func (a *AppModel) copyURL(state gallery.State) tea.Cmd {
	var item *gallery.Item
	switch {
	case state.Selection != nil:
		item = state.Selection
	case a.Grid.Cursor < state.Len():
		item = &state.Items[a.Grid.Cursor]
	default:
		return a.setFlash("No image selected", gallery.LevelError)
	}

	if a.clipboard == nil {
		return a.setFlash("Clipboard not available", gallery.LevelError)
	}
	if err := clipboard.WriteText(a.clipboard, item.LargeImageURL); err != nil {
		a.logger.Warn().Err(err).Int64("image", item.ID).Msg("Clipboard write failed")
		return a.setFlash(fmt.Sprintf("Copy failed: %v", err), gallery.LevelError)
	}
	return a.setFlash(fmt.Sprintf("Copied URL of image #%d", item.ID), gallery.LevelInfo)
}

// setFlash shows message on the status line for FlashDuration
func (a *AppModel) setFlash(message string, level gallery.Level) tea.Cmd {
	a.flashID++
	id := a.flashID
	a.FlashMessage = message
	a.FlashLevel = level
	a.FlashExpiry = time.Now().Add(FlashDuration)
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{id: id}
	})
}

// View renders the application
func (a *AppModel) View() string {
	return AppView(a, a.controller.State())
}

// AppView renders the complete application for one controller snapshot
func AppView(a *AppModel, state gallery.State) string {
	if a.CurrentMode == HelpMode {
		return renderHelpView(a) + "\n" + renderStatusLine(a, state)
	}

	var b strings.Builder
	b.WriteString(renderHeader(a, state))
	b.WriteString("\n")
	b.WriteString(GridView(a.Grid, state.Items, state.Selection))
	b.WriteString("\n")
	b.WriteString(renderStatusLine(a, state))
	view := b.String()

	if state.Selection != nil {
		modal := NewModalModel()
		modal.Update(ShowImageDetails(*state.Selection))
		view = ModalView(modal, view, a.Width, a.Height)
	}
	return view
}

// renderHeader shows the query bar or the current query with result counts
func renderHeader(a *AppModel, state gallery.State) string {
	if a.CurrentMode == SearchMode {
		return SearchView(a.Search) + "\n"
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("pix")
	if !state.Submitted {
		return title + "\n"
	}

	summary := fmt.Sprintf("%q  %d", state.Query, state.Len())
	if state.TotalKnown {
		summary += fmt.Sprintf(" of %d", state.TotalCount)
	}
	if state.Page > 0 {
		summary += fmt.Sprintf("  page %d", state.Page)
	}
	return title + "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(summary) + "\n"
}

// renderStatusLine renders the bottom line: a live notice, the loading
// indicator, or key hints
func renderStatusLine(a *AppModel, state gallery.State) string {
	style := lipgloss.NewStyle().Width(a.Width)

	if a.FlashMessage != "" && time.Now().Before(a.FlashExpiry) {
		color := "10"
		if a.FlashLevel == gallery.LevelError {
			color = "9"
		}
		return style.Foreground(lipgloss.Color(color)).Render(a.FlashMessage)
	}

	if state.Loading {
		return style.Render(a.Spinner.View() + " Loading...")
	}

	var hints []string
	switch a.CurrentMode {
	case SearchMode:
		hints = append(hints, "enter search", "↑/↓ history", "esc cancel")
	case HelpMode:
		hints = append(hints, "z back", "q back")
	default:
		if state.ShowLoadMore() {
			hints = append(hints, lipgloss.NewStyle().Bold(true).Render("[m] Load more"))
		}
		hints = append(hints, "/ search", "z help", "q quit")
	}
	return style.Render(strings.Join(hints, "  ·  "))
}

// renderHelpView renders the key reference
func renderHelpView(a *AppModel) string {
	helpContent := `pix - Pixabay image search

SEARCH:
  /           Focus the query bar
  Enter       Submit the query (in the query bar)
  ↑ / ↓       Recall earlier queries (in the query bar)
  Esc         Leave the query bar

RESULTS:
  h j k l     Move between images (arrow keys work too)
  g / G       First / last image
  Enter       Open or close the image under the cursor
  Esc         Close the open image
  m           Load the next page of results
  c           Copy the large image URL

GLOBAL:
  z           Toggle this help screen
  q           Quit
  Ctrl+c      Force quit`

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(max(a.Width-4, 20)).
		Height(max(a.Height-4, 5)).
		Render(helpContent)
}

// Run starts the program and blocks until it exits
func Run(ctx context.Context, model *AppModel) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
