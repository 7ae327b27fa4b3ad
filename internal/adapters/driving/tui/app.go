package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driving/tui/messages"
	"github.com/vaultchat-labs/vaultchat-cli/internal/adapters/driving/tui/styles"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/domain"
	"github.com/vaultchat-labs/vaultchat-cli/internal/core/ports/driving"
)

// searchPrefix triggers an inline knowledge-base search instead of a
// chat turn.
const searchPrefix = "/search "

// Options configures app behaviour that comes from user settings
// rather than from ports.
type Options struct {
	// SystemPrompt is prepended to every turn.
	SystemPrompt string

	// Temperature is passed through to the model.
	Temperature float64

	// Model names the chat model for new conversations.
	Model string

	// RAGEnabled injects retrieved vault context into turns.
	RAGEnabled bool
}

// Entry is one rendered item in the transcript.
type Entry struct {
	// Speaker is the label shown before the text ("you", "assistant",
	// "search", "error").
	Speaker string

	// Text is the entry body.
	Text string

	// Citations are the vault sources behind an assistant reply.
	Citations []domain.Citation
}

// App is the chat TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	opts   Options
	ctx    context.Context
	styles *styles.Styles

	input    textinput.Model
	viewport viewport.Model

	// conversation backs the session; created lazily on the first turn.
	conversation *domain.Conversation

	transcript []Entry
	waiting    bool
	status     string
	err        error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask your vault anything (or /search <query>)"
	ti.CharLimit = 4000
	ti.Focus()

	vp := viewport.New(80, 20)

	return &App{
		ports:    ports,
		opts:     opts,
		ctx:      context.Background(),
		styles:   styles.DefaultStyles(),
		input:    ti,
		viewport: vp,
		status:   "ready",
		width:    80,
		height:   24,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("vaultchat"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.TurnCompleted:
		a.handleTurnCompleted(msg)
		return a, nil

	case messages.SearchCompleted:
		a.handleSearchCompleted(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.status = msg.Err.Error()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case tea.KeyEnter:
		if a.waiting {
			return a, nil
		}
		prompt := strings.TrimSpace(a.input.Value())
		if prompt == "" {
			return a, nil
		}
		a.input.Reset()

		if query, ok := strings.CutPrefix(prompt, searchPrefix); ok {
			if a.ports.Retrieval == nil {
				a.status = "search is not available: no embedding backend configured"
				return a, nil
			}
			a.waiting = true
			a.status = "searching..."
			return a, a.performSearch(strings.TrimSpace(query))
		}

		a.waiting = true
		a.status = "thinking..."
		return a, a.performTurn(prompt)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// performTurn runs one chat turn off the UI goroutine, creating the
// backing conversation on first use.
func (a *App) performTurn(prompt string) tea.Cmd {
	ctx := a.ctx
	ports := a.ports
	opts := a.opts
	conv := a.conversation

	return func() tea.Msg {
		var created *domain.Conversation
		if conv == nil {
			c, err := ports.Chat.NewConversation(ctx, firstLine(prompt), opts.Model)
			if err != nil {
				return messages.TurnCompleted{Prompt: prompt, Err: err}
			}
			conv = c
			created = c
		}

		askOpts := driving.AskOptions{
			RAGEnabled:  opts.RAGEnabled,
			Temperature: opts.Temperature,
		}
		if opts.SystemPrompt != "" {
			askOpts.SystemPrompts = []string{opts.SystemPrompt}
		}

		result, err := ports.Chat.Ask(ctx, conv.ID, prompt, askOpts)
		return messages.TurnCompleted{
			Prompt:       prompt,
			Conversation: created,
			Result:       result,
			Err:          err,
		}
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	ctx := a.ctx
	retrieval := a.ports.Retrieval

	return func() tea.Msg {
		results, err := retrieval.SearchText(ctx, query, 0, "")
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (a *App) handleTurnCompleted(msg messages.TurnCompleted) {
	a.waiting = false
	if msg.Conversation != nil {
		a.conversation = msg.Conversation
	}

	if msg.Err != nil {
		a.err = msg.Err
		a.transcript = append(a.transcript,
			Entry{Speaker: "you", Text: msg.Prompt},
			Entry{Speaker: "error", Text: msg.Err.Error()},
		)
		a.status = "error"
		a.refreshViewport()
		return
	}

	a.err = nil
	a.transcript = append(a.transcript,
		Entry{Speaker: "you", Text: msg.Prompt},
		Entry{
			Speaker:   "assistant",
			Text:      msg.Result.Reply,
			Citations: msg.Result.Citations,
		},
	)
	a.status = turnStatus(msg.Result)
	a.refreshViewport()
}

func (a *App) handleSearchCompleted(msg messages.SearchCompleted) {
	a.waiting = false

	if msg.Err != nil {
		a.err = msg.Err
		a.status = "error"
		a.transcript = append(a.transcript,
			Entry{Speaker: "error", Text: msg.Err.Error()},
		)
		a.refreshViewport()
		return
	}

	a.err = nil
	a.status = fmt.Sprintf("%d results for %q", len(msg.Results), msg.Query)

	var b strings.Builder
	if len(msg.Results) == 0 {
		b.WriteString("no matches for " + msg.Query)
	}
	for i, r := range msg.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s#%d (%.4f): %s", r.Source, r.Ord, r.Score, snippet(r.Text))
	}
	a.transcript = append(a.transcript, Entry{Speaker: "search", Text: b.String()})
	a.refreshViewport()
}

// SetDimensions updates the layout for a new terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Title, input box (3 with border), status bar.
	contentHeight := height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}
	a.viewport.Width = width
	a.viewport.Height = contentHeight
	a.input.Width = width - 6
	a.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the bottom.
func (a *App) refreshViewport() {
	var b strings.Builder
	for i, e := range a.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(a.renderEntry(e))
	}
	a.viewport.SetContent(b.String())
	a.viewport.GotoBottom()
}

func (a *App) renderEntry(e Entry) string {
	var label string
	switch e.Speaker {
	case "you":
		label = a.styles.UserLabel.Render("you")
	case "assistant":
		label = a.styles.AssistantLabel.Render("assistant")
	case "error":
		label = a.styles.Error.Render("error")
	default:
		label = a.styles.Muted.Render(e.Speaker)
	}

	out := label + "\n" + a.styles.Normal.Render(e.Text)
	for _, c := range e.Citations {
		ref := fmt.Sprintf("· %s (%.4f)", c.Source, c.Score)
		if c.Link != "" {
			ref += "  " + c.Link
		}
		out += "\n" + a.styles.Citation.Render(ref)
	}
	return out
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "loading..."
	}

	title := a.styles.Title.Render("vaultchat")
	if a.conversation != nil {
		title += a.styles.Muted.Render("  " + a.conversation.Model)
	}

	status := a.status
	if a.waiting {
		status = a.styles.Warning.Render(status)
	} else if a.err != nil {
		status = a.styles.Error.Render(status)
	}

	return title + "\n" +
		a.viewport.View() + "\n" +
		a.styles.InputField.Render(a.input.View()) + "\n" +
		a.styles.StatusBar.Render(status)
}

// turnStatus formats the cost and budget line shown after a reply.
func turnStatus(r *driving.TurnResult) string {
	s := fmt.Sprintf("turn cost $%.4f", r.CostUSD)
	if r.Budget.BudgetUSD != nil {
		s += fmt.Sprintf(" · spent $%.4f of $%.4f", r.Budget.SpentUSD, *r.Budget.BudgetUSD)
		if !r.Budget.WithinBudget {
			s += " · budget exhausted"
		}
	} else {
		s += fmt.Sprintf(" · spent $%.4f", r.Budget.SpentUSD)
	}
	return s
}

// firstLine derives a conversation title from the opening prompt.
func firstLine(prompt string) string {
	line := prompt
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	const maxTitle = 60
	if len(line) > maxTitle {
		line = line[:maxTitle]
	}
	return line
}

func snippet(text string) string {
	const maxSnippet = 120
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > maxSnippet {
		return text[:maxSnippet] + "..."
	}
	return text
}

// Conversation returns the backing conversation, nil before the first
// turn.
func (a *App) Conversation() *domain.Conversation { return a.conversation }

// Transcript returns the rendered entries.
func (a *App) Transcript() []Entry { return a.transcript }

// Waiting reports whether a turn or search is in flight.
func (a *App) Waiting() bool { return a.waiting }

// Ready reports whether the app has received its first window size.
func (a *App) Ready() bool { return a.ready }

// Err returns the last error, nil after a successful turn.
func (a *App) Err() error { return a.err }
