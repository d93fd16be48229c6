package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prepsearch/internal/retrieval"
)

// AnswerPort is the TUI-facing subset of the retrieval service.
type AnswerPort interface {
	Answer(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// Model is the Bubble Tea model for the query console.
type Model struct {
	service  AnswerPort
	input    textinput.Model
	viewport viewport.Model
	matches  []retrieval.Match
	summary  string
	status   string
	cursor   int
	ready    bool
}

// New creates a new console model. The summary line is shown in the header.
func New(service AnswerPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question (optional role:<r> company:<c> filters)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Indexed. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentMatch())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			if raw != "" {
				req := parseRequest(raw)
				res, err := m.service.Answer(context.Background(), req)
				switch {
				case err != nil:
					m.status = "Error: " + err.Error()
					m.matches = nil
				case res.Status != retrieval.StatusSuccess:
					m.status = res.Message
					m.matches = nil
				default:
					m.status = fmt.Sprintf("Results for %q", req.Query)
					m.matches = res.Matches
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderCurrentMatch())
				return m, nil
			}
		case "down":
			if len(m.matches) > 0 {
				m.cursor = (m.cursor + 1) % len(m.matches)
				m.viewport.SetContent(m.renderCurrentMatch())
				return m, nil
			}
		case "up":
			if len(m.matches) > 0 {
				m.cursor = (m.cursor - 1 + len(m.matches)) % len(m.matches)
				m.viewport.SetContent(m.renderCurrentMatch())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout and current match.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Interview Tip Search")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentMatch() string {
	if len(m.matches) == 0 {
		return "No results yet."
	}
	r := m.matches[m.cursor]
	head := fmt.Sprintf("Result %d/%d  score=%.3f", m.cursor+1, len(m.matches), r.Score)
	title := titleStyle.Render(r.Title)
	origin := originStyle.Render(r.Origin)
	lines := []string{head, "", title + "  " + origin, "", r.Text}
	if r.Permalink != "" {
		lines = append(lines, "", linkStyle.Render(r.Permalink))
	}
	return strings.Join(lines, "\n")
}

// parseRequest pulls role:<value> and company:<value> tokens out of the raw
// input; the rest is the query text. Values run to the next whitespace.
func parseRequest(raw string) retrieval.Request {
	var req retrieval.Request
	var queryWords []string
	for _, word := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(word, "role:"):
			req.Role = strings.TrimPrefix(word, "role:")
		case strings.HasPrefix(word, "company:"):
			req.Company = strings.TrimPrefix(word, "company:")
		default:
			queryWords = append(queryWords, word)
		}
	}
	req.Query = strings.Join(queryWords, " ")
	return req
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	originStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
