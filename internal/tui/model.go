package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"manhwarec/internal/domain"
)

type page int

const (
	pageRecommend page = iota
	pageReviews
)

type mode int

const (
	modeTitle mode = iota
	modeKeyword
)

// review form fields, in focus order
const (
	fieldUsername = iota
	fieldRating
	fieldComment
	fieldCount
)

const (
	defaultRating = 3
	titleRows     = 8
)

type resultsMsg struct {
	label string
	recs  []domain.Recommendation
	err   error
}

type reviewsMsg struct {
	stats  domain.Stats
	recent []domain.Review
	err    error
}

type submittedMsg struct{ err error }

// Model is the Bubble Tea model for the terminal front end.
type Model struct {
	ctx         context.Context
	recs        domain.RecommendService
	reviews     domain.ReviewService
	recentLimit int

	page page
	mode mode

	query    textinput.Model
	titles   []string
	filtered []string
	sel      int
	results  []domain.Recommendation
	label    string

	username textinput.Model
	comment  textinput.Model
	rating   int
	focus    int
	stats    domain.Stats
	recent   []domain.Review

	viewport viewport.Model
	status   string
	busy     bool
	ready    bool
}

// New creates the model. Service calls run under ctx; recentLimit is how many
// reviews the review page lists.
func New(ctx context.Context, recs domain.RecommendService, reviews domain.ReviewService, recentLimit int) Model {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	q := textinput.New()
	q.Prompt = "> "
	q.Focus()

	user := textinput.New()
	user.Prompt = "Username: "
	user.CharLimit = 64

	comment := textinput.New()
	comment.Prompt = "Ulasan: "
	comment.CharLimit = 2000

	titles := recs.Titles()
	m := Model{
		ctx:         ctx,
		recs:        recs,
		reviews:     reviews,
		recentLimit: recentLimit,
		query:       q,
		titles:      titles,
		filtered:    titles,
		username:    user,
		comment:     comment,
		rating:      defaultRating,
		viewport:    viewport.New(0, 0),
		status:      "Tab: ganti halaman  Ctrl+T: ganti mode  Enter: kirim",
	}
	m.setPlaceholder()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := boxStyle.GetFrameSize()
		reserved := 6 + bh
		if m.page == pageRecommend && m.mode == modeTitle {
			reserved += titleRows
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil
	case resultsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + errorText(msg.err)
			m.results = nil
		} else {
			m.results = msg.recs
			m.label = msg.label
			m.status = fmt.Sprintf("%d rekomendasi untuk %q", len(msg.recs), msg.label)
		}
		m.refresh()
		return m, nil
	case reviewsMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.stats = msg.stats
			m.recent = msg.recent
		}
		m.refresh()
		return m, nil
	case submittedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + errorText(msg.err)
			return m, nil
		}
		m.status = "Ulasan berhasil dikirim!"
		m.username.Reset()
		m.comment.Reset()
		m.rating = defaultRating
		return m, m.loadReviews(false)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyTab:
			return m.switchPage()
		}
		if m.page == pageRecommend {
			return m.updateRecommend(msg)
		}
		return m.updateReviews(msg)
	}
	return m.updateInputs(msg)
}

func (m Model) switchPage() (tea.Model, tea.Cmd) {
	if m.page == pageRecommend {
		m.page = pageReviews
		m.query.Blur()
		m.focus = fieldUsername
		m.focusField()
		m.refresh()
		return m, m.loadReviews(true)
	}
	m.page = pageRecommend
	m.username.Blur()
	m.comment.Blur()
	m.query.Focus()
	m.refresh()
	return m, nil
}

func (m Model) updateRecommend(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlT:
		if m.mode == modeTitle {
			m.mode = modeKeyword
		} else {
			m.mode = modeTitle
		}
		m.query.Reset()
		m.setPlaceholder()
		m.filter()
		m.results = nil
		m.refresh()
		return m, nil
	case tea.KeyUp:
		if m.mode == modeTitle && len(m.filtered) > 0 {
			m.sel = (m.sel - 1 + len(m.filtered)) % len(m.filtered)
			return m, nil
		}
	case tea.KeyDown:
		if m.mode == modeTitle && len(m.filtered) > 0 {
			m.sel = (m.sel + 1) % len(m.filtered)
			return m, nil
		}
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		if m.mode == modeTitle {
			if len(m.filtered) == 0 {
				m.status = "Judul tidak ditemukan."
				return m, nil
			}
			m.busy = true
			return m, m.byTitle(m.filtered[m.sel])
		}
		kw := strings.TrimSpace(m.query.Value())
		if kw == "" {
			m.status = "Masukkan keyword terlebih dahulu."
			return m, nil
		}
		m.busy = true
		m.status = "Mencari..."
		return m, m.byKeyword(kw)
	}
	var cmd tea.Cmd
	before := m.query.Value()
	m.query, cmd = m.query.Update(msg)
	if m.mode == modeTitle && m.query.Value() != before {
		m.filter()
	}
	return m, cmd
}

func (m Model) updateReviews(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.focus = (m.focus - 1 + fieldCount) % fieldCount
		m.focusField()
		return m, nil
	case tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
		m.focusField()
		return m, nil
	case tea.KeyLeft, tea.KeyRight:
		if m.focus == fieldRating {
			if msg.Type == tea.KeyLeft && m.rating > 1 {
				m.rating--
			}
			if msg.Type == tea.KeyRight && m.rating < 5 {
				m.rating++
			}
			return m, nil
		}
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.submit(domain.Review{
			Username: strings.TrimSpace(m.username.Value()),
			Rating:   m.rating,
			Text:     m.comment.Value(),
		})
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.page == pageRecommend:
		m.query, cmd = m.query.Update(msg)
	case m.focus == fieldUsername:
		m.username, cmd = m.username.Update(msg)
	case m.focus == fieldComment:
		m.comment, cmd = m.comment.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusField() {
	m.username.Blur()
	m.comment.Blur()
	switch m.focus {
	case fieldUsername:
		m.username.Focus()
	case fieldComment:
		m.comment.Focus()
	}
}

func (m *Model) setPlaceholder() {
	if m.mode == modeTitle {
		m.query.Placeholder = "Ketik untuk menyaring judul"
	} else {
		m.query.Placeholder = "Contoh: action, romance, fantasy..."
	}
}

// filter keeps the titles containing the query, case-insensitively.
func (m *Model) filter() {
	m.sel = 0
	q := strings.ToLower(strings.TrimSpace(m.query.Value()))
	if q == "" {
		m.filtered = m.titles
		return
	}
	m.filtered = nil
	for _, t := range m.titles {
		if strings.Contains(strings.ToLower(t), q) {
			m.filtered = append(m.filtered, t)
		}
	}
}

func (m Model) byTitle(title string) tea.Cmd {
	return func() tea.Msg {
		recs, err := m.recs.ByTitle(m.ctx, title, 0)
		return resultsMsg{label: title, recs: recs, err: err}
	}
}

func (m Model) byKeyword(keyword string) tea.Cmd {
	return func() tea.Msg {
		recs, err := m.recs.ByKeyword(m.ctx, keyword, 0)
		return resultsMsg{label: keyword, recs: recs, err: err}
	}
}

// loadReviews fetches stats and recent reviews, counting a visit when visit is set.
func (m Model) loadReviews(visit bool) tea.Cmd {
	return func() tea.Msg {
		ctx := m.ctx
		if visit {
			if _, err := m.reviews.RecordVisit(ctx); err != nil {
				return reviewsMsg{err: err}
			}
		}
		st, err := m.reviews.Stats(ctx)
		if err != nil {
			return reviewsMsg{err: err}
		}
		recent, err := m.reviews.Recent(ctx, m.recentLimit)
		return reviewsMsg{stats: st, recent: recent, err: err}
	}
}

func (m Model) submit(r domain.Review) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.reviews.Append(m.ctx, r)}
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownTitle):
		return "Judul tidak ditemukan."
	case errors.Is(err, domain.ErrEmptyKeyword):
		return "Masukkan keyword terlebih dahulu."
	}
	return err.Error()
}

func (m *Model) refresh() {
	if m.page == pageRecommend {
		m.viewport.SetContent(m.renderResults())
	} else {
		m.viewport.SetContent(m.renderRecent())
	}
	m.viewport.GotoTop()
}

// View renders the current page.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	if m.page == pageRecommend {
		modeName := "Berdasarkan Judul"
		if m.mode == modeKeyword {
			modeName = "Berdasarkan Keyword"
		}
		b.WriteString(dimStyle.Render("Mode: " + modeName))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(m.query.View()))
		b.WriteString("\n")
		if m.mode == modeTitle {
			b.WriteString(m.renderTitles())
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}
	b.WriteString(boxStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) renderTabs() string {
	rec, rev := tabStyle, tabStyle
	if m.page == pageRecommend {
		rec = activeTabStyle
	} else {
		rev = activeTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rec.Render("Rekomendasi"), rev.Render("Ulasan"))
}

func (m Model) renderTitles() string {
	if len(m.filtered) == 0 {
		return dimStyle.Render("  (tidak ada judul yang cocok)")
	}
	start := 0
	if m.sel >= titleRows {
		start = m.sel - titleRows + 1
	}
	end := min(len(m.filtered), start+titleRows)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == m.sel {
			lines = append(lines, selectedStyle.Render("› "+m.filtered[i]))
		} else {
			lines = append(lines, "  "+m.filtered[i])
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "Belum ada rekomendasi."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Rekomendasi untuk " + m.label))
	for i, r := range m.results {
		fmt.Fprintf(&b, "\n\n%d. %s  %s", i+1, titleStyle.Render(r.Title), dimStyle.Render(fmt.Sprintf("score=%.3f", r.Score)))
		if r.CoverURL != "" {
			b.WriteString("\n   " + dimStyle.Render(r.CoverURL))
		}
		if r.Blurb != "" {
			b.WriteString("\n   " + r.Blurb)
		}
	}
	return b.String()
}

func (m Model) renderForm() string {
	rating := "Rating: " + stars(m.rating) + strings.Repeat("☆", domain.MaxRating-clampRating(m.rating))
	if m.focus == fieldRating {
		rating = selectedStyle.Render(rating + "  (←/→)")
	}
	stats := fmt.Sprintf("Jumlah Kunjungan: %d   Rating Saat Ini: %.2f dari %d ulasan",
		m.stats.TotalVisits, m.stats.AverageRating, m.stats.TotalReviews)
	return dimStyle.Render(stats) + "\n" + boxStyle.Render(m.username.View()+"\n"+rating+"\n"+m.comment.View())
}

func (m Model) renderRecent() string {
	if len(m.recent) == 0 {
		return "Belum ada ulasan."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Ulasan Terbaru"))
	for _, r := range m.recent {
		fmt.Fprintf(&b, "\n\n%s - Rating: %s\n%s", titleStyle.Render(r.Username), stars(r.Rating), r.Text)
	}
	return b.String()
}

func clampRating(n int) int { return max(0, min(n, domain.MaxRating)) }

func stars(n int) string { return strings.Repeat("★", clampRating(n)) }

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
