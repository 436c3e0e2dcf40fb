package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/listing"
	"github.com/bbrc/scout/internal/state"
)

type authorsState struct {
	res       state.Resource[[]api.Author]
	query     listing.Query
	search    textinput.Model
	searching bool
	syncing   bool
	exporting bool
	pager     paginator.Model
}

func newAuthorsState(perPage int) authorsState {
	ti := textinput.New()
	ti.Placeholder = "name, email or journal"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	pg := paginator.New()
	pg.Type = paginator.Arabic

	return authorsState{
		query:  listing.NewQuery(perPage),
		search: ti,
		pager:  pg,
	}
}

// result applies the current query to the loaded authors.
func (a *authorsState) result() listing.Result {
	return a.query.Apply(a.res.Value())
}

type authorsMsg struct {
	authors []api.Author
	err     error
}

type syncMsg struct {
	toastID string
	result  api.SyncResult
	err     error
}

type exportMsg struct {
	toastID string
	path    string
	bytes   int64
	err     error
}

func (m Model) handleAuthorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authors.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.authors.searching = false
			m.authors.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.authors.search, cmd = m.authors.search.Update(msg)
		m.authors.query.SetTerm(m.authors.search.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.authors.searching = true
		return m, m.authors.search.Focus()

	case key.Matches(msg, m.keys.SortKey):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(listing.SortKeys) {
			m.authors.query.Sorter.Toggle(listing.SortKeys[idx])
		}

	case key.Matches(msg, m.keys.NextPage):
		m.authors.query.Next()
		m.authors.result()

	case key.Matches(msg, m.keys.PrevPage):
		m.authors.query.Prev()

	case key.Matches(msg, m.keys.Sync):
		return m.syncAuthors()

	case key.Matches(msg, m.keys.Export):
		return m.exportAuthors()

	case key.Matches(msg, m.keys.Refresh):
		if m.client != nil {
			m.authors.res.Begin()
			return m, m.fetchAuthorsCmd()
		}

	case key.Matches(msg, m.keys.Escape):
		if m.authors.query.Term != "" {
			m.authors.search.SetValue("")
			m.authors.query.SetTerm("")
		}
	}
	return m, nil
}

func (m Model) fetchAuthorsCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		authors, err := client.FetchAuthors(ctx)
		return authorsMsg{authors: authors, err: err}
	}
}

func (m *Model) handleAuthors(msg authorsMsg) {
	if msg.err != nil {
		m.authors.res.Fail(msg.err)
		m.toasts.Error("", "Failed to load authors: "+errorText(msg.err))
		m.logger.Warn("fetch authors failed", zap.Error(msg.err))
		return
	}
	m.authors.res.Succeed(msg.authors)
	m.authors.result()
}

func (m Model) syncAuthors() (tea.Model, tea.Cmd) {
	if m.client == nil || m.authors.syncing {
		return m, nil
	}
	m.authors.syncing = true
	toastID := m.toasts.Loading("Syncing profiles to database...")

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ActionTimeout)
		defer cancel()
		res, err := client.SyncAuthors(ctx)
		return syncMsg{toastID: toastID, result: res, err: err}
	}
}

// handleSync reports the outcome and reloads the table after a successful
// import.
func (m Model) handleSync(msg syncMsg) (tea.Model, tea.Cmd) {
	m.authors.syncing = false
	switch {
	case msg.err != nil:
		m.toasts.Error(msg.toastID, "Network error during sync: "+errorText(msg.err))
		return m, nil
	case !msg.result.Synced():
		text := strings.TrimSpace(msg.result.Message)
		if text == "" {
			text = "Sync failed"
		}
		m.toasts.Error(msg.toastID, text)
		return m, nil
	}
	m.toasts.Success(msg.toastID, fmt.Sprintf("Synced %d new authors", msg.result.Added))
	m.authors.res.Begin()
	return m, m.fetchAuthorsCmd()
}

// exportAuthors downloads the CSV export into the configured directory.
func (m Model) exportAuthors() (tea.Model, tea.Cmd) {
	if m.client == nil || m.authors.exporting {
		return m, nil
	}
	m.authors.exporting = true
	toastID := m.toasts.Loading("Exporting authors...")
	path := m.config.ExportPath(m.now())

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ExportTimeout)
		defer cancel()
		n, err := writeExport(ctx, client, path)
		return exportMsg{toastID: toastID, path: path, bytes: n, err: err}
	}
}

// writeExport streams the export to path. A failed download leaves no
// partial file behind.
func writeExport(ctx context.Context, client api.Backend, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	n, err := client.ExportAuthors(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return n, err
	}
	return n, nil
}

func (m *Model) handleExport(msg exportMsg) {
	m.authors.exporting = false
	if msg.err != nil {
		m.toasts.Error(msg.toastID, "Export failed: "+errorText(msg.err))
		m.logger.Warn("export failed", zap.String("path", msg.path), zap.Error(msg.err))
		return
	}
	m.toasts.Success(msg.toastID, "Exported to "+msg.path)
	m.logger.Info("export written", zap.String("path", msg.path), zap.Int64("bytes", msg.bytes))
}

type authorColumn struct {
	title  string
	key    listing.SortKey
	weight int
	width  int
	value  func(api.Author) string
}

// authorColumns splits width between the table columns by weight.
// Affiliation is shown only on wide terminals.
func authorColumns(width int) []authorColumn {
	cols := []authorColumn{
		{title: "Name", key: listing.SortName, weight: 20, value: func(a api.Author) string { return a.Name }},
		{title: "Email", key: listing.SortEmail, weight: 26, value: func(a api.Author) string { return a.Email }},
		{title: "Journal", key: listing.SortJournal, weight: 18, value: func(a api.Author) string { return a.Journal }},
		{title: "Paper ID", key: listing.SortPaperID, weight: 10, value: func(a api.Author) string { return a.PaperID }},
		{title: "Paper Title", key: listing.SortPaperTitle, weight: 30, value: func(a api.Author) string { return a.PaperTitle }},
	}
	if width >= LayoutWideWidth {
		affiliation := authorColumn{title: "Affiliation", weight: 24, value: api.Author.PrimaryAffiliation}
		cols = append(cols[:4:4], affiliation, cols[4])
	}

	total := 0
	for _, c := range cols {
		total += c.weight
	}
	avail := max(width-(len(cols)-1), len(cols))
	used := 0
	for i := range cols {
		cols[i].width = max(avail*cols[i].weight/total, 1)
		used += cols[i].width
	}
	cols[len(cols)-1].width += max(avail-used, 0)
	return cols
}

func (m Model) renderAuthors() string {
	height := m.contentHeight()
	styles := m.theme.Styles()
	inner := max(m.width-4, 20)

	var body string
	switch m.authors.res.View(state.Len[api.Author]) {
	case state.ViewLoading:
		body = m.spinner.View() + " Loading records..."
	case state.ViewError:
		body = styles.DangerText.Render("Failed to load authors: " + errorText(m.authors.res.Err()))
	case state.ViewEmpty:
		body = styles.MutedText.Render("No authors found matching your criteria.")
	default:
		body = m.renderAuthorTable(inner, height-2)
	}

	title := "Authors"
	if m.authors.res.HasData() {
		title = fmt.Sprintf("Authors · %d total", len(m.authors.res.Value()))
	}
	if m.authors.res.Loading() && m.authors.res.HasData() {
		title += " · refreshing"
	}
	return m.renderTitledBox(title, body, m.width, height, true)
}

func (m Model) renderAuthorTable(width, height int) string {
	styles := m.theme.Styles()
	query := m.authors.query
	res := query.Apply(m.authors.res.Value())
	cols := authorColumns(width)

	var b strings.Builder

	search := m.authors.search
	if m.authors.searching || query.Term != "" {
		search.Width = max(width-4, 10)
		b.WriteString(search.View())
	} else {
		b.WriteString(styles.FaintText.Render("/ to search"))
	}
	b.WriteString("\n")

	header := make([]string, 0, len(cols))
	for _, c := range cols {
		label := c.title
		if arrow := query.Sorter.Arrow(c.key); arrow != "" {
			label += " " + arrow
		}
		header = append(header, cell(label, c.width))
	}
	b.WriteString(styles.AccentText.Bold(true).Render(strings.Join(header, " ")))
	b.WriteString("\n")

	if res.Matched == 0 {
		b.WriteString(styles.MutedText.Render("No authors found matching your criteria."))
		b.WriteString("\n")
	}
	maxRows := max(height-4, 1)
	for i, a := range res.Rows {
		if i >= maxRows {
			break
		}
		row := make([]string, 0, len(cols))
		for _, c := range cols {
			row = append(row, cell(c.value(a), c.width))
		}
		b.WriteString(styles.Text.Render(strings.Join(row, " ")))
		b.WriteString("\n")
	}

	pager := m.authors.pager
	pager.PerPage = max(query.PerPage, 1)
	pager.SetTotalPages(res.Matched)
	pager.Page = max(res.Page.Number-1, 0)

	footer := fmt.Sprintf("%d found", res.Matched)
	if res.Page.Total > 1 {
		footer += "  ·  page " + pager.View()
	}
	var nav []string
	if res.Page.HasPrev() {
		nav = append(nav, "‹ p prev")
	}
	if res.Page.HasNext() {
		nav = append(nav, "n next ›")
	}
	if len(nav) > 0 {
		footer += "  ·  " + strings.Join(nav, "  ")
	}
	footer += "  ·  sort " + query.Sorter.String()
	b.WriteString(styles.MutedText.Render(footer))
	return b.String()
}
