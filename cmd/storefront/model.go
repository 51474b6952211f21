package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/internal/board"
	"github.com/nazeru/storefront-orders-go/internal/listing"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/fulfillment"
	"github.com/nazeru/storefront-orders-go/internal/order/stats"
	"github.com/nazeru/storefront-orders-go/pkg/apierr"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputTracking
	inputNote
)

// statusFilters is the cycle behind the "f" key.
var statusFilters = append([]string{query.All}, func() []string {
	out := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		out[i] = string(s)
	}
	return out
}()...)

type model struct {
	board   *board.Board[domain.Order]
	actions *fulfillment.Service
	cred    auth.Credential
	fields  query.Fields[domain.Order]
	timeout time.Duration

	spec     query.Spec
	result   query.Result[domain.Order]
	summary  stats.Summary
	selected int
	filter   int
	sort     int

	input     inputMode
	inputText string

	status string
	busy   bool
}

func initialModel(b *board.Board[domain.Order], actions *fulfillment.Service, cred auth.Credential, pageSize int, timeout time.Duration) model {
	viewer := listing.ViewerCustomer
	if cred.Role == auth.RoleStore {
		viewer = listing.ViewerStore
	}
	m := model{
		board:   b,
		actions: actions,
		cred:    cred,
		fields:  listing.Orders(viewer),
		timeout: timeout,
		spec:    query.NewSpec(pageSize),
		status:  "Loading orders...",
		busy:    true,
	}
	m.refresh()
	return m
}

type reloadedMsg struct {
	err error
}

type actionDoneMsg struct {
	outcome fulfillment.Outcome
	err     error
}

func (m model) Init() tea.Cmd {
	return m.reloadCmd()
}

func (m model) reloadCmd() tea.Cmd {
	b, timeout := m.board, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := b.Reload(ctx)
		return reloadedMsg{err: err}
	}
}

func (m model) actionCmd(run func(context.Context) (fulfillment.Outcome, error)) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := run(ctx)
		return actionDoneMsg{outcome: out, err: err}
	}
}

// refresh recomputes the visible page from the board snapshot.
func (m *model) refresh() {
	items := m.board.Items()
	m.result = board.View(items, m.spec, m.fields)
	m.spec.Page = m.result.Page
	m.summary = stats.Summarize(items)
	if m.selected >= len(m.result.Items) {
		m.selected = max(0, len(m.result.Items)-1)
	}
}

func (m model) current() (domain.Order, bool) {
	if m.selected < 0 || m.selected >= len(m.result.Items) {
		return domain.Order{}, false
	}
	return m.result.Items[m.selected], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.input != inputNone {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	case reloadedMsg:
		if errors.Is(msg.err, board.ErrSuperseded) {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.status = "Could not load orders: " + apierr.MessageOf(msg.err, msg.err.Error())
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("%d orders", m.summary.Total)
	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + apierr.MessageOf(msg.err, msg.err.Error())
			return m, nil
		}
		m.status = msg.outcome.Message
		if msg.outcome.PromptTracking {
			m.input, m.inputText = inputTracking, ""
			m.status += " - enter a tracking number"
		}
		if msg.outcome.Unchanged {
			return m, nil
		}
		m.busy = true
		return m, m.reloadCmd()
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(m.result.Items)-1 {
			m.selected++
		}
	case "left":
		if m.spec.Page > 1 {
			m.spec = m.spec.WithPage(m.spec.Page - 1)
			m.refresh()
		}
	case "right":
		if m.spec.Page < m.result.TotalPages {
			m.spec = m.spec.WithPage(m.spec.Page + 1)
			m.refresh()
		}
	case "f":
		m.filter = (m.filter + 1) % len(statusFilters)
		m.spec = m.spec.WithCategory(statusFilters[m.filter])
		m.refresh()
	case "s":
		m.sort = (m.sort + 1) % len(query.SortKeys)
		m.spec = m.spec.WithSort(query.SortKeys[m.sort])
		m.refresh()
	case "/":
		m.input, m.inputText = inputSearch, m.spec.Text
	case "r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Reloading..."
		return m, m.reloadCmd()
	case "n", "x":
		if m.busy || m.cred.Role != auth.RoleStore {
			return m, nil
		}
		o, ok := m.current()
		if !ok {
			return m, nil
		}
		target, ok := pickTarget(o.Status, msg.String() == "x")
		if !ok {
			m.status = "No further status for this order"
			return m, nil
		}
		m.busy = true
		m.status = domain.ActionLabel(target) + "..."
		actions, cred := m.actions, m.cred
		return m, m.actionCmd(func(ctx context.Context) (fulfillment.Outcome, error) {
			return actions.RequestStatusChange(ctx, cred, o, target)
		})
	case "t":
		if m.cred.Role == auth.RoleStore {
			m.input, m.inputText = inputTracking, ""
		}
	case "a":
		if m.cred.Role == auth.RoleStore {
			m.input, m.inputText = inputNote, ""
		}
	}
	return m, nil
}

// pickTarget returns the first forward transition, or cancellation when
// cancel is set.
func pickTarget(s domain.Status, cancel bool) (domain.Status, bool) {
	for _, t := range domain.NextAllowedTransitions(s) {
		if (t == domain.StatusCancelled) == cancel {
			return t, true
		}
	}
	return "", false
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input, m.inputText = inputNone, ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.inputText); len(r) > 0 {
			m.inputText = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.inputText += " "
		return m, nil
	case tea.KeyRunes:
		m.inputText += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
	default:
		return m, nil
	}

	mode, text := m.input, m.inputText
	m.input, m.inputText = inputNone, ""
	if mode == inputSearch {
		m.spec = m.spec.WithText(strings.TrimSpace(text))
		m.refresh()
		return m, nil
	}

	o, ok := m.current()
	if !ok || m.busy {
		return m, nil
	}
	m.busy = true
	m.status = "Saving..."
	actions, cred := m.actions, m.cred
	if mode == inputTracking {
		return m, m.actionCmd(func(ctx context.Context) (fulfillment.Outcome, error) {
			return actions.AttachTracking(ctx, cred, o, text)
		})
	}
	return m, m.actionCmd(func(ctx context.Context) (fulfillment.Outcome, error) {
		return actions.AttachInternalNote(ctx, cred, o, text)
	})
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "storefront orders")
	fmt.Fprintln(b, "")
	fmt.Fprintf(b, "Total: %d  Revenue: %s  Avg: %s\n",
		m.summary.Total, m.summary.TotalRevenue.StringFixed(0), m.summary.AverageOrderValue.StringFixed(0))
	counts := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		counts = append(counts, fmt.Sprintf("%s %d", s, m.summary.Count(s)))
	}
	fmt.Fprintln(b, strings.Join(counts, " | "))
	fmt.Fprintf(b, "Filter: %s  Sort: %s  Search: %q\n", m.spec.Category, m.spec.Sort, m.spec.Text)
	fmt.Fprintln(b, "")

	if len(m.result.Items) == 0 {
		fmt.Fprintln(b, "  No orders")
	}
	for i, o := range m.result.Items {
		marker := " "
		if i == m.selected {
			marker = ">"
		}
		pct, onTrack := domain.ProgressFraction(o.Status)
		progress := fmt.Sprintf("%3d%%", pct)
		if !onTrack {
			progress = "  - "
		}
		fmt.Fprintf(b, " %s #%s  %-18s %s  %12s  %s\n",
			marker, o.Code(), domain.BadgeFor(o.Status).Label, progress,
			o.TotalAmount.StringFixed(0), o.CreatedAt.Format("2006-01-02"))
	}

	pages := make([]string, 0, pageWindow)
	for _, p := range query.PageWindow(m.result.Page, m.result.TotalPages, pageWindow) {
		if p == m.result.Page {
			pages = append(pages, fmt.Sprintf("[%d]", p))
		} else {
			pages = append(pages, fmt.Sprint(p))
		}
	}
	fmt.Fprintf(b, "\nPage %s of %d\n", strings.Join(pages, " "), m.result.TotalPages)

	if o, ok := m.current(); ok {
		fmt.Fprintln(b, "")
		for _, step := range domain.Timeline(o) {
			fmt.Fprintf(b, "  [%s] %s\n", stepMark(step.State), step.Label)
		}
		if o.TrackingNumber != "" {
			fmt.Fprintf(b, "  Tracking: %s\n", o.TrackingNumber)
		}
		if m.cred.Role == auth.RoleStore {
			if o.InternalNote != "" {
				fmt.Fprintf(b, "  Note: %s\n", o.InternalNote)
			}
			var next []string
			for _, t := range domain.NextAllowedTransitions(o.Status) {
				next = append(next, domain.ActionLabel(t))
			}
			if len(next) > 0 {
				fmt.Fprintf(b, "  Next: %s\n", strings.Join(next, ", "))
			}
		}
	}

	fmt.Fprintln(b, "")
	switch m.input {
	case inputSearch:
		fmt.Fprintf(b, "Search: %s_\n", m.inputText)
	case inputTracking:
		fmt.Fprintf(b, "Tracking number: %s_\n", m.inputText)
	case inputNote:
		fmt.Fprintf(b, "Internal note: %s_\n", m.inputText)
	}
	fmt.Fprintf(b, "Status: %s\n", m.status)
	if at := m.board.LoadedAt(); !at.IsZero() {
		fmt.Fprintf(b, "Updated: %s\n", at.Format("15:04:05"))
	}
	controls := "up/down select, left/right page, f filter, s sort, / search, r reload, q quit"
	if m.cred.Role == auth.RoleStore {
		controls += ", n next status, x cancel, t tracking, a note"
	}
	fmt.Fprintln(b, "\nControls: "+controls)
	return b.String()
}

func stepMark(s domain.StepState) string {
	switch s {
	case domain.StepCompleted:
		return "x"
	case domain.StepCurrent:
		return ">"
	default:
		return " "
	}
}
