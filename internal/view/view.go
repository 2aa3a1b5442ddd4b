// Package view renders items, found reports and notifications for the
// terminal.
package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/erazemk/lostfound/internal/client"
	"github.com/erazemk/lostfound/internal/feed"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/pending"
)

// descriptionWidth caps descriptions in item cards.
const descriptionWidth = 120

var statusColors = map[model.Status]lipgloss.Color{
	model.StatusLost:           lipgloss.Color("208"),
	model.StatusFoundPending:   lipgloss.Color("220"),
	model.StatusFoundConfirmed: lipgloss.Color("42"),
}

type styles struct {
	title   lipgloss.Style
	meta    lipgloss.Style
	reward  lipgloss.Style
	body    lipgloss.Style
	tab     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	hint    lipgloss.Style
}

// Printer writes styled output. Colors are dropped when w is not a terminal.
type Printer struct {
	w      io.Writer
	r      *lipgloss.Renderer
	now    func() time.Time
	styles styles
}

// Option configures a Printer.
type Option func(*Printer)

// WithClock sets the clock used for relative times.
func WithClock(now func() time.Time) Option {
	return func(p *Printer) { p.now = now }
}

// New returns a Printer writing to w.
func New(w io.Writer, opts ...Option) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:   w,
		r:   r,
		now: time.Now,
		styles: styles{
			title:   r.NewStyle().Bold(true),
			meta:    r.NewStyle().Faint(true),
			reward:  r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			body:    r.NewStyle().PaddingLeft(4),
			tab:     r.NewStyle().Underline(true),
			success: r.NewStyle().Foreground(lipgloss.Color("42")),
			failure: r.NewStyle().Foreground(lipgloss.Color("196")),
			hint:    r.NewStyle().Faint(true).Italic(true),
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Badge renders the status label of an item.
func (p *Printer) Badge(s model.Status) string {
	color, ok := statusColors[s]
	if !ok {
		color = lipgloss.Color("245")
	}
	return p.r.NewStyle().
		Background(color).
		Foreground(lipgloss.Color("0")).
		Bold(true).
		Padding(0, 1).
		Render(s.Label())
}

// Reward formats an item's reward, or "" when there is none.
func Reward(item model.Item) string {
	r, ok := item.DisplayReward()
	if !ok {
		return ""
	}
	return "₹" + r
}

// Poster returns the display name of whoever reported the item.
func Poster(item model.Item) string {
	if item.PostedByName != "" {
		return item.PostedByName
	}
	return "Anonymous User"
}

// Card renders a compact item summary.
func (p *Printer) Card(item model.Item) string {
	header := fmt.Sprintf("#%d  %s  %s", item.ID, p.styles.title.Render(item.Name), p.Badge(model.EffectiveStatus(item)))

	meta := []string{Poster(item)}
	if item.Location != "" {
		meta = append(meta, item.Location)
	}
	if item.Category != "" {
		meta = append(meta, item.Category)
	}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, humanize.RelTime(item.CreatedAt, p.now(), "ago", "from now"))
	}

	lines := []string{p.styles.meta.Render(strings.Join(meta, " · "))}
	if d := strings.TrimSpace(item.Description); d != "" {
		lines = append(lines, truncate(d, descriptionWidth))
	}
	if r := Reward(item); r != "" {
		lines = append(lines, p.styles.reward.Render("Reward: "+r))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, p.styles.body.Render(strings.Join(lines, "\n")))
}

// Detail renders every field of an item.
func (p *Printer) Detail(item model.Item) string {
	var b strings.Builder
	b.WriteString(p.Card(item))
	b.WriteString("\n")
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "    %s %s\n", p.styles.meta.Render(name+":"), value)
		}
	}
	if len(item.Description) > descriptionWidth {
		field("Description", item.Description)
	}
	field("Contact", item.ContactInfo)
	field("Image", item.ImageURL)
	if !item.CreatedAt.IsZero() {
		field("Reported", item.CreatedAt.Local().Format("Jan 2, 2006 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Feed prints the view tabs, the displayed page of items and a load-more
// hint.
func (p *Printer) Feed(f *feed.Feed) {
	counts := f.Counts()
	current := f.Criteria().View
	tabs := make([]string, 0, len(feed.Views))
	for _, v := range feed.Views {
		var n int
		switch v {
		case feed.ViewAll:
			n = counts.All
		case feed.ViewLost:
			n = counts.Lost
		case feed.ViewFound:
			n = counts.Found
		case feed.ViewPending:
			n = counts.Pending
		}
		label := fmt.Sprintf("%s (%d)", v, n)
		if v == current || (current == "" && v == feed.ViewAll) {
			label = p.styles.tab.Render(label)
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintln(p.w, strings.Join(tabs, "  "))

	displayed := f.Displayed()
	if len(displayed) == 0 {
		fmt.Fprintln(p.w, p.styles.hint.Render("No items found. Try adjusting your search terms or filters."))
		return
	}

	fmt.Fprintln(p.w, p.styles.meta.Render(fmt.Sprintf("Showing %d of %d", len(displayed), len(f.Filtered()))))
	for _, item := range displayed {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.Card(item))
	}
	if f.HasMore() {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.styles.hint.Render(fmt.Sprintf("Load more (%d remaining): use -pages %d", f.Remaining(), f.Page()+1)))
	}
}

// Items prints a plain list of item cards.
func (p *Printer) Items(items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(p.w, p.styles.hint.Render("No items."))
		return
	}
	for i, item := range items {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintln(p.w, p.Card(item))
	}
}

// Pending prints the owner's pending confirmations.
func (p *Printer) Pending(entries []pending.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.styles.hint.Render("No pending confirmations."))
		return
	}
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		name := e.Item.Name
		if name == "" {
			name = fmt.Sprintf("Item #%d", e.ItemID)
		}
		fmt.Fprintf(p.w, "[%d] %s\n", e.ID, p.styles.title.Render(name))

		var lines []string
		finder := e.FinderName
		if finder == "" {
			finder = "Someone"
		}
		meta := finder + " reported finding this item"
		if e.CreatedAtFormatted != "" {
			meta += " " + e.CreatedAtFormatted
		}
		lines = append(lines, p.styles.meta.Render(meta))
		if e.Message != "" {
			lines = append(lines, fmt.Sprintf("%q", e.Message))
		}
		var details []string
		if e.Item.Location != "" {
			details = append(details, e.Item.Location)
		}
		if e.Item.Category != "" {
			details = append(details, e.Item.Category)
		}
		if r := Reward(model.Item{Reward: e.Item.Reward}); r != "" {
			details = append(details, "Reward: "+r)
		}
		if len(details) > 0 {
			lines = append(lines, strings.Join(details, " · "))
		}
		if !e.Item.Live {
			lines = append(lines, p.styles.hint.Render("Item details unavailable"))
		}
		fmt.Fprintln(p.w, p.styles.body.Render(strings.Join(lines, "\n")))
	}
}

// Reports prints the found reports filed for an item.
func (p *Printer) Reports(reports []model.FoundReport) {
	if len(reports) == 0 {
		fmt.Fprintln(p.w, p.styles.hint.Render("No found reports."))
		return
	}
	for _, r := range reports {
		state := "awaiting owner"
		if r.BothConfirmed() {
			state = "confirmed"
		}
		finder := r.FinderName
		if finder == "" {
			finder = fmt.Sprintf("user %d", r.FinderID)
		}
		line := fmt.Sprintf("[%d] %s (%s)", r.ID, finder, state)
		if !r.CreatedAt.IsZero() {
			line += " " + p.styles.meta.Render(humanize.RelTime(r.CreatedAt, p.now(), "ago", "from now"))
		}
		fmt.Fprintln(p.w, line)
		if r.Message != "" {
			fmt.Fprintln(p.w, p.styles.body.Render(fmt.Sprintf("%q", r.Message)))
		}
	}
}

// User prints the signed-in profile.
func (p *Printer) User(u *model.User, expires *time.Time) {
	if u == nil {
		fmt.Fprintln(p.w, "Not logged in.")
		return
	}
	fmt.Fprintf(p.w, "%s (id %d, %s)\n", p.styles.title.Render(u.Name), u.ID, strings.ToLower(u.Role))
	if u.Email != "" {
		fmt.Fprintln(p.w, p.styles.meta.Render(u.Email))
	}
	if expires != nil {
		fmt.Fprintln(p.w, p.styles.meta.Render("Session expires "+humanize.RelTime(*expires, p.now(), "ago", "from now")))
	}
}

// Users prints one line per user.
func (p *Printer) Users(users []model.User) {
	if len(users) == 0 {
		fmt.Fprintln(p.w, p.styles.hint.Render("No users."))
		return
	}
	for _, u := range users {
		line := fmt.Sprintf("#%d  %s  %s", u.ID, p.styles.title.Render(u.Name), strings.ToLower(u.Role))
		if u.Email != "" {
			line += "  " + p.styles.meta.Render(u.Email)
		}
		fmt.Fprintln(p.w, line)
	}
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.success.Render(fmt.Sprintf(format, args...)))
}

// Error prints a short notification for err.
func (p *Printer) Error(err error) {
	p.ErrorFor("", err)
}

// ErrorFor is like Error but prefixes the message with subject, so failures
// of several operations can be told apart.
func (p *Printer) ErrorFor(subject string, err error) {
	if err == nil {
		return
	}
	msg := client.Message(err)
	if subject != "" {
		msg = subject + ": " + msg
	}
	fmt.Fprintln(p.w, p.styles.failure.Render(msg))
	if errors.Is(err, client.ErrAuthRequired) {
		fmt.Fprintln(p.w, p.styles.hint.Render("Log in with: lostfound login -token <token>"))
	}
}

// Notify writes a notification for err to w.
func Notify(w io.Writer, err error) {
	New(w).Error(err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
