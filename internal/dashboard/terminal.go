package dashboard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/web3guy0/goldsniper/barrier"
	"github.com/web3guy0/goldsniper/strategy"
	"github.com/web3guy0/goldsniper/types"
)

// ═══════════════════════════════════════════════════════════════════════════
// TERMINAL DASHBOARD - Spot Gold Sniper
// ═══════════════════════════════════════════════════════════════════════════
//
// Redrawn once per tick:
// - Big live price
// - Signal box colored by severity
// - Barrier table (highest zone first)
// - Connection banner when the feed is down
// - Activity log fed from zerolog

const (
	// ANSI escape codes
	ClearScreen = "\033[2J"
	CursorHome  = "\033[H"
	HideCursor  = "\033[?25l"
	ShowCursor  = "\033[?25h"

	// Colors
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	// Foreground colors
	FgBlack  = "\033[30m"
	FgRed    = "\033[31m"
	FgGreen  = "\033[32m"
	FgYellow = "\033[33m"
	FgCyan   = "\033[36m"
	FgWhite  = "\033[37m"

	// Background colors
	BgRed    = "\033[41m"
	BgGreen  = "\033[42m"
	BgYellow = "\033[43m"
	BgGray   = "\033[100m"

	// Box drawing characters (Unicode)
	TopLeft     = "╔"
	TopRight    = "╗"
	BottomLeft  = "╚"
	BottomRight = "╝"
	Horizontal  = "═"
	Vertical    = "║"
)

const (
	boxWidth = 44
	maxLogs  = 6
	wideGap  = 4
)

// Layouts
const (
	LayoutCentered = "centered"
	LayoutWide     = "wide"
)

// Dashboard renders tick reports to a terminal
type Dashboard struct {
	mu sync.Mutex

	out    io.Writer
	layout string
	title  string

	startTime     time.Time
	lastAvailable *types.Report
	logs          []string
	running       bool
}

// New creates a dashboard writing to out (stdout when nil)
func New(out io.Writer, layout string) *Dashboard {
	if out == nil {
		out = os.Stdout
	}
	if layout = ResolveLayout(layout); layout != LayoutWide {
		layout = LayoutCentered
	}
	return &Dashboard{
		out:       out,
		layout:    layout,
		title:     "👑 Spot Gold Sniper",
		startTime: time.Now(),
	}
}

// Name implements core.Sink
func (d *Dashboard) Name() string { return "dashboard" }

// Start hides the cursor and clears the screen
func (d *Dashboard) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true
	d.startTime = time.Now()
	fmt.Fprint(d.out, HideCursor+ClearScreen)
}

// Stop restores the cursor
func (d *Dashboard) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	d.running = false
	fmt.Fprint(d.out, ShowCursor+"\n")
}

// OnReport redraws the whole frame
func (d *Dashboard) OnReport(r *types.Report) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.Available {
		d.lastAvailable = r
	}
	frame := d.render(r)
	fmt.Fprint(d.out, CursorHome+ClearScreen+frame)
}

// Frame renders r without writing it, for one-shot output
func (d *Dashboard) Frame(r *types.Report) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.Available {
		d.lastAvailable = r
	}
	return d.render(r)
}

func (d *Dashboard) render(r *types.Report) string {
	var b strings.Builder

	b.WriteString(FgCyan + Bold + d.title + Reset + "\n")
	b.WriteString(Dim + fmt.Sprintf("Live Feed: Spot XAU/USD (%s)", r.Source) + Reset + "\n\n")

	// Keep showing the last good price while the feed reconnects
	shown := r
	if !r.Available {
		shown = d.lastAvailable
	}

	var left, right []string
	if shown != nil && shown.Result != nil {
		left = append(left, renderPrice(shown.Result), "")
		left = append(left, renderSignalBox(shown.Result.Status)...)
		right = strings.Split(strings.TrimRight(RenderTable(shown.Result.Rows), "\n"), "\n")
	} else {
		left = append(left, FgYellow+"Waiting for first price..."+Reset)
	}

	if d.layout == LayoutWide {
		b.WriteString(joinColumns(left, right, boxWidth+wideGap))
	} else {
		b.WriteString(strings.Join(left, "\n") + "\n\n")
		if len(right) > 0 {
			b.WriteString(strings.Join(right, "\n") + "\n")
		}
	}

	if !r.Available {
		b.WriteString("\n" + FgYellow + Bold + fmt.Sprintf("⚠️ Connecting to Feed... (Retrying in %s)", r.Interval) + Reset + "\n")
	}

	if len(d.logs) > 0 {
		b.WriteString("\n" + FgWhite + Dim + "── activity " + strings.Repeat("─", boxWidth-12) + Reset + "\n")
		start := 0
		if len(d.logs) > maxLogs {
			start = len(d.logs) - maxLogs
		}
		for _, l := range d.logs[start:] {
			b.WriteString(Dim + l + Reset + "\n")
		}
	}

	uptime := time.Since(d.startTime).Round(time.Second)
	b.WriteString("\n" + FgWhite + Dim + fmt.Sprintf("⏱️ %s │ tick #%d │ Ctrl+C to exit", uptime, r.Seq) + Reset + "\n")
	return b.String()
}

func renderPrice(res *strategy.Result) string {
	return FgYellow + Bold + "$" + res.Price.StringFixed(2) + Reset
}

// renderSignalBox draws the status inside a colored frame
func renderSignalBox(st strategy.Status) []string {
	color := boxColor(st)
	lines := append([]string{st.Title()}, st.Detail()...)

	out := make([]string, 0, len(lines)+2)
	out = append(out, color+TopLeft+strings.Repeat(Horizontal, boxWidth-2)+TopRight+Reset)
	for _, l := range lines {
		out = append(out, color+Vertical+center(l, boxWidth-2)+Vertical+Reset)
	}
	out = append(out, color+BottomLeft+strings.Repeat(Horizontal, boxWidth-2)+BottomRight+Reset)
	return out
}

// boxColor follows the severity tiers: neutral gray, watch dim, inside amber,
// confirmed signal solid
func boxColor(st strategy.Status) string {
	switch st.Severity() {
	case strategy.SeveritySignal:
		if st.Side() == strategy.SideBuy {
			return BgGreen + FgWhite + Bold
		}
		return BgRed + FgWhite + Bold
	case strategy.SeverityWatch:
		if st.Side() == strategy.SideBuy {
			return FgGreen + Bold
		}
		return FgRed + Bold
	case strategy.SeverityWarning:
		return BgYellow + FgBlack + Bold
	default:
		return BgGray + FgWhite
	}
}

// RenderTable renders the barrier table with tablewriter
func RenderTable(rows []barrier.Row) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Lower", "Upper", "Type"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)

	for _, row := range rows {
		table.Append([]string{
			row.Range.Lower.StringFixed(3),
			row.Range.Upper.StringFixed(3),
			labelCell(row.Label),
		})
	}
	table.Render()
	return b.String()
}

func labelCell(l barrier.Label) string {
	switch l {
	case barrier.LabelResistance:
		return "🔴 RESISTANCE"
	case barrier.LabelSupport:
		return "🟢 SUPPORT"
	case barrier.LabelInside:
		return "🟡 INSIDE"
	default:
		return ""
	}
}

func center(s string, width int) string {
	w := tablewriter.DisplayWidth(s)
	if w >= width {
		return s
	}
	pad := width - w
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// joinColumns places right beside left, padding left to width
func joinColumns(left, right []string, width int) string {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		l, r := "", ""
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		pad := width - tablewriter.DisplayWidth(l)
		if pad < 1 {
			pad = 1
		}
		b.WriteString(l + strings.Repeat(" ", pad) + r + "\n")
	}
	return b.String()
}

// AddLog adds an activity entry
func (d *Dashboard) AddLog(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLog(msg)
}

func (d *Dashboard) addLog(msg string) {
	timestamp := time.Now().Format("15:04:05")
	d.logs = append(d.logs, fmt.Sprintf("[%s] %s", timestamp, msg))
	if len(d.logs) > 50 {
		d.logs = d.logs[len(d.logs)-50:]
	}
}

// Writer returns an io.Writer for log capture
func (d *Dashboard) Writer() *Writer {
	return &Writer{dashboard: d}
}

// Writer implements io.Writer over the activity log
type Writer struct {
	dashboard *Dashboard
}

func (w *Writer) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		if runes := []rune(msg); len(runes) > 80 {
			msg = string(runes[:77]) + "..."
		}
		w.dashboard.AddLog(msg)
	}
	return len(p), nil
}
