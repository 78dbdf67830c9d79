// Package render formats market snapshots as timestamped two-column tables.
package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vadiminshakov/depthwatch/internal/domain"
)

const (
	// TimestampLayout RFC 3339 with milliseconds and an explicit UTC offset.
	TimestampLayout = "2006-01-02T15:04:05.000-07:00"

	bidsHeader = "BIDS"
	asksHeader = "ASKS"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Renderer turns snapshots into text blocks. It holds no per-call state,
// so the same snapshot always renders to the same bytes.
type Renderer struct {
	loc *time.Location
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocation renders timestamps in loc instead of the snapshot's own zone.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		r.loc = loc
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the timestamp line, the optional last price line and the table.
// The block always ends with a newline.
func (r *Renderer) Render(s domain.MarketSnapshot) string {
	var b strings.Builder

	b.WriteString(r.header(s))
	b.WriteByte('\n')
	if s.LastPrice != nil {
		b.WriteString("last price: ")
		b.WriteString(s.LastPrice.String())
		b.WriteByte('\n')
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		}).
		Headers(bidsHeader, asksHeader).
		Rows(Rows(s.Book)...)

	b.WriteString(t.String())
	b.WriteByte('\n')

	return b.String()
}

// header returns the first line of a rendered block.
func (r *Renderer) header(s domain.MarketSnapshot) string {
	ts := s.Timestamp
	if r.loc != nil {
		ts = ts.In(r.loc)
	}
	line := ts.Format(TimestampLayout)
	if s.Symbol != "" {
		line += " " + s.Symbol
	}
	return line
}

// Rows pairs bids and asks by index. The shorter side is padded with empty cells.
func Rows(book domain.OrderBook) [][]string {
	rows := make([][]string, book.Depth())
	for i := range rows {
		row := []string{"", ""}
		if i < len(book.Bids) {
			row[0] = book.Bids[i].String()
		}
		if i < len(book.Asks) {
			row[1] = book.Asks[i].String()
		}
		rows[i] = row
	}
	return rows
}
