package main

import (
	"fmt"
	"strings"

	"cellintel/cell"
	"cellintel/quality"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// scanColumns are the cell table headings, left to right.
var scanColumns = []string{"#", "RAT", "Operator", "Band", "PCI", "Channel", "Signal", "Quality", "Distance", "Site/Sector"}

// dashboard is the read-only table view used for -format table. It shows one
// scan at a time: a summary header, the cell table and a pane of issues and
// tower fixes. n/p (or the arrow keys) step through scans; q or Esc quits.
type dashboard struct {
	app     *tview.Application
	header  *tview.TextView
	table   *tview.Table
	notes   *tview.TextView
	reports []ScanReport
	current int
}

func newDashboard(reports []ScanReport) *dashboard {
	header := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	header.SetTextColor(tcell.ColorYellow)
	table := tview.NewTable().SetBorders(false).SetFixed(1, 0).SetSelectable(true, false)
	notes := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	notes.SetTitle("Issues / Towers").SetTitleAlign(tview.AlignLeft).SetBorder(true)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 3, 0, false).
		AddItem(table, 0, 3, true).
		AddItem(notes, 0, 1, false)

	d := &dashboard{
		app:     tview.NewApplication().SetRoot(layout, true).EnableMouse(false),
		header:  header,
		table:   table,
		notes:   notes,
		reports: reports,
	}
	d.app.SetInputCapture(d.handleKey)
	d.show(0)
	return d
}

// Run blocks until the user quits.
func (d *dashboard) Run() error {
	if d == nil || len(d.reports) == 0 {
		return nil
	}
	return d.app.Run()
}

func (d *dashboard) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
		d.app.Stop()
		return nil
	case ev.Key() == tcell.KeyRight || ev.Rune() == 'n':
		d.show(d.current + 1)
		return nil
	case ev.Key() == tcell.KeyLeft || ev.Rune() == 'p':
		d.show(d.current - 1)
		return nil
	}
	return ev
}

func (d *dashboard) show(i int) {
	if len(d.reports) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(d.reports) {
		i = len(d.reports) - 1
	}
	d.current = i
	r := d.reports[i]
	d.header.SetText(headerText(r, i, len(d.reports)))
	fillScanTable(d.table, r)
	d.notes.SetText(notesText(r))
}

func headerText(r ScanReport, i, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scan %d/%d: %s  (%d cells)\n", i+1, n, r.Source, len(r.Cells))
	writeSessionText(&b, r.Session)
	return strings.TrimRight(b.String(), "\n")
}

func notesText(r ScanReport) string {
	var lines []string
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	for _, fix := range r.Towers {
		lines = append(lines, formatFix(fix))
	}
	if len(lines) == 0 {
		return "(none)"
	}
	return strings.Join(lines, "\n")
}

// fillScanTable replaces the table contents with one row per cell.
func fillScanTable(table *tview.Table, r ScanReport) {
	table.Clear()
	for col, title := range scanColumns {
		table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	for i, c := range r.Cells {
		row := i + 1
		values := scanRow(i, c)
		for col, v := range values {
			tc := tview.NewTableCell(v).SetExpansion(1)
			if c.Registered {
				tc.SetTextColor(tcell.ColorGreen)
			}
			if col == 7 {
				tc.SetTextColor(qualityColor(quality.Label(c.Quality)))
			}
			table.SetCell(row, col, tc)
		}
	}
	if len(r.Cells) == 0 {
		table.SetCell(1, 0, tview.NewTableCell("no data").SetSelectable(false))
	}
	table.ScrollToBeginning()
}

func scanRow(i int, c cell.Normalized) []string {
	num := fmt.Sprintf("%d", i+1)
	if c.Registered {
		num += "*"
	}
	pci, channel, site, dist := "-", "-", "-", "-"
	if c.PhysicalCellID != nil {
		pci = fmt.Sprintf("%d", *c.PhysicalCellID)
	}
	if c.ChannelNumber != nil {
		channel = fmt.Sprintf("%d", *c.ChannelNumber)
	}
	if c.SiteID != nil && c.SectorID != nil {
		site = fmt.Sprintf("%d/%d", *c.SiteID, *c.SectorID)
	}
	if c.DistanceM != nil {
		dist = formatDistance(*c.DistanceM, c.DistanceMethod)
	}
	signal := "-"
	if p := c.ReferencePower(); p != nil {
		signal = fmt.Sprintf("%.0f dBm", *p)
	} else if c.Signal.RSSI != nil {
		signal = fmt.Sprintf("%.0f dBm", *c.Signal.RSSI)
	} else if c.Signal.RSCP != nil {
		signal = fmt.Sprintf("%.0f dBm", *c.Signal.RSCP)
	}
	return []string{num, c.RAT.String(), c.Operator, c.Band.ID, pci, channel, signal, c.Quality, dist, site}
}

func qualityColor(l quality.Label) tcell.Color {
	switch l {
	case quality.Excellent, quality.Good:
		return tcell.ColorGreen
	case quality.Fair:
		return tcell.ColorYellow
	case quality.Poor, quality.VeryPoor:
		return tcell.ColorRed
	}
	return tcell.ColorGray
}
