package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"cellintel/ca"
	"cellintel/cell"
	"cellintel/classify"
	"cellintel/quality"
	"cellintel/towerdb"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	jsoniter "github.com/json-iterator/go"
)

var reportJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ScanReport is everything the CLI emits for one scan.
type ScanReport struct {
	Source  string            `json:"source"`
	Cells   []cell.Normalized `json:"cells"`
	Issues  []classify.Issue  `json:"issues,omitempty"`
	Session ca.Session        `json:"ca_session"`
	Towers  []towerdb.Fix     `json:"towers,omitempty"`
}

func newScanReport(source string, scan classify.Scan, fixes []towerdb.Fix) ScanReport {
	cells := scan.Cells
	if cells == nil {
		cells = []cell.Normalized{}
	}
	return ScanReport{
		Source:  source,
		Cells:   cells,
		Issues:  scan.Issues,
		Session: scan.Session,
		Towers:  fixes,
	}
}

// writeJSON emits one indented JSON document per report.
func writeJSON(w io.Writer, r ScanReport) error {
	data, err := reportJSON.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeText renders the human report: one block per cell, then the operator
// and network summary, carrier aggregation, towers and issues.
func writeText(w io.Writer, r ScanReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s: %s %s ==\n", r.Source, humanize.Comma(int64(len(r.Cells))), english.PluralWord(len(r.Cells), "cell", ""))
	if len(r.Cells) == 0 {
		b.WriteString("no data\n")
	}
	for i, c := range r.Cells {
		writeCellText(&b, i, c)
	}
	if len(r.Cells) > 0 {
		writeSummaryText(&b, r.Cells)
		writeSessionText(&b, r.Session)
	}
	if len(r.Towers) > 0 {
		b.WriteString("Towers:\n")
		for _, fix := range r.Towers {
			b.WriteString("  " + formatFix(fix) + "\n")
		}
	}
	if len(r.Issues) > 0 {
		b.WriteString("Issues:\n")
		for _, issue := range r.Issues {
			b.WriteString("  " + issue.String() + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCellText(b *strings.Builder, i int, c cell.Normalized) {
	reg := ""
	if c.Registered {
		reg = "  registered"
	}
	fmt.Fprintf(b, "[%d] %-5s %-8s %s%s\n", i+1, c.RAT, c.Operator, c.Band, reg)
	fmt.Fprintf(b, "    MCC %d MNC %d  %s\n", c.NetworkCode, c.CarrierCode, identityLine(c))
	if line := signalLine(c); line != "" {
		fmt.Fprintf(b, "    %s\n", line)
	}
	if c.DistanceM != nil {
		fmt.Fprintf(b, "    distance %s\n", formatDistance(*c.DistanceM, c.DistanceMethod))
	}
}

func identityLine(c cell.Normalized) string {
	var parts []string
	area := "TAC"
	if c.RAT == cell.GSM || c.RAT == cell.WCDMA {
		area = "LAC"
	}
	if c.AreaCode != nil {
		parts = append(parts, fmt.Sprintf("%s %d", area, *c.AreaCode))
	}
	if c.CompositeID != nil {
		parts = append(parts, fmt.Sprintf("CI %d", *c.CompositeID))
	}
	if c.SiteID != nil && c.SectorID != nil {
		parts = append(parts, fmt.Sprintf("%s %d sector %d", siteLabel(c.RAT), *c.SiteID, *c.SectorID))
	}
	if c.PhysicalCellID != nil {
		label := "PCI"
		if c.RAT == cell.WCDMA {
			label = "PSC"
		}
		parts = append(parts, fmt.Sprintf("%s %d", label, *c.PhysicalCellID))
	}
	if c.ChannelNumber != nil {
		parts = append(parts, fmt.Sprintf("%s %d", channelLabel(c.RAT), *c.ChannelNumber))
	}
	if c.BandwidthMHz != nil {
		parts = append(parts, fmt.Sprintf("BW %s MHz", humanize.Ftoa(*c.BandwidthMHz)))
	}
	return strings.Join(parts, "  ")
}

func siteLabel(rat cell.RAT) string {
	switch rat {
	case cell.LTE:
		return "eNB"
	case cell.NR:
		return "gNB"
	case cell.WCDMA:
		return "RNC"
	}
	return "site"
}

func channelLabel(rat cell.RAT) string {
	switch rat {
	case cell.LTE:
		return "EARFCN"
	case cell.NR:
		return "NR-ARFCN"
	case cell.WCDMA:
		return "UARFCN"
	}
	return "ARFCN"
}

func signalLine(c cell.Normalized) string {
	s := c.Signal
	var parts []string
	add := func(label string, v *float64, unit string) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s %s%s", label, humanize.Ftoa(*v), unit))
		}
	}
	switch c.RAT {
	case cell.LTE:
		add("RSRP", s.RSRP, " dBm")
		add("RSRQ", s.RSRQ, " dB")
		add("RSSI", s.RSSI, " dBm")
		add("SINR", s.SINR, " dB")
		add("CQI", s.CQI, "")
	case cell.NR:
		add("SS-RSRP", s.SSRSRP, " dBm")
		add("SS-RSRQ", s.SSRSRQ, " dB")
		add("SS-SINR", s.SSSINR, " dB")
	case cell.GSM:
		add("RSSI", s.RSSI, " dBm")
	case cell.WCDMA:
		add("RSCP", s.RSCP, " dBm")
		add("Ec/No", s.EcNo, " dB")
	}
	if c.Quality != "" && c.Quality != string(quality.Unknown) {
		parts = append(parts, fmt.Sprintf("quality %s (%d)", c.Quality, c.QualityScore))
	}
	if bars := quality.Bars(c.ReferencePower()); bars >= 0 {
		parts = append(parts, "["+strings.Repeat("#", bars)+strings.Repeat("-", 5-bars)+"]")
	}
	return strings.Join(parts, "  ")
}

func formatMeters(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return humanize.SIWithDigits(m, 2, "m")
}

func formatDistance(m float64, method cell.DistanceMethod) string {
	switch method {
	case cell.DistanceTimingAdvance:
		return "~" + formatMeters(m) + " (timing advance)"
	case cell.DistancePathLoss:
		return "~" + formatMeters(m) + " (approx., path loss)"
	}
	return formatMeters(m)
}

func writeSummaryText(b *strings.Builder, cells []cell.Normalized) {
	byOperator := map[string]int{}
	byRAT := map[string]int{}
	for _, c := range cells {
		byOperator[c.Operator]++
		byRAT[c.RAT.String()]++
	}
	fmt.Fprintf(b, "Operators: %s\n", formatCounts(byOperator))
	fmt.Fprintf(b, "Networks: %s\n", formatCounts(byRAT))
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func writeSessionText(b *strings.Builder, s ca.Session) {
	if !s.Active {
		fmt.Fprintf(b, "Carrier aggregation: inactive (%s)\n", english.Plural(s.TotalCarriers(), "carrier", ""))
		return
	}
	fmt.Fprintf(b, "Carrier aggregation: %s %s  bands %s  ~%s MHz  est. %s Mbps\n",
		s.Class(), s.Mode, strings.Join(s.Bands, "+"),
		humanize.Ftoa(s.TotalBandwidthMHz), humanize.Comma(int64(s.EstimatedThroughputMbps)))
	if s.Combo != nil {
		fmt.Fprintf(b, "  known %s combo %s (%s, up to %s)\n", s.Combo.Operator, s.Combo.Class, s.Combo.MaxBW, s.Combo.Speed)
	}
	if s.ExtraRegistered > 0 {
		fmt.Fprintf(b, "  warning: %d extra registered LTE cell(s) treated as SCell\n", s.ExtraRegistered)
	}
}

func formatFix(f towerdb.Fix) string {
	t := f.Tower
	line := fmt.Sprintf("cell %d -> %s %s at %.5f,%.5f", f.Index+1, t.Key, t.Radio, t.Lat, t.Lon)
	if t.RangeM > 0 {
		line += " coverage " + formatMeters(float64(t.RangeM))
	}
	if f.RangeM != nil && f.BearingDeg != nil {
		line += fmt.Sprintf(", %s %s (%.0f°)", formatMeters(*f.RangeM), f.Compass, *f.BearingDeg)
	}
	return line
}
