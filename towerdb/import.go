package towerdb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"cellintel/strutil"

	"github.com/jszwec/csvutil"
)

const defaultImportBatch = 2000

// openCellIDRow is one line of an OpenCellID cell export.
type openCellIDRow struct {
	Radio         string  `csv:"radio"`
	MCC           int     `csv:"mcc"`
	Net           int     `csv:"net"`
	Area          int     `csv:"area"`
	Cell          int64   `csv:"cell"`
	Unit          int     `csv:"unit,omitempty"`
	Lon           float64 `csv:"lon"`
	Lat           float64 `csv:"lat"`
	Range         int     `csv:"range,omitempty"`
	Samples       int     `csv:"samples,omitempty"`
	Changeable    int     `csv:"changeable,omitempty"`
	Created       int64   `csv:"created,omitempty"`
	Updated       int64   `csv:"updated,omitempty"`
	AverageSignal int     `csv:"averageSignal,omitempty"`
}

var openCellIDHeader = []string{
	"radio", "mcc", "net", "area", "cell", "unit", "lon", "lat", "range",
	"samples", "changeable", "created", "updated", "averageSignal",
}

// ImportOptions filters and batches an import.
type ImportOptions struct {
	MCCs      []int    // keep only these country codes; empty keeps all
	Radios    []string // keep only these radio types (GSM, UMTS, LTE, NR); empty keeps all
	BatchSize int
	Logf      func(string, ...any)
}

// ImportStats summarizes an import run.
type ImportStats struct {
	Rows     int
	Imported int
	Filtered int
	Invalid  int
}

// ImportCSV streams an OpenCellID CSV export into w. The header row is
// optional: exports without one are read with the standard column order.
// Rows that fail to parse or carry impossible coordinates are counted as
// Invalid and skipped.
func ImportCSV(ctx context.Context, r io.Reader, w Writer, opts ImportOptions) (ImportStats, error) {
	var stats ImportStats
	if w == nil {
		return stats, errors.New("towerdb: import writer is nil")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultImportBatch
	}
	mccs := make(map[int]bool, len(opts.MCCs))
	for _, m := range opts.MCCs {
		mccs[m] = true
	}
	radios := make(map[string]bool, len(opts.Radios))
	for _, radio := range opts.Radios {
		radios[strutil.NormalizeUpper(radio)] = true
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("towerdb: read header: %w", err)
	}
	var dec *csvutil.Decoder
	if isHeader(first) {
		dec, err = csvutil.NewDecoder(cr, first...)
	} else {
		dec, err = csvutil.NewDecoder(&replayReader{first: append([]string(nil), first...), r: cr}, openCellIDHeader...)
	}
	if err != nil {
		return stats, fmt.Errorf("towerdb: csv decoder: %w", err)
	}

	batch := make([]Tower, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.PutBatch(ctx, batch); err != nil {
			return err
		}
		stats.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		var row openCellIDRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return stats, fmt.Errorf("towerdb: csv: %w", err)
			}
			stats.Invalid++
			continue
		}
		radio := strutil.NormalizeUpper(row.Radio)
		if (len(mccs) > 0 && !mccs[row.MCC]) || (len(radios) > 0 && !radios[radio]) {
			stats.Filtered++
			continue
		}
		t := Tower{
			Key:     Key{MCC: row.MCC, MNC: row.Net, Area: row.Area, CellID: row.Cell},
			Radio:   radio,
			Lat:     row.Lat,
			Lon:     row.Lon,
			RangeM:  row.Range,
			Samples: row.Samples,
		}
		if !t.Key.valid() || t.Lat < -90 || t.Lat > 90 || t.Lon < -180 || t.Lon > 180 {
			stats.Invalid++
			continue
		}
		batch = append(batch, t)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	if opts.Logf != nil {
		opts.Logf("tower import: rows=%d imported=%d filtered=%d invalid=%d", stats.Rows, stats.Imported, stats.Filtered, stats.Invalid)
	}
	return stats, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "radio")
}

// replayReader hands back a record already consumed while sniffing for a header.
type replayReader struct {
	first []string
	r     *csv.Reader
}

func (p *replayReader) Read() ([]string, error) {
	if p.first != nil {
		rec := p.first
		p.first = nil
		return rec, nil
	}
	return p.r.Read()
}
