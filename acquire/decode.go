// Package acquire decodes the JSON emitted by the device's cell-info tool
// (the termux-telephony-cellinfo shape) into cell.RawRecord values. Running
// the tool itself is left to the caller.
package acquire

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cellintel/band"
	"cellintel/cell"

	jsoniter "github.com/json-iterator/go"
)

// unavailable is the platform's "value not reported" sentinel for int fields
// (Integer.MAX_VALUE); it is decoded as an absent field. Long fields such as
// the NR cell identity use Long.MAX_VALUE, which lands on int64Limit.
const unavailable = math.MaxInt32

// int64Limit is 2^63: the first float64 that no int64 can hold.
const int64Limit = float64(1 << 63)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode reads one scan: a JSON array with one object per detected cell. Only a
// document that is not an array is an error. Entries that are not objects, or
// whose type tag is unsupported, decode to a record with RAT Unknown so the
// classifier can report them by position.
func Decode(r io.Reader) ([]cell.RawRecord, error) {
	var entries []jsoniter.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("acquire: decode scan: %w", err)
	}
	records := make([]cell.RawRecord, 0, len(entries))
	for _, raw := range entries {
		records = append(records, decodeEntry(raw))
	}
	return records, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) ([]cell.RawRecord, error) {
	return Decode(bytes.NewReader(data))
}

type fields map[string]any

func decodeEntry(raw jsoniter.RawMessage) cell.RawRecord {
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return cell.RawRecord{RAT: cell.Unknown, TypeTag: summarize(raw)}
	}
	tag := f.str("type")
	rec := cell.RawRecord{
		RAT:        cell.ParseRAT(tag),
		TypeTag:    tag,
		Registered: f.boolean("registered"),
	}
	if v := f.integer("mcc"); v != nil {
		rec.NetworkCode = *v
	}
	if v := f.integer("mnc"); v != nil {
		rec.CarrierCode = *v
	}
	rec.AreaCode = f.integer("tac", "lac")
	rec.PhysicalCellID = f.integer("pci", "psc")
	rec.TimingAdvance = f.integer("timingAdvance", "timing_advance", "ta")
	rec.BandwidthKHz = f.integer("bandwidth")

	switch rec.RAT {
	case cell.LTE:
		rec.CompositeID = f.integer64("ci", "eci")
		rec.ChannelNumber = f.integer("earfcn")
		if rec.BandwidthKHz == nil {
			rec.BandwidthKHz = bandwidthFromRB(f.integer("nrb", "numRb"))
		}
	case cell.NR:
		rec.CompositeID = f.integer64("nci", "ci")
		rec.ChannelNumber = f.integer("nrarfcn", "arfcn")
	case cell.GSM:
		rec.CompositeID = f.integer64("cid", "ci")
		rec.ChannelNumber = f.integer("arfcn")
	case cell.WCDMA:
		rec.CompositeID = f.integer64("cid", "ci")
		rec.ChannelNumber = f.integer("uarfcn")
	case cell.Unknown:
		rec.CompositeID = f.integer64("ci", "nci", "cid")
		rec.ChannelNumber = f.integer("earfcn", "nrarfcn", "uarfcn", "arfcn")
	}

	rec.Signal = cell.Signal{
		RSRP:   f.number("rsrp"),
		RSRQ:   f.number("rsrq"),
		RSSI:   f.number("rssi"),
		SINR:   f.number("rssnr", "sinr"),
		CQI:    f.number("cqi"),
		SSRSRP: f.number("ssRsrp", "csiRsrp"),
		SSRSRQ: f.number("ssRsrq", "csiRsrq"),
		SSSINR: f.number("ssSinr", "csiSinr"),
		RSCP:   f.number("rscp"),
		EcNo:   f.number("ecno"),
	}
	if rec.RAT == cell.GSM && rec.Signal.RSSI == nil {
		rec.Signal.RSSI = f.number("dbm")
	}
	return rec
}

// bandwidthFromRB turns a downlink resource-block count into kHz. Non-standard
// counts are not reported.
func bandwidthFromRB(nrb *int) *int {
	if nrb == nil {
		return nil
	}
	mhz, ok := band.BandwidthFromRB(*nrb)
	if !ok {
		return nil
	}
	khz := int(math.Round(mhz * 1000))
	return &khz
}

func summarize(raw jsoniter.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return s
}

func (f fields) str(key string) string {
	if v, ok := f[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func (f fields) boolean(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	}
	return false
}

// number returns the first present key as a float. Numeric strings are
// accepted; null, non-numeric values and the unavailable sentinel are absent.
func (f fields) number(keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := f[key]
		if !ok || raw == nil {
			continue
		}
		var v float64
		switch n := raw.(type) {
		case float64:
			v = n
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				continue
			}
			v = parsed
		default:
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v == unavailable || v == -unavailable ||
			v >= int64Limit || v <= -int64Limit {
			continue
		}
		return &v
	}
	return nil
}

// integer is number rounded to an int; values outside the int range are absent.
func (f fields) integer(keys ...string) *int {
	v := f.integer64(keys...)
	if v == nil || *v > math.MaxInt || *v < math.MinInt {
		return nil
	}
	i := int(*v)
	return &i
}

func (f fields) integer64(keys ...string) *int64 {
	v := f.number(keys...)
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	if r >= int64Limit || r < -int64Limit {
		return nil
	}
	i := int64(r)
	return &i
}
