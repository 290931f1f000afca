// Package cell defines the value types shared by the classification
// pipeline: the closed radio-access-technology enum, the raw per-cell record
// handed over by the acquisition layer, and the normalized cell produced for
// each record.
package cell

import (
	"fmt"
	"strings"
)

// RAT is the radio access technology of a reported cell. It is decided once
// at ingestion and matched exhaustively everywhere downstream.
type RAT uint8

const (
	Unknown RAT = iota
	LTE
	NR
	GSM
	WCDMA
)

var ratNames = [...]string{
	Unknown: "Unknown",
	LTE:     "LTE",
	NR:      "NR",
	GSM:     "GSM",
	WCDMA:   "WCDMA",
}

// ratAliases maps normalized type tags to a RAT. Tags are compared after
// lower-casing, stripping a "cellinfo" prefix and dropping non-alphanumerics,
// so "CellInfoLte", "lte" and "LTE" all land on LTE while "cdma" stays Unknown.
var ratAliases = map[string]RAT{
	"lte":   LTE,
	"4g":    LTE,
	"nr":    NR,
	"5g":    NR,
	"nr5g":  NR,
	"5gnr":  NR,
	"gsm":   GSM,
	"2g":    GSM,
	"wcdma": WCDMA,
	"umts":  WCDMA,
	"3g":    WCDMA,
}

// ParseRAT maps a free-text acquisition type tag to a RAT. Unrecognized or
// empty tags return Unknown.
func ParseRAT(tag string) RAT {
	key := normalizeTag(tag)
	if key == "" {
		return Unknown
	}
	if rat, ok := ratAliases[key]; ok {
		return rat
	}
	return Unknown
}

func normalizeTag(tag string) string {
	cleaned := strings.ToLower(strings.TrimSpace(tag))
	cleaned = strings.TrimPrefix(cleaned, "cellinfo")
	var b strings.Builder
	b.Grow(len(cleaned))
	for i := 0; i < len(cleaned); i++ {
		ch := cleaned[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// String returns the canonical upper-case name.
func (r RAT) String() string {
	if int(r) < len(ratNames) {
		return ratNames[r]
	}
	return fmt.Sprintf("RAT(%d)", uint8(r))
}

// Valid reports whether r is one of the four supported technologies.
func (r RAT) Valid() bool {
	switch r {
	case LTE, NR, GSM, WCDMA:
		return true
	default:
		return false
	}
}

// MarshalText encodes the RAT by name so serialized cells stay readable.
func (r RAT) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the canonical names as well as any acquisition alias.
func (r *RAT) UnmarshalText(text []byte) error {
	value := string(text)
	if strings.EqualFold(value, ratNames[Unknown]) {
		*r = Unknown
		return nil
	}
	parsed := ParseRAT(value)
	if parsed == Unknown {
		return fmt.Errorf("cell: unknown RAT %q", value)
	}
	*r = parsed
	return nil
}
