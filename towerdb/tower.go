// Package towerdb resolves cell identities to known tower positions from a
// local database imported from OpenCellID exports. Two backends are offered:
// a SQLite file using the towers(mcc,mnc,lac,cid,lat,lon,range) layout, and a
// Pebble key/value directory for large national extracts.
package towerdb

import (
	"context"
	"errors"
	"fmt"

	"cellintel/cell"
	"cellintel/distance"
)

var (
	errStoreClosed = errors.New("towerdb: store is closed")
	errInvalidKey  = errors.New("towerdb: invalid key")
)

// Key identifies one cell in the tower database. Area is the LAC or TAC and
// CellID is the full composite cell identity as broadcast.
type Key struct {
	MCC    int
	MNC    int
	Area   int
	CellID int64
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", k.MCC, k.MNC, k.Area, k.CellID)
}

func (k Key) valid() bool {
	return k.MCC > 0 && k.MNC >= 0 && k.Area >= 0 && k.CellID >= 0
}

// KeyFor builds the lookup key for a classified cell. Cells without an area
// code or composite identity cannot be located.
func KeyFor(c cell.Normalized) (Key, bool) {
	if c.AreaCode == nil || c.CompositeID == nil || c.NetworkCode <= 0 {
		return Key{}, false
	}
	k := Key{MCC: c.NetworkCode, MNC: c.CarrierCode, Area: *c.AreaCode, CellID: *c.CompositeID}
	return k, k.valid()
}

// Tower is a surveyed tower position.
type Tower struct {
	Key
	Radio   string  // OpenCellID radio column: GSM, UMTS, LTE, NR
	Lat     float64 // degrees
	Lon     float64 // degrees
	RangeM  int     // estimated coverage radius in meters
	Samples int
}

// Point returns the tower position.
func (t Tower) Point() distance.Point {
	return distance.Point{Lat: t.Lat, Lon: t.Lon}
}

// Store looks up towers. A miss is (Tower{}, false, nil); errors are reserved
// for backend failures.
type Store interface {
	Lookup(ctx context.Context, key Key) (Tower, bool, error)
	Close() error
}

// Writer receives imported towers in batches.
type Writer interface {
	PutBatch(ctx context.Context, towers []Tower) error
}
