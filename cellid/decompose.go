// Package cellid splits composite cell identities into a site (eNodeB, gNodeB,
// RNC) and the cell within that site.
package cellid

import "cellintel/cell"

// Radix of the sector/cell part for each RAT.
const (
	LTERadix   = 256   // 28-bit ECI: 20-bit eNodeB + 8-bit cell
	NRRadix    = 4096  // 36-bit NCI: gNodeB + 12-bit cell
	WCDMARadix = 65536 // 28-bit UC-Id: 12-bit RNC + 16-bit cell
)

// Radix returns the divisor for rat, or 0 when the RAT has no decomposition.
func Radix(rat cell.RAT) int64 {
	switch rat {
	case cell.LTE:
		return LTERadix
	case cell.NR:
		return NRRadix
	case cell.WCDMA:
		return WCDMARadix
	case cell.GSM, cell.Unknown:
		return 0
	}
	return 0
}

// Decompose returns (site, sector) for a composite id, or (nil, nil) when the
// id is absent or negative or the RAT has no decomposition (GSM reports LAC and
// CID directly).
func Decompose(rat cell.RAT, id *int64) (site, sector *int64) {
	if id == nil || *id < 0 {
		return nil, nil
	}
	radix := Radix(rat)
	if radix == 0 {
		return nil, nil
	}
	s := *id / radix
	c := *id % radix
	return &s, &c
}
