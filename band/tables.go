package band

import (
	"strconv"

	"cellintel/cell"
)

func lte(num, start, end, freq int, duplex cell.Duplex) Range {
	return Range{Start: start, End: end, Band: cell.Band{ID: "B" + strconv.Itoa(num), FrequencyMHz: freq, Duplex: duplex}}
}

// lteRanges are the EARFCN downlink spans, inclusive on both ends.
var lteRanges = []Range{
	lte(1, 0, 599, 2100, cell.FDD),
	lte(2, 600, 1199, 1900, cell.FDD),
	lte(3, 1200, 1949, 1800, cell.FDD),
	lte(4, 1950, 2399, 1700, cell.FDD),
	lte(5, 2400, 2649, 850, cell.FDD),
	lte(6, 2650, 2749, 800, cell.FDD),
	lte(7, 2750, 3449, 2600, cell.FDD),
	lte(8, 3450, 3799, 900, cell.FDD),
	lte(20, 6150, 6449, 800, cell.FDD),
	lte(33, 36200, 36349, 1900, cell.TDD),
	lte(34, 36350, 36949, 2000, cell.TDD),
	lte(35, 36950, 37549, 1900, cell.TDD),
	lte(36, 37550, 37749, 1900, cell.TDD),
	lte(37, 37750, 38249, 1900, cell.TDD),
	lte(38, 38250, 38649, 2600, cell.TDD),
	lte(39, 38650, 39649, 1900, cell.TDD),
	lte(40, 39650, 41589, 2300, cell.TDD),
	lte(41, 41590, 43589, 2500, cell.TDD),
	lte(42, 43590, 45589, 3500, cell.TDD),
	lte(43, 45590, 46589, 3700, cell.TDD),
}

func nr(id string, start, endExclusive, freq int, duplex cell.Duplex) Range {
	return Range{Start: start, End: endExclusive - 1, Band: cell.Band{ID: id, FrequencyMHz: freq, Duplex: duplex}}
}

// NR-ARFCN spans are published half-open; nr() stores them inclusive.
var nrRanges = []Range{
	nr("n28", 151600, 160600, 700, cell.FDD),
	nr("n5", 173800, 178800, 850, cell.FDD),
	nr("n8", 185000, 192000, 900, cell.FDD),
	nr("n3", 361000, 376000, 1800, cell.FDD),
	nr("n1", 422000, 434000, 2100, cell.FDD),
	nr("n40", 460000, 480000, 2300, cell.TDD),
	nr("n41", 499200, 538000, 2500, cell.TDD),
	nr("n258", 2054166, 2104166, 26000, cell.TDD),
}

// n77 and n78 share one NR-ARFCN span; which ID the span reports is decided by
// an OverlapPolicy.
const (
	n7xStart = 620000
	n7xEnd   = 653334 // exclusive
)

var (
	bandN77 = cell.Band{ID: "n77", FrequencyMHz: 3700, Duplex: cell.TDD}
	bandN78 = cell.Band{ID: "n78", FrequencyMHz: 3500, Duplex: cell.TDD}
)

func gsm(id string, start, end, freq int) Range {
	return Range{Start: start, End: end, Band: cell.Band{ID: id, FrequencyMHz: freq, Duplex: cell.FDD}}
}

var gsmRanges = []Range{
	gsm("GSM900", 1, 124, 900),
	gsm("GSM1800", 512, 885, 1800),
	gsm("EGSM900", 975, 1023, 900),
}

// wcdmaRanges are UARFCN downlink spans for the common FDD bands.
var wcdmaRanges = []Range{
	gsm("UMTS1800", 1162, 1513, 1800),
	gsm("UMTS900", 2937, 3088, 900),
	gsm("UMTS850", 4357, 4458, 850),
	gsm("UMTS2100", 10562, 10838, 2100),
}
