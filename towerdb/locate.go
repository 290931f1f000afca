package towerdb

import (
	"context"
	"log"
	"time"

	"cellintel/cell"
	"cellintel/distance"
	"cellintel/internal/ratelimit"
)

// Fix is a classified cell matched to a surveyed tower. Range and bearing are
// filled only when an observer position is known.
type Fix struct {
	Index      int      `json:"index"`
	Tower      Tower    `json:"tower"`
	RangeM     *float64 `json:"range_m,omitempty"`
	BearingDeg *float64 `json:"bearing_deg,omitempty"`
	Compass    string   `json:"compass,omitempty"`
}

// Locator resolves a scan's cells against a Store.
type Locator struct {
	Store    Store
	Observer *distance.Point
	Timeout  time.Duration // per lookup; zero means no extra bound
	Logf     func(string, ...any)
	// Failures throttles lookup-error logging; nil logs every failure.
	Failures *ratelimit.Counter
}

// Locate looks up every locatable cell. Backend errors are logged and the
// cell is skipped; one failing lookup never aborts the scan.
func (l *Locator) Locate(ctx context.Context, cells []cell.Normalized) []Fix {
	if l == nil || l.Store == nil {
		return nil
	}
	logf := l.Logf
	if logf == nil {
		logf = log.Printf
	}
	var fixes []Fix
	for i, c := range cells {
		key, ok := KeyFor(c)
		if !ok {
			continue
		}
		tower, found, err := l.lookup(ctx, key)
		if err != nil {
			if l.Failures == nil {
				logf("tower lookup %s failed: %v", key, err)
			} else if total, ok := l.Failures.Inc(); ok {
				logf("tower lookup %s failed (%d failures so far): %v", key, total, err)
			}
			continue
		}
		if !found {
			continue
		}
		fix := Fix{Index: i, Tower: tower}
		if l.Observer != nil {
			rng := distance.Haversine(*l.Observer, tower.Point())
			brg := distance.Bearing(*l.Observer, tower.Point())
			fix.RangeM = &rng
			fix.BearingDeg = &brg
			fix.Compass = distance.CompassPoint(brg)
		}
		fixes = append(fixes, fix)
	}
	return fixes
}

func (l *Locator) lookup(ctx context.Context, key Key) (Tower, bool, error) {
	if l.Timeout <= 0 {
		return l.Store.Lookup(ctx, key)
	}
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()
	return l.Store.Lookup(ctx, key)
}
