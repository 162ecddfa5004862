package delivery

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
)

// ErrInvalidFeeTable is returned when bands would make a farther distance cheaper
var ErrInvalidFeeTable = errors.New("invalid fee table")

// Band charges Fee for distances up to UpToKm. With PerKm set the band is
// incremental: every started km past the previous band's limit adds PerKm.
// UpToKm <= 0 marks an open-ended last band.
type Band struct {
	UpToKm float64 `toml:"up_to_km" json:"up_to_km"`
	Fee    int64   `toml:"fee" json:"fee"`
	PerKm  int64   `toml:"per_km" json:"per_km"`
}

func (b Band) openEnded() bool {
	return b.UpToKm <= 0
}

// FeeTable maps a distance to a delivery fee. Overrides are keyed by a
// district::ward[::street] path and win over the bands.
type FeeTable struct {
	bands     []Band
	overrides map[string]int64
}

// DefaultBands is used when no fee configuration is supplied
func DefaultBands() []Band {
	return []Band{
		{UpToKm: 2, Fee: 3000},
		{UpToKm: 5, Fee: 5000},
		{UpToKm: 10, Fee: 8000},
		{UpToKm: 0, Fee: 8000, PerKm: 1000},
	}
}

// NewFeeTable sorts and validates the bands and folds the override keys
func NewFeeTable(bands []Band, overrides map[string]int64) (*FeeTable, error) {
	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].openEnded() != sorted[j].openEnded() {
			return !sorted[i].openEnded()
		}
		return sorted[i].UpToKm < sorted[j].UpToKm
	})

	var lower float64
	var prevMax int64
	for i, b := range sorted {
		if b.Fee < 0 || b.PerKm < 0 {
			return nil, fmt.Errorf("%w: band %d has a negative fee", ErrInvalidFeeTable, i)
		}
		if b.openEnded() && i != len(sorted)-1 {
			return nil, fmt.Errorf("%w: more than one open-ended band", ErrInvalidFeeTable)
		}
		if b.Fee < prevMax {
			return nil, fmt.Errorf("%w: band up to %.1f km costs %d, less than %d before it",
				ErrInvalidFeeTable, b.UpToKm, b.Fee, prevMax)
		}
		if !b.openEnded() {
			prevMax = b.Fee + int64(math.Ceil(b.UpToKm-lower))*b.PerKm
			lower = b.UpToKm
		}
	}

	folded := make(map[string]int64, len(overrides))
	for path, fee := range overrides {
		if fee < 0 {
			return nil, fmt.Errorf("%w: override %q is negative", ErrInvalidFeeTable, path)
		}
		folded[location.NormalizePath(path)] = fee
	}

	return &FeeTable{bands: sorted, overrides: folded}, nil
}

// BandFee looks the distance up in the bands only
func (t *FeeTable) BandFee(distanceKm float64) int64 {
	if t == nil || len(t.bands) == 0 {
		return 0
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}

	var lower float64
	for _, b := range t.bands {
		if b.openEnded() || distanceKm <= b.UpToKm {
			return b.charge(distanceKm, lower)
		}
		lower = b.UpToKm
	}

	// Past the last bounded band: charge that band at its limit
	last := t.bands[len(t.bands)-1]
	var lastLower float64
	if len(t.bands) > 1 {
		lastLower = t.bands[len(t.bands)-2].UpToKm
	}
	return last.charge(last.UpToKm, lastLower)
}

func (b Band) charge(distanceKm, lower float64) int64 {
	if b.PerKm == 0 || distanceKm <= lower {
		return b.Fee
	}
	return b.Fee + int64(math.Ceil(distanceKm-lower))*b.PerKm
}

// Override returns the most specific override for the path, trying the
// full path first and then its ward prefix.
func (t *FeeTable) Override(path string) (int64, bool) {
	if t == nil || path == "" {
		return 0, false
	}
	key := location.NormalizePath(path)
	for key != "" {
		if fee, ok := t.overrides[key]; ok {
			return fee, true
		}
		cut := strings.LastIndex(key, "::")
		if cut < 0 || strings.Count(key, "::") < 2 {
			break
		}
		key = key[:cut]
	}
	return 0, false
}

// Fee prefers an override for the path and falls back to the bands
func (t *FeeTable) Fee(distanceKm float64, path string) int64 {
	if fee, ok := t.Override(path); ok {
		return fee
	}
	return t.BandFee(distanceKm)
}
