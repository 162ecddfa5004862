package delivery

import (
	"math"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// Fixed confidences per resolution method
const (
	ConfidenceExact        = 1.0
	ConfidenceWardAverage  = 0.75
	ConfidenceMinimum      = 0.6
	ConfidenceStraightLine = 0.7

	DefaultMaxRadiusM = 400.0
)

// Resolver turns a partial location into a delivery quote. It holds only
// immutable snapshots and is safe for concurrent use.
type Resolver struct {
	index      *location.Index
	fees       *FeeTable
	origin     *models.LocationPin
	maxRadiusM float64
}

// Option customizes a Resolver
type Option func(*Resolver)

// WithOrigin sets the shop location used for straight-line distances
func WithOrigin(lat, lon float64) Option {
	return func(r *Resolver) {
		r.origin = &models.LocationPin{Lat: lat, Lon: lon}
	}
}

// WithMaxRadius sets the distance at which pin-to-street confidence reaches zero
func WithMaxRadius(meters float64) Option {
	return func(r *Resolver) {
		if meters > 0 {
			r.maxRadiusM = meters
		}
	}
}

// NewResolver builds a resolver; a nil index degrades every lookup to the
// lowest-confidence path instead of failing.
func NewResolver(index *location.Index, fees *FeeTable, opts ...Option) *Resolver {
	r := &Resolver{
		index:      index,
		fees:       fees,
		maxRadiusM: DefaultMaxRadiusM,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Index exposes the location snapshot for menus
func (r *Resolver) Index() *location.Index {
	return r.index
}

// Resolve estimates the distance, then prices it. First success wins:
// exact street, nearest street to the pin, ward average, minimum street
// distance, straight line from the shop, nothing.
func (r *Resolver) Resolve(ref models.LocationReference) models.DeliveryQuote {
	q := r.Estimate(ref)
	q.Fee = r.fees.Fee(q.DistanceKm, q.Path)
	return q
}

// Estimate resolves the distance without pricing it
func (r *Resolver) Estimate(ref models.LocationReference) models.DeliveryQuote {
	district, ward, ok := r.index.Ward(ref.District, ref.Ward)
	if !ok {
		return r.estimateWithoutWard(ref, district)
	}
	path := location.Path(district.Name, ward.Name, "")

	if street, found := ward.Street(ref.StreetName); found {
		path = location.Path(district.Name, ward.Name, street.Name)
		if km, ok := r.streetDistance(street); ok {
			return models.DeliveryQuote{
				DistanceKm:     km,
				Method:         models.MethodExactStreet,
				Confidence:     ConfidenceExact,
				ResolvedStreet: street.Name,
				Path:           path,
			}
		}
	}

	if ref.Pin != nil {
		candidates := make([]location.StreetRef, 0, len(ward.Streets))
		for si := range ward.Streets {
			candidates = append(candidates, location.StreetRef{District: district, Ward: ward, Street: &ward.Streets[si]})
		}
		if q, ok := r.nearest(ref.Pin, candidates, false); ok {
			return q
		}
	}

	if ward.AverageKm != nil {
		return models.DeliveryQuote{
			DistanceKm: math.Max(*ward.AverageKm, 0),
			Method:     models.MethodWardAverage,
			Confidence: ConfidenceWardAverage,
			Path:       path,
		}
	}

	if km, ok := minimumStreetDistance(ward); ok {
		return models.DeliveryQuote{
			DistanceKm: km,
			Method:     models.MethodDerivedMinimum,
			Confidence: ConfidenceMinimum,
			Path:       path,
		}
	}

	if q, ok := r.straightLine(ref.Pin); ok {
		q.Path = path
		return q
	}

	return models.DeliveryQuote{Method: models.MethodNone, Path: path}
}

func (r *Resolver) estimateWithoutWard(ref models.LocationReference, district *location.District) models.DeliveryQuote {
	if ref.Pin != nil {
		candidates := r.index.AllStreets()
		if district != nil {
			candidates = nil
			for wi := range district.Wards {
				w := &district.Wards[wi]
				for si := range w.Streets {
					candidates = append(candidates, location.StreetRef{District: district, Ward: w, Street: &w.Streets[si]})
				}
			}
		}
		if q, ok := r.nearest(ref.Pin, candidates, true); ok {
			return q
		}
		if q, ok := r.straightLine(ref.Pin); ok {
			return q
		}
	}
	return models.DeliveryQuote{Method: models.MethodNone}
}

// nearest picks the closest street with coordinates. Confidence falls
// linearly from 1 at the street to 0 at the radius and stays 0 beyond it.
// withinRadius rejects a match past the radius; the ward-less search uses
// it so a far pin falls back to the straight line.
func (r *Resolver) nearest(pin *models.LocationPin, candidates []location.StreetRef, withinRadius bool) (models.DeliveryQuote, bool) {
	best := -1
	bestM := math.Inf(1)
	for i, c := range candidates {
		if !c.Street.HasCoordinates() {
			continue
		}
		d := HaversineMeters(pin.Lat, pin.Lon, *c.Street.Lat, *c.Street.Lon)
		if d < bestM {
			best, bestM = i, d
		}
	}
	if best < 0 || (withinRadius && bestM > r.maxRadiusM) {
		return models.DeliveryQuote{}, false
	}

	c := candidates[best]
	km, ok := r.streetDistance(c.Street)
	if !ok {
		return models.DeliveryQuote{}, false
	}
	return models.DeliveryQuote{
		DistanceKm:     km,
		Method:         models.MethodNearestCoordinate,
		Confidence:     clamp01(1 - bestM/r.maxRadiusM),
		ResolvedStreet: c.Street.Name,
		Path:           location.Path(c.District.Name, c.Ward.Name, c.Street.Name),
	}, true
}

func (r *Resolver) straightLine(pin *models.LocationPin) (models.DeliveryQuote, bool) {
	if pin == nil || r.origin == nil {
		return models.DeliveryQuote{}, false
	}
	m := HaversineMeters(r.origin.Lat, r.origin.Lon, pin.Lat, pin.Lon)
	return models.DeliveryQuote{
		DistanceKm: m / 1000,
		Method:     models.MethodStraightLine,
		Confidence: ConfidenceStraightLine,
	}, true
}

// streetDistance prefers the configured road distance, then the straight
// line from the shop to the street's coordinates.
func (r *Resolver) streetDistance(s *location.Street) (float64, bool) {
	if s.DistanceKm != nil {
		return math.Max(*s.DistanceKm, 0), true
	}
	if s.HasCoordinates() && r.origin != nil {
		return HaversineMeters(r.origin.Lat, r.origin.Lon, *s.Lat, *s.Lon) / 1000, true
	}
	return 0, false
}

func minimumStreetDistance(w *location.Ward) (float64, bool) {
	found := false
	minKm := math.Inf(1)
	for _, s := range w.Streets {
		if s.DistanceKm != nil && *s.DistanceKm < minKm {
			minKm = *s.DistanceKm
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return math.Max(minKm, 0), true
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
