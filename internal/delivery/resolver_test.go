package delivery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/dukachat-backend/internal/location"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

const (
	shopLat = -6.8160
	shopLon = 39.2803
)

func f(v float64) *float64 { return &v }

// northOf returns the latitude km kilometres north of lat
func northOf(lat, km float64) float64 {
	return lat + km*1000/earthRadiusM*180/math.Pi
}

func testIndex() *location.Index {
	return location.NewIndex([]location.Region{{
		Name: "Dar es Salaam",
		Districts: []location.District{{
			Name: "Temeke",
			Wards: []location.Ward{
				{
					Name:      "Keko",
					AverageKm: f(6),
					Streets: []location.Street{
						{Name: "Keko Modern Furniture", DistanceKm: f(4.2), Lat: f(northOf(shopLat, 4)), Lon: f(shopLon)},
						{Name: "Mtaa wa Ünïty", DistanceKm: f(5.5)},
					},
				},
				{
					Name: "Mbagala",
					Streets: []location.Street{
						{Name: "Kuu", DistanceKm: f(12)},
						{Name: "Rangi Tatu", DistanceKm: f(9.5)},
						{Name: "Kizuiani"},
					},
				},
				{Name: "Azimio"},
			},
		}},
	}})
}

func testResolver(t *testing.T) *Resolver {
	table, err := NewFeeTable(DefaultBands(), map[string]int64{"temeke::mbagala::kuu": 7000})
	require.NoError(t, err)
	return NewResolver(testIndex(), table, WithOrigin(shopLat, shopLon), WithMaxRadius(400))
}

func TestResolveExactStreet(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "temeke", Ward: "KEKO", StreetName: "  keko   modern furniture "})
	assert.Equal(t, models.MethodExactStreet, q.Method)
	assert.Equal(t, 1.0, q.Confidence)
	assert.Equal(t, 4.2, q.DistanceKm)
	assert.Equal(t, "Keko Modern Furniture", q.ResolvedStreet)
	assert.Equal(t, int64(5000), q.Fee)
}

func TestResolveExactStreetIgnoresDiacritics(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko", StreetName: "mtaa wa unity"})
	assert.Equal(t, models.MethodExactStreet, q.Method)
	assert.Equal(t, 5.5, q.DistanceKm)
}

func TestResolveWardAverageWhenStreetUnknown(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko", StreetName: "Nowhere Road"})
	assert.Equal(t, models.MethodWardAverage, q.Method)
	assert.Equal(t, 0.75, q.Confidence)
	assert.Equal(t, 6.0, q.DistanceKm)
	assert.Equal(t, int64(8000), q.Fee)
}

func TestResolveNearestByCoordinate(t *testing.T) {
	r := testResolver(t)
	streetLat := northOf(shopLat, 4)

	onTop := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko",
		Pin: &models.LocationPin{Lat: streetLat, Lon: shopLon}})
	assert.Equal(t, models.MethodNearestCoordinate, onTop.Method)
	assert.InDelta(t, 1.0, onTop.Confidence, 1e-9)
	assert.Equal(t, 4.2, onTop.DistanceKm)

	halfway := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko",
		Pin: &models.LocationPin{Lat: northOf(streetLat, 0.2), Lon: shopLon}})
	assert.Equal(t, models.MethodNearestCoordinate, halfway.Method)
	assert.InDelta(t, 0.5, halfway.Confidence, 1e-3)

	beyondRadius := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko",
		Pin: &models.LocationPin{Lat: northOf(streetLat, 0.5), Lon: shopLon}})
	assert.Equal(t, models.MethodNearestCoordinate, beyondRadius.Method)
	assert.Equal(t, 0.0, beyondRadius.Confidence)
	assert.Equal(t, 4.2, beyondRadius.DistanceKm)
	assert.Equal(t, "Keko Modern Furniture", beyondRadius.ResolvedStreet)
	assert.Equal(t, int64(5000), beyondRadius.Fee)
}

func TestResolveWithoutWardIgnoresFarStreets(t *testing.T) {
	r := testResolver(t)
	streetLat := northOf(shopLat, 4)

	near := r.Resolve(models.LocationReference{District: "Temeke",
		Pin: &models.LocationPin{Lat: northOf(streetLat, 0.1), Lon: shopLon}})
	assert.Equal(t, models.MethodNearestCoordinate, near.Method)
	assert.InDelta(t, 0.75, near.Confidence, 1e-3)

	far := r.Resolve(models.LocationReference{District: "Temeke",
		Pin: &models.LocationPin{Lat: northOf(streetLat, 0.5), Lon: shopLon}})
	assert.Equal(t, models.MethodStraightLine, far.Method)
	assert.InDelta(t, 4.5, far.DistanceKm, 1e-3)
}

func TestResolveDerivedMinimum(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Mbagala"})
	assert.Equal(t, models.MethodDerivedMinimum, q.Method)
	assert.Equal(t, 0.6, q.Confidence)
	assert.Equal(t, 9.5, q.DistanceKm)
}

func TestResolveOverrideBeatsBand(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Mbagala", StreetName: "Kuu"})
	assert.Equal(t, models.MethodExactStreet, q.Method)
	assert.Equal(t, int64(7000), q.Fee)
	assert.Equal(t, int64(10000), r.fees.BandFee(q.DistanceKm))
}

func TestResolveNothingKnown(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Azimio"})
	assert.Equal(t, models.MethodNone, q.Method)
	assert.Zero(t, q.Confidence)
	assert.Zero(t, q.DistanceKm)

	q = r.Resolve(models.LocationReference{District: "Kinondoni", Ward: "Msasani"})
	assert.Equal(t, models.MethodNone, q.Method)
}

func TestResolvePinWithoutWardUsesStraightLine(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{Pin: &models.LocationPin{Lat: northOf(shopLat, 3), Lon: shopLon}})
	assert.Equal(t, models.MethodStraightLine, q.Method)
	assert.InDelta(t, 3.0, q.DistanceKm, 1e-6)
	assert.Equal(t, ConfidenceStraightLine, q.Confidence)
	assert.Equal(t, int64(5000), q.Fee)
}

func TestResolvePinWithoutWardFindsStreetAcrossIndex(t *testing.T) {
	r := testResolver(t)

	q := r.Resolve(models.LocationReference{Pin: &models.LocationPin{Lat: northOf(shopLat, 4), Lon: shopLon}})
	assert.Equal(t, models.MethodNearestCoordinate, q.Method)
	assert.Equal(t, "Keko Modern Furniture", q.ResolvedStreet)
}

func TestResolveWithoutIndexDegrades(t *testing.T) {
	r := NewResolver(nil, nil)

	q := r.Resolve(models.LocationReference{District: "Temeke", Ward: "Keko", StreetName: "Kuu"})
	assert.Equal(t, models.MethodNone, q.Method)
	assert.Zero(t, q.Fee)
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, HaversineMeters(1, 1, 1, 1), 1e-9)
	assert.InDelta(t, 111195, HaversineMeters(0, 0, 1, 0), 1)
}
