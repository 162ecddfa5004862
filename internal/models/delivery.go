package models

// ResolutionMethod tags how a delivery distance was obtained
type ResolutionMethod string

const (
	MethodExactStreet       ResolutionMethod = "exact-street-match"
	MethodNearestCoordinate ResolutionMethod = "nearest-by-coordinate"
	MethodWardAverage       ResolutionMethod = "ward-average"
	MethodDerivedMinimum    ResolutionMethod = "derived-minimum"
	MethodStraightLine      ResolutionMethod = "straight-line"
	MethodFlatRate          ResolutionMethod = "flat-rate"
	MethodNone              ResolutionMethod = "none"
)

// LocationReference is a partial customer location. District and Ward are
// the base pair; StreetName or Pin refine it.
type LocationReference struct {
	District   string       `json:"district"`
	Ward       string       `json:"ward"`
	StreetName string       `json:"street_name,omitempty"`
	Pin        *LocationPin `json:"pin,omitempty"`
}

// DeliveryQuote is a resolved distance and fee for one checkout
type DeliveryQuote struct {
	DistanceKm     float64          `json:"distance_km"`
	Method         ResolutionMethod `json:"resolution_method"`
	Confidence     float64          `json:"confidence"`
	Fee            int64            `json:"fee"`
	ResolvedStreet string           `json:"resolved_street,omitempty"`
	Path           string           `json:"path,omitempty"`
}
