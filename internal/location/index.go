package location

import (
	"strconv"
	"strings"
)

// Street is the finest location level. Distance is the road distance from
// the shop; coordinates are optional.
type Street struct {
	ID         string   `toml:"id" json:"id"`
	Name       string   `toml:"name" json:"name"`
	DistanceKm *float64 `toml:"distance_km" json:"distance_km,omitempty"`
	Lat        *float64 `toml:"lat" json:"lat,omitempty"`
	Lon        *float64 `toml:"lon" json:"lon,omitempty"`
}

// HasCoordinates reports whether the street can take part in pin matching
func (s Street) HasCoordinates() bool {
	return s.Lat != nil && s.Lon != nil
}

// Ward groups streets and may carry a representative distance
type Ward struct {
	ID        string   `toml:"id" json:"id"`
	Name      string   `toml:"name" json:"name"`
	AverageKm *float64 `toml:"average_km" json:"average_km,omitempty"`
	Streets   []Street `toml:"streets" json:"streets,omitempty"`
}

type District struct {
	ID    string `toml:"id" json:"id"`
	Name  string `toml:"name" json:"name"`
	Wards []Ward `toml:"wards" json:"wards,omitempty"`
}

type Region struct {
	ID        string     `toml:"id" json:"id"`
	Name      string     `toml:"name" json:"name"`
	Districts []District `toml:"districts" json:"districts,omitempty"`
}

// StreetRef is a street together with its parents
type StreetRef struct {
	District *District
	Ward     *Ward
	Street   *Street
}

// Index is the read-only region > district > ward > street hierarchy.
// A nil *Index behaves as an empty index.
type Index struct {
	regions   []Region
	districts []*District
	byKey     map[string]*District
}

// NewIndex copies the hierarchy, fills missing ids from names and builds lookups
func NewIndex(regions []Region) *Index {
	idx := &Index{
		regions: cloneRegions(regions),
		byKey:   make(map[string]*District),
	}

	for ri := range idx.regions {
		region := &idx.regions[ri]
		if region.ID == "" {
			region.ID = Slug(region.Name)
		}
		for di := range region.Districts {
			d := &region.Districts[di]
			if d.ID == "" {
				d.ID = Slug(d.Name)
			}
			for wi := range d.Wards {
				w := &d.Wards[wi]
				if w.ID == "" {
					w.ID = Slug(w.Name)
				}
				for si := range w.Streets {
					s := &w.Streets[si]
					if s.ID == "" {
						s.ID = Slug(s.Name)
					}
				}
			}
			idx.districts = append(idx.districts, d)
			idx.byKey[Fold(d.ID)] = d
			if _, taken := idx.byKey[Fold(d.Name)]; !taken {
				idx.byKey[Fold(d.Name)] = d
			}
		}
	}
	return idx
}

// Empty reports whether there is nothing to resolve against
func (i *Index) Empty() bool {
	return i == nil || len(i.districts) == 0
}

// Regions returns the loaded hierarchy
func (i *Index) Regions() []Region {
	if i == nil {
		return nil
	}
	return i.regions
}

// Districts lists every district in configuration order
func (i *Index) Districts() []*District {
	if i == nil {
		return nil
	}
	return i.districts
}

// District finds a district by id or name (case and diacritic insensitive)
func (i *Index) District(ref string) (*District, bool) {
	if i == nil || strings.TrimSpace(ref) == "" {
		return nil, false
	}
	d, ok := i.byKey[Fold(ref)]
	return d, ok
}

// Ward finds a ward by id or name within a district
func (i *Index) Ward(districtRef, wardRef string) (*District, *Ward, bool) {
	d, ok := i.District(districtRef)
	if !ok || strings.TrimSpace(wardRef) == "" {
		return d, nil, false
	}
	key := Fold(wardRef)
	for wi := range d.Wards {
		w := &d.Wards[wi]
		if Fold(w.ID) == key || Fold(w.Name) == key {
			return d, w, true
		}
	}
	return d, nil, false
}

// Street finds a street by id or name within a ward
func (w *Ward) Street(ref string) (*Street, bool) {
	if w == nil {
		return nil, false
	}
	key := Fold(ref)
	if key == "" {
		return nil, false
	}
	for si := range w.Streets {
		s := &w.Streets[si]
		if Fold(s.Name) == key || Fold(s.ID) == key {
			return s, true
		}
	}
	return nil, false
}

// AllStreets flattens the index for index-wide coordinate searches
func (i *Index) AllStreets() []StreetRef {
	if i == nil {
		return nil
	}
	var out []StreetRef
	for _, d := range i.districts {
		for wi := range d.Wards {
			w := &d.Wards[wi]
			for si := range w.Streets {
				out = append(out, StreetRef{District: d, Ward: w, Street: &w.Streets[si]})
			}
		}
	}
	return out
}

// Pick resolves a free-text choice against a list of names: either a
// 1-based position or a folded name/id match.
func Pick(input string, ids, names []string) (int, bool) {
	in := strings.TrimSpace(input)
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(names) {
			return n - 1, true
		}
		return -1, false
	}
	key := Fold(in)
	if key == "" {
		return -1, false
	}
	for i := range names {
		if Fold(names[i]) == key || (i < len(ids) && Fold(ids[i]) == key) {
			return i, true
		}
	}
	return -1, false
}

func cloneRegions(in []Region) []Region {
	out := make([]Region, len(in))
	for ri, r := range in {
		out[ri] = r
		out[ri].Districts = make([]District, len(r.Districts))
		for di, d := range r.Districts {
			out[ri].Districts[di] = d
			out[ri].Districts[di].Wards = make([]Ward, len(d.Wards))
			for wi, w := range d.Wards {
				out[ri].Districts[di].Wards[wi] = w
				out[ri].Districts[di].Wards[wi].Streets = append([]Street(nil), w.Streets...)
			}
		}
	}
	return out
}
