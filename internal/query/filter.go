package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// EarthRadius is the mean Earth radius in metres used for proximity filters.
const EarthRadius = 6371008.8

// FilterFunc inspects query parameters and adds predicates to a pipeline. It
// returns an invalidQueryParam error for malformed values.
type FilterFunc func(q url.Values, p *Pipeline) error

// Filters combines filter functions; the first error wins.
func Filters(funcs ...FilterFunc) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		for _, f := range funcs {
			if err := f(q, p); err != nil {
				return err
			}
		}
		return nil
	}
}

// Values returns the non-blank values of a repeatable query parameter.
func Values(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// MatchAny keeps documents whose column equals one of the parameter values.
// Comparison is done on the text form of the column, so malformed ids simply
// match nothing.
func MatchAny(param, column string) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		if values := Values(q, param); len(values) > 0 {
			p.Where(fmt.Sprintf("doc.%s::text = ANY(%s)", column, p.Bind(values)))
		}
		return nil
	}
}

// MatchAnyFold is MatchAny ignoring case.
func MatchAnyFold(param, column string) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		values := Values(q, param)
		if len(values) == 0 {
			return nil
		}
		for i, v := range values {
			values[i] = strings.ToLower(v)
		}
		p.Where(fmt.Sprintf("lower(doc.%s) = ANY(%s)", column, p.Bind(values)))
		return nil
	}
}

// Search keeps documents where any of the columns contains any of the
// parameter values, ignoring case.
func Search(param string, columns ...string) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		terms := Values(q, param)
		if len(terms) == 0 {
			return nil
		}
		var alternatives []string
		for _, term := range terms {
			placeholder := p.Bind("%" + escapeLike(term) + "%")
			for _, c := range columns {
				alternatives = append(alternatives, fmt.Sprintf("doc.%s ILIKE %s", c, placeholder))
			}
		}
		p.Where("(" + strings.Join(alternatives, " OR ") + ")")
		return nil
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// BBox is a longitude/latitude rectangle given by its south-west and
// north-east corners. A west edge greater than the east edge crosses the
// antimeridian.
type BBox struct {
	West, South, East, North float64
}

// ParseBBox parses "west,south,east,north".
func ParseBBox(param, value string) (BBox, error) {
	nums, err := parseNumbers(value)
	if err != nil || len(nums) != 4 {
		return BBox{}, domain.InvalidQueryParam(param, fmt.Sprintf(
			"Query parameter %q must contain 4 comma-separated numbers (south-west longitude, south-west latitude, north-east longitude, north-east latitude), but its value is %q",
			param, value))
	}
	b := BBox{West: nums[0], South: nums[1], East: nums[2], North: nums[3]}
	if !validLongitude(b.West) || !validLongitude(b.East) || !validLatitude(b.South) || !validLatitude(b.North) || b.South > b.North {
		return BBox{}, domain.InvalidQueryParam(param, fmt.Sprintf(
			"Query parameter %q must describe a box with longitudes between -180 and 180 and latitudes between -90 and 90 (south before north), but its value is %q",
			param, value))
	}
	return b, nil
}

// Near is a proximity constraint: documents within Distance metres of a
// point. Altitude is accepted for symmetry with stored locations but does not
// affect the great-circle distance.
type Near struct {
	Longitude, Latitude float64
	Altitude            *float64
	Distance            float64
}

// ParseNear parses "lon,lat,distance" or "lon,lat,alt,distance".
func ParseNear(param, value string) (Near, error) {
	nums, err := parseNumbers(value)
	if err != nil || (len(nums) != 3 && len(nums) != 4) {
		return Near{}, domain.InvalidQueryParam(param, fmt.Sprintf(
			"Query parameter %q must contain 3 or 4 comma-separated numbers (longitude, latitude, optional altitude and distance in meters), but its value is %q",
			param, value))
	}
	n := Near{Longitude: nums[0], Latitude: nums[1], Distance: nums[len(nums)-1]}
	if len(nums) == 4 {
		alt := nums[2]
		n.Altitude = &alt
	}
	if !validLongitude(n.Longitude) || !validLatitude(n.Latitude) || n.Distance < 0 {
		return Near{}, domain.InvalidQueryParam(param, fmt.Sprintf(
			"Query parameter %q must have a longitude between -180 and 180, a latitude between -90 and 90 and a distance greater than or equal to 0, but its value is %q",
			param, value))
	}
	return n, nil
}

// WithinBBox keeps documents whose location lies in any of the boxes given by
// the parameter.
func WithinBBox(param, lonColumn, latColumn string) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		var alternatives []string
		for _, v := range Values(q, param) {
			b, err := ParseBBox(param, v)
			if err != nil {
				return err
			}
			west, east := p.Bind(b.West), p.Bind(b.East)
			lon := fmt.Sprintf("doc.%s BETWEEN %s AND %s", lonColumn, west, east)
			if b.West > b.East {
				lon = fmt.Sprintf("(doc.%s >= %s OR doc.%s <= %s)", lonColumn, west, lonColumn, east)
			}
			alternatives = append(alternatives, fmt.Sprintf("(%s AND doc.%s BETWEEN %s AND %s)",
				lon, latColumn, p.Bind(b.South), p.Bind(b.North)))
		}
		if len(alternatives) > 0 {
			p.Where("(" + strings.Join(alternatives, " OR ") + ")")
		}
		return nil
	}
}

// NearPoint keeps documents within the distance of any of the points given by
// the parameter, using the haversine formula on a sphere of EarthRadius.
func NearPoint(param, lonColumn, latColumn string) FilterFunc {
	return func(q url.Values, p *Pipeline) error {
		var alternatives []string
		for _, v := range Values(q, param) {
			n, err := ParseNear(param, v)
			if err != nil {
				return err
			}
			lon, lat := p.Bind(n.Longitude), p.Bind(n.Latitude)
			alternatives = append(alternatives, fmt.Sprintf(
				"(2 * %.1f * asin(least(1, sqrt("+
					"power(sin(radians(doc.%s - %s) / 2), 2) + "+
					"cos(radians(%s)) * cos(radians(doc.%s)) * power(sin(radians(doc.%s - %s) / 2), 2)"+
					"))) <= %s)",
				EarthRadius, latColumn, lat, lat, latColumn, lonColumn, lon, p.Bind(n.Distance)))
		}
		if len(alternatives) > 0 {
			p.Where("(" + strings.Join(alternatives, " OR ") + ")")
		}
		return nil
	}
}

func parseNumbers(value string) ([]float64, error) {
	parts := strings.Split(value, ",")
	nums := make([]float64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("not a number: %q", part)
		}
		nums[i] = n
	}
	return nums, nil
}

func validLongitude(v float64) bool { return v >= -180 && v <= 180 }
func validLatitude(v float64) bool  { return v >= -90 && v <= 90 }
