package fare

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RouteRecord 一条线路距离记录：Station在Route上距ReferenceStation的累计距离（km）
type RouteRecord struct {
	ReferenceStation string  `json:"referenceStation"`
	Station          string  `json:"station"`
	Route            string  `json:"route"`
	Distance         float64 `json:"distance"`
}

func (r RouteRecord) Validate() error {
	switch {
	case r.ReferenceStation == "":
		return fmt.Errorf("%w: missing reference station on route %q", ErrMalformedRecord, r.Route)
	case r.Station == "":
		return fmt.Errorf("%w: missing station on route %q", ErrMalformedRecord, r.Route)
	case r.Route == "":
		return fmt.Errorf("%w: missing route for station %q", ErrMalformedRecord, r.Station)
	case math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0):
		return fmt.Errorf("%w: distance %v of %q is not finite", ErrMalformedRecord, r.Distance, r.Station)
	case r.Distance < 0:
		return fmt.Errorf("%w: distance %v of %q is negative", ErrMalformedRecord, r.Distance, r.Station)
	}
	return nil
}

// ParseRecord 由表格中的原始字符串构造记录，距离必须为非负数
func ParseRecord(referenceStation, station, route, distance string) (RouteRecord, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(distance), 64)
	if err != nil {
		return RouteRecord{}, fmt.Errorf("%w: distance %q of %q on route %q: %v",
			ErrMalformedRecord, distance, station, route, err)
	}
	r := RouteRecord{
		ReferenceStation: strings.TrimSpace(referenceStation),
		Station:          strings.TrimSpace(station),
		Route:            strings.TrimSpace(route),
		Distance:         d,
	}
	if err := r.Validate(); err != nil {
		return RouteRecord{}, err
	}
	return r, nil
}
