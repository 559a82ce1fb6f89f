package fare

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Segment 计费路径中的一段
type Segment struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Route    string  `json:"route,omitempty"`
	Distance float64 `json:"distance"`
}

// FareDistance 计费距离：各段距离先四舍五入到分，再求和并四舍五入
type FareDistance struct {
	Segments []Segment `json:"segments"`
	Distance float64   `json:"distance"`
}

type stationPair struct {
	A, B string
}

// 无序站点对
func newStationPair(a, b string) stationPair {
	if a > b {
		a, b = b, a
	}
	return stationPair{A: a, B: b}
}

// 按二进制精确值保留两位小数，恰好落在半分上时远离零舍入
func Round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	// 只有k/8（k为奇数）是精确的半分，此时x*100无误差
	if t := x * 8; t == math.Trunc(t) && math.Mod(t, 2) != 0 {
		return math.Round(x*100) / 100
	}
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return r
}

// DistanceResolver 在最短路之外处理固定计费距离的站点对
type DistanceResolver struct {
	network   *Network
	overrides map[stationPair]float64
}

func NewDistanceResolver(network *Network, overrides []DistanceOverride) *DistanceResolver {
	m := make(map[stationPair]float64, len(overrides))
	for _, o := range overrides {
		m[newStationPair(o.From, o.To)] = o.Distance
	}
	return &DistanceResolver{network: network, overrides: m}
}

func (r *DistanceResolver) FareDistance(origin, destination string) (FareDistance, error) {
	return r.FareDistanceContext(context.Background(), origin, destination)
}

func (r *DistanceResolver) FareDistanceContext(ctx context.Context, origin, destination string) (FareDistance, error) {
	// 固定距离先于最短路判断，与图的拓扑无关
	if d, ok := r.overrides[newStationPair(origin, destination)]; ok && origin != destination {
		d = Round2(d)
		return FareDistance{
			Segments: []Segment{{From: origin, To: destination, Distance: d}},
			Distance: d,
		}, nil
	}

	start, err := r.network.registry.Handle(origin)
	if err != nil {
		return FareDistance{}, err
	}
	end, err := r.network.registry.Handle(destination)
	if err != nil {
		return FareDistance{}, err
	}
	path, cost, err := r.network.graph.ShortestPathContext(ctx, start, end)
	if err != nil {
		return FareDistance{}, err
	}
	if path == nil {
		return FareDistance{}, fmt.Errorf("%w: %q -> %q", ErrNoPathFound, origin, destination)
	}

	segments := make([]Segment, 0, len(path)-1)
	total := .0
	for i := 0; i+1 < len(path); i++ {
		d := Round2(path[i].EdgeLength)
		segments = append(segments, Segment{
			From:     path[i].NodeAttr.Name,
			To:       path[i+1].NodeAttr.Name,
			Route:    path[i].EdgeAttr.Route,
			Distance: d,
		})
		total += d
	}
	log.Debugf("shortest path %s -> %s: %d segments, raw %v", origin, destination, len(segments), cost)
	return FareDistance{
		Segments: segments,
		Distance: Round2(total),
	}, nil
}
