package fare

import (
	"fmt"
	"sort"

	"git.fiblab.net/sim/fare/fare/algo"
	"github.com/samber/lo"
)

const (
	// 市中心站之间连边的线路名
	CITY_LINK_ROUTE = "City Circle"
)

type StationAttr struct {
	Name string
}

type LinkAttr struct {
	Route string
}

type stopDistance struct {
	Station  string
	Distance float64
}

// Network 由线路记录构建的站点图，构建完成后只读，可被并发查询共享
//
//	A ---1.2--- B ---0.8--- C        route T1 (reference A)
//	            |
//	           3.21                  city core
//	            |
//	            D
type Network struct {
	registry *StationRegistry
	graph    *algo.SearchGraph[StationAttr, LinkAttr]
	// 线路 -> 线路上的换乘站 -> 距参考站的累计距离
	interchanges map[string]map[string]float64
	routes       []string
}

// BuildNetwork 注册全部站点并按线路相邻站、市中心站两两连边
// 任一记录格式错误时返回ErrMalformedRecord，不返回部分构建的图
func BuildNetwork(records []RouteRecord, cfg NetworkConfig) (*Network, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if cfg.CityStationDistance < 0 {
		return nil, fmt.Errorf("negative city station distance %v", cfg.CityStationDistance)
	}

	n := &Network{
		registry:     NewStationRegistry(),
		graph:        algo.NewSearchGraph[StationAttr, LinkAttr](),
		interchanges: make(map[string]map[string]float64),
	}

	// 1. 注册站点
	stations := lo.Uniq(lo.Flatten([][]string{
		lo.Map(records, func(r RouteRecord, _ int) string { return r.ReferenceStation }),
		lo.Map(records, func(r RouteRecord, _ int) string { return r.Station }),
		cfg.InterchangeStations,
		cfg.CityStations,
	}))
	for _, name := range stations {
		h := n.registry.Register(name)
		if h != n.graph.InitNode(StationAttr{Name: name}) {
			log.Panicf("station handle %d of %s out of sync with graph", h, name)
		}
	}

	// 2. 按线路分组，同一线路重复出现的站取最后一次的距离
	routeStops := make(map[string][]stopDistance)
	routeStopIndex := make(map[string]map[string]int)
	routeOrigins := make(map[string]string)
	for _, r := range records {
		if _, ok := routeStops[r.Route]; !ok {
			n.routes = append(n.routes, r.Route)
			routeStopIndex[r.Route] = make(map[string]int)
		}
		if i, ok := routeStopIndex[r.Route][r.Station]; ok {
			routeStops[r.Route][i].Distance = r.Distance
		} else {
			routeStopIndex[r.Route][r.Station] = len(routeStops[r.Route])
			routeStops[r.Route] = append(routeStops[r.Route], stopDistance{Station: r.Station, Distance: r.Distance})
		}
		routeOrigins[r.Route] = r.ReferenceStation
	}

	interchangeSet := lo.Associate(cfg.InterchangeStations, func(s string) (string, bool) { return s, true })
	for _, route := range n.routes {
		stops := append(routeStops[route], stopDistance{Station: routeOrigins[route], Distance: 0})
		// 稳定排序，距离相同时保持输入顺序
		sort.SliceStable(stops, func(i, j int) bool { return stops[i].Distance < stops[j].Distance })

		for _, s := range stops {
			if interchangeSet[s.Station] {
				if n.interchanges[route] == nil {
					n.interchanges[route] = make(map[string]float64)
				}
				n.interchanges[route][s.Station] = s.Distance
			}
		}

		for i := 1; i < len(stops); i++ {
			last, cur := stops[i-1], stops[i]
			if last.Station == cur.Station {
				continue
			}
			if err := n.addLink(last.Station, cur.Station, cur.Distance-last.Distance, route); err != nil {
				return nil, err
			}
		}
		log.Debugf("route %s: %d stops from %s", route, len(stops), routeOrigins[route])
	}

	// 3. 市中心站两两相连，覆盖线路边
	for _, o := range cfg.CityStations {
		for _, d := range cfg.CityStations {
			if o == d {
				continue
			}
			if err := n.addLink(o, d, cfg.CityStationDistance, CITY_LINK_ROUTE); err != nil {
				return nil, err
			}
		}
	}
	log.Infof("network built: %d stations, %d routes, %d links",
		n.registry.Len(), len(n.routes), n.graph.EdgeCount()/2)
	return n, nil
}

func (n *Network) addLink(from, to string, length float64, route string) error {
	if length < 0 {
		length = -length
	}
	u, err := n.registry.Handle(from)
	if err != nil {
		return err
	}
	v, err := n.registry.Handle(to)
	if err != nil {
		return err
	}
	return n.graph.InitEdgePair(u, v, length, LinkAttr{Route: route})
}

func (n *Network) Registry() *StationRegistry {
	return n.registry
}

func (n *Network) Stations() []string {
	return n.registry.Names()
}

// 按首次出现顺序的线路名
func (n *Network) Routes() []string {
	return append([]string(nil), n.routes...)
}

func (n *Network) LinkCount() int {
	return n.graph.EdgeCount() / 2
}

// 线路上的换乘站及其累计距离，线路不存在时ok为false
func (n *Network) Interchanges(route string) (map[string]float64, bool) {
	if !lo.Contains(n.routes, route) {
		return nil, false
	}
	ret := make(map[string]float64, len(n.interchanges[route]))
	for k, v := range n.interchanges[route] {
		ret[k] = v
	}
	return ret, true
}

// 两站之间直接相连的边长
func (n *Network) LinkLength(from, to string) (float64, bool) {
	u, err := n.registry.Handle(from)
	if err != nil {
		return 0, false
	}
	v, err := n.registry.Handle(to)
	if err != nil {
		return 0, false
	}
	return n.graph.GetEdgeLength(u, v)
}
