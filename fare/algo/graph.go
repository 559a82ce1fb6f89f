package algo

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
)

type node[T any] struct {
	attr T
	// 出边邻居，按插入顺序保存，保证遍历顺序确定
	neighbors []int
}

type edge[T any] struct {
	v    float64
	attr T
}

// 以下标为句柄的邻接表图，建图完成后只读
type SearchGraph[NT any, ET any] struct {
	// 邻接表，in node -> out node -> edge
	edges []map[int]edge[ET]
	nodes []node[NT]
}

func NewSearchGraph[NT any, ET any]() *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges: make([]map[int]edge[ET], 0),
		nodes: make([]node[NT], 0),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(attr NT) int {
	g.nodes = append(g.nodes, node[NT]{attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

// 加入有向边，已存在则覆盖边权与属性
func (g *SearchGraph[NT, ET]) InitEdge(from, to int, length float64, attr ET) error {
	if from < 0 || from >= len(g.nodes) {
		return fmt.Errorf("%w: from node %d, len %d", ErrNodeNotExists, from, len(g.nodes))
	}
	if to < 0 || to >= len(g.nodes) {
		return fmt.Errorf("%w: to node %d, len %d", ErrNodeNotExists, to, len(g.nodes))
	}
	if length < 0 || math.IsNaN(length) {
		return fmt.Errorf("%w: (%d,%d) %v", ErrNegativeEdge, from, to, length)
	}
	if _, ok := g.edges[from][to]; !ok {
		g.nodes[from].neighbors = append(g.nodes[from].neighbors, to)
	}
	g.edges[from][to] = edge[ET]{v: length, attr: attr}
	return nil
}

// 加入无向边（两个方向边权相同）
func (g *SearchGraph[NT, ET]) InitEdgePair(u, v int, length float64, attr ET) error {
	if err := g.InitEdge(u, v, length, attr); err != nil {
		return err
	}
	return g.InitEdge(v, u, length, attr)
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	return len(g.nodes)
}

// 有向边数量，无向边计两次
func (g *SearchGraph[NT, ET]) EdgeCount() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

func (g *SearchGraph[NT, ET]) NodeAttr(id int) NT {
	return g.nodes[id].attr
}

func (g *SearchGraph[NT, ET]) GetEdgeLengthAndAttr(from, to int) (float64, ET, bool) {
	e, ok := g.edges[from][to]
	return e.v, e.attr, ok
}

func (g *SearchGraph[NT, ET]) GetEdgeLength(from, to int) (float64, bool) {
	e, ok := g.edges[from][to]
	return e.v, ok
}

// 路径中的一项：节点属性及从该节点出发的边（最后一项没有出边）
type PathItem[NT any, ET any] struct {
	NodeAttr   NT
	EdgeAttr   ET
	EdgeLength float64
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, curNode int) ([]PathItem[NT, ET], float64) {
	pathBeforeReversed := []PathItem[NT, ET]{{NodeAttr: g.nodes[curNode].attr}}
	cost := .0
	for {
		if from, ok := cameFrom[curNode]; ok {
			e := g.edges[from][curNode]
			cost += e.v
			curNode = from
			pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
				NodeAttr:   g.nodes[curNode].attr,
				EdgeAttr:   e.attr,
				EdgeLength: e.v,
			})
		} else {
			break
		}
	}
	return lo.Reverse(pathBeforeReversed), cost
}

func (g *SearchGraph[NT, ET]) ShortestPath(start, end int) ([]PathItem[NT, ET], float64) {
	path, cost, _ := g.ShortestPathContext(context.Background(), start, end)
	return path, cost
}

// Dijkstra算法求最短路，不可达时返回nil与+Inf
// 每次调用的搜索状态均为局部变量，可并发调用
func (g *SearchGraph[NT, ET]) ShortestPathContext(ctx context.Context, start, end int) ([]PathItem[NT, ET], float64, error) {
	if start < 0 || start >= len(g.nodes) || end < 0 || end >= len(g.nodes) {
		return nil, math.Inf(0), fmt.Errorf("%w: %d -> %d", ErrNodeNotExists, start, end)
	}
	if start == end {
		return []PathItem[NT, ET]{{NodeAttr: g.nodes[start].attr}}, 0, nil
	}
	openSet := make(PriorityQueue, 1, INIT_QUEUE_CAPACITY)
	openSetMap := make(map[int]*Item, 1) // openSet value -> openSet item
	closed := make(map[int]bool)
	cameFrom := make(map[int]int, 0)
	gScore := make(map[int]float64, 0)
	gScore[start] = .0
	openSet[0] = &Item{Value: start, Priority: 0, Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, math.Inf(0), err
		}
		cur := heap.Pop(&openSet).(*Item).Value
		if cur == end {
			path, cost := g.reconstructPath(cameFrom, cur)
			return path, cost, nil
		}
		closed[cur] = true
		for _, neighbor := range g.nodes[cur].neighbors {
			if closed[neighbor] {
				continue
			}
			edge := g.edges[cur][neighbor]
			gScoreTentative := gScore[cur] + edge.v
			var gScoreNeighbor float64
			s, ok := gScore[neighbor]
			if ok {
				gScoreNeighbor = s
			} else {
				gScoreNeighbor = math.Inf(0)
			}
			if gScoreTentative < gScoreNeighbor {
				cameFrom[neighbor] = cur
				gScore[neighbor] = gScoreTentative
				if ok {
					// 已经访问过的节点，修改其在heap中的优先级
					openSetMap[neighbor].Priority = gScoreTentative
					heap.Fix(&openSet, openSetMap[neighbor].Index)
				} else {
					// 新访问的节点
					item := &Item{Value: neighbor, Priority: gScoreTentative}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return nil, math.Inf(0), nil
}
