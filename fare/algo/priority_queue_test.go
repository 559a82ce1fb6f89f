package algo_test

import (
	"container/heap"
	"testing"

	"git.fiblab.net/sim/fare/fare/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 按Dijkstra的方式使用：节点id到堆中元素的索引
type frontier struct {
	pq    algo.PriorityQueue
	items map[int]*algo.Item
}

func newFrontier() *frontier {
	return &frontier{items: make(map[int]*algo.Item)}
}

// 松弛：新节点入堆，已在堆中且距离更短时原地降低优先级
func (f *frontier) relax(node int, dist float64) bool {
	if item, ok := f.items[node]; ok {
		if dist >= item.Priority {
			return false
		}
		item.Priority = dist
		heap.Fix(&f.pq, item.Index)
		return true
	}
	item := &algo.Item{Value: node, Priority: dist}
	f.items[node] = item
	heap.Push(&f.pq, item)
	return true
}

func (f *frontier) pop() *algo.Item {
	item := heap.Pop(&f.pq).(*algo.Item)
	delete(f.items, item.Value)
	return item
}

func TestFrontierDecreaseKey(t *testing.T) {
	f := newFrontier()
	// 起点0的邻居：1(8.0) 2(3.4) 3(5.0)
	assert.True(t, f.relax(1, 8.0))
	assert.True(t, f.relax(2, 3.4))
	assert.True(t, f.relax(3, 5.0))

	settled := f.pop()
	assert.Equal(t, 2, settled.Value)
	assert.Equal(t, -1, settled.Index)

	// 经2到1更短，经2到3更长
	assert.True(t, f.relax(1, 3.4+1.6))
	assert.False(t, f.relax(3, 3.4+4.0))
	require.Equal(t, 2, f.pq.Len())
	for i, item := range f.pq {
		assert.Equal(t, i, item.Index)
	}

	// 1与3同为5.0，id小者先出
	item := f.pop()
	assert.Equal(t, 1, item.Value)
	assert.Equal(t, 5.0, item.Priority)
	item = f.pop()
	assert.Equal(t, 3, item.Value)
	assert.Equal(t, 5.0, item.Priority)
	assert.Equal(t, 0, f.pq.Len())
}

func TestFrontierDecreaseKeyToTie(t *testing.T) {
	f := newFrontier()
	f.relax(9, 3.21)
	f.relax(4, 7.0)
	f.relax(6, 5.0)

	// 降到与9相同的距离后，4的id更小，应先于9出堆
	assert.True(t, f.relax(4, 3.21))
	assert.Equal(t, 4, f.pop().Value)
	assert.Equal(t, 9, f.pop().Value)
	assert.Equal(t, 6, f.pop().Value)
}

func TestFrontierSettleOrder(t *testing.T) {
	f := newFrontier()
	dists := map[int]float64{10: 2.0, 3: 2.0, 7: 0.5, 1: 9.0, 5: 2.0}
	for node, d := range dists {
		f.relax(node, d)
	}
	// 入堆顺序随机，出堆顺序只由(距离, id)决定
	order := make([]int, 0, len(dists))
	last := -1.0
	for f.pq.Len() > 0 {
		item := f.pop()
		assert.GreaterOrEqual(t, item.Priority, last)
		last = item.Priority
		order = append(order, item.Value)
	}
	assert.Equal(t, []int{7, 3, 5, 10, 1}, order)
	assert.Empty(t, f.items)
}
