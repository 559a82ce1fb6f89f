package algo

import "errors"

const (
	// 优先队列初始容量
	INIT_QUEUE_CAPACITY = 16
)

var (
	// 错误：节点不存在
	ErrNodeNotExists = errors.New("node not exists")
	// 错误：边权为负数，Dijkstra不适用
	ErrNegativeEdge = errors.New("negative edge length")
)
