package fare

import "fmt"

// StationRegistry 站名与图中节点句柄的双向映射
type StationRegistry struct {
	handles map[string]int
	names   []string
}

func NewStationRegistry() *StationRegistry {
	return &StationRegistry{
		handles: make(map[string]int),
		names:   make([]string, 0),
	}
}

// 幂等：已注册的站名直接返回原句柄
func (r *StationRegistry) Register(name string) int {
	if h, ok := r.handles[name]; ok {
		return h
	}
	h := len(r.names)
	r.handles[name] = h
	r.names = append(r.names, name)
	return h
}

func (r *StationRegistry) Handle(name string) (int, error) {
	h, ok := r.handles[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return h, nil
}

func (r *StationRegistry) Name(handle int) string {
	return r.names[handle]
}

func (r *StationRegistry) Has(name string) bool {
	_, ok := r.handles[name]
	return ok
}

func (r *StationRegistry) Len() int {
	return len(r.names)
}

// 按注册顺序返回所有站名的副本
func (r *StationRegistry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
