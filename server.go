package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"git.fiblab.net/sim/fare/fare"
	"github.com/bluele/gcache"
	"github.com/puzpuzpuz/xsync/v3"
)

var ErrUnknownRoute = errors.New("unknown route")

type RecordSource func(ctx context.Context) ([]fare.RouteRecord, error)

type FareServer struct {
	source RecordSource
	config fare.Config

	// 重新加载时整体替换calculator，读取时持有读锁
	mu         *xsync.RBMutex
	calculator *fare.Calculator
	generation uint64
	loadedAt   time.Time

	// 计费结果缓存，nil表示不缓存
	cache gcache.Cache

	// 接口开启true或关闭false
	ok bool
	// 条件变量
	cond *sync.Cond

	queries   *xsync.Counter
	failures  *xsync.Counter
	cacheHits *xsync.Counter
}

func NewFareServer(ctx context.Context, source RecordSource, cfg fare.Config, cacheSize int) (*FareServer, error) {
	s := &FareServer{
		source:    source,
		config:    cfg,
		mu:        xsync.NewRBMutex(),
		ok:        true,
		cond:      sync.NewCond(&sync.Mutex{}),
		queries:   xsync.NewCounter(),
		failures:  xsync.NewCounter(),
		cacheHits: xsync.NewCounter(),
	}
	if cacheSize > 0 {
		s.cache = gcache.New(cacheSize).LRU().Build()
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// 重新读取记录并建图，失败时保留原有的图
func (s *FareServer) Reload(ctx context.Context) error {
	start := time.Now()
	records, err := s.source(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	calculator, err := fare.NewCalculator(records, s.config)
	if err != nil {
		return fmt.Errorf("failed to build network: %w", err)
	}
	s.mu.Lock()
	s.calculator = calculator
	s.generation++
	s.loadedAt = time.Now()
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Purge()
	}
	log.Infof("network loaded from %d records in %v", len(records), time.Since(start))
	return nil
}

func (s *FareServer) current() (*fare.Calculator, uint64) {
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	return s.calculator, s.generation
}

func (s *FareServer) currentGeneration() uint64 {
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	return s.generation
}

// 暂停-恢复机制
func (s *FareServer) wait() {
	s.cond.L.Lock()
	for !s.ok {
		// 暂停中
		s.cond.Wait()
	}
	s.cond.L.Unlock()
}

type fareCacheKey struct {
	generation  uint64
	origin      string
	destination string
	options     fare.Options
}

func (s *FareServer) Fare(ctx context.Context, origin, destination string, opts fare.Options) (fare.FareBreakdown, error) {
	s.wait()
	s.queries.Inc()
	calculator, generation := s.current()
	key := fareCacheKey{generation: generation, origin: origin, destination: destination, options: opts}
	if s.cache != nil {
		if v, err := s.cache.Get(key); err == nil {
			s.cacheHits.Inc()
			return v.(fare.FareBreakdown), nil
		}
	}
	log.Debugf("calculate fare from %s to %s with %+v", origin, destination, opts)
	b, err := calculator.CalculateFareContext(ctx, origin, destination, opts)
	if err != nil {
		s.failures.Inc()
		return fare.FareBreakdown{}, err
	}
	s.storeFare(key, b)
	return b, nil
}

// 计算期间发生重新加载时，旧网络的结果不再写入缓存
func (s *FareServer) storeFare(key fareCacheKey, b fare.FareBreakdown) {
	if s.cache == nil || s.currentGeneration() != key.generation {
		return
	}
	if err := s.cache.Set(key, b); err != nil {
		log.Warnf("failed to cache fare: %v", err)
	}
}

func (s *FareServer) Distance(ctx context.Context, origin, destination string) (fare.FareDistance, error) {
	s.wait()
	s.queries.Inc()
	calculator, _ := s.current()
	d, err := calculator.FareDistanceContext(ctx, origin, destination)
	if err != nil {
		s.failures.Inc()
	}
	return d, err
}

func (s *FareServer) Stations() []string {
	calculator, _ := s.current()
	return calculator.Network().Stations()
}

func (s *FareServer) Interchanges(route string) (map[string]float64, error) {
	calculator, _ := s.current()
	ic, ok := calculator.Network().Interchanges(route)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, route)
	}
	return ic, nil
}

type Stats struct {
	Stations   int       `json:"stations"`
	Routes     int       `json:"routes"`
	Links      int       `json:"links"`
	Generation uint64    `json:"generation"`
	LoadedAt   time.Time `json:"loadedAt"`
	Queries    int64     `json:"queries"`
	Failures   int64     `json:"failures"`
	CacheHits  int64     `json:"cacheHits"`
	Suspended  bool      `json:"suspended"`
}

func (s *FareServer) Stats() Stats {
	token := s.mu.RLock()
	network := s.calculator.Network()
	stats := Stats{
		Stations:   len(network.Stations()),
		Routes:     len(network.Routes()),
		Links:      network.LinkCount(),
		Generation: s.generation,
		LoadedAt:   s.loadedAt,
	}
	s.mu.RUnlock(token)
	stats.Queries = s.queries.Value()
	stats.Failures = s.failures.Value()
	stats.CacheHits = s.cacheHits.Value()
	s.cond.L.Lock()
	stats.Suspended = !s.ok
	s.cond.L.Unlock()
	return stats
}

// 暂停计费服务
func (s *FareServer) Suspend() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = false
}

// 恢复计费服务
func (s *FareServer) Resume() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = true
	s.cond.Broadcast()
}

// 关闭计费服务
func (s *FareServer) Close() {
	s.Resume()
	if s.cache != nil {
		s.cache.Purge()
	}
}
