package main

import (
	"context"
	"flag"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/fare/fare"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random fare query count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU   = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

type benchmarkQuery struct {
	origin, destination string
	opts                fare.Options
}

func runBenchmark(server *FareServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	// 设置随机种子
	e := rand.New(rand.NewSource(*benchmarkSeed))
	// 随机生成benchmarkCount个计费请求，每个请求的起点、终点和乘客类型都是随机的
	stations := server.Stations()
	if len(stations) == 0 {
		log.Error("benchmark failed, no station")
		return
	}
	queries := make([]benchmarkQuery, *benchmarkCount)
	for i := range queries {
		queries[i] = benchmarkQuery{
			origin:      stations[e.Intn(len(stations))],
			destination: stations[e.Intn(len(stations))],
			opts: fare.Options{
				FareType: fare.FARE_TYPES[e.Intn(len(fare.FARE_TYPES))],
				OffPeak:  e.Intn(2) == 1,
			},
		}
	}

	// 开始benchmark
	start := time.Now()
	var success atomic.Int32
	run := func(q benchmarkQuery) {
		if _, err := server.Fare(context.Background(), q.origin, q.destination, q.opts); err != nil {
			log.Debug("benchmark query failed, err:", err)
			return
		}
		success.Add(1)
	}
	if *benchmarkCPU == 1 {
		for _, q := range queries {
			run(q)
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(*benchmarkCPU)
		var wg sync.WaitGroup
		wg.Add(len(queries))
		for _, q := range queries {
			go func(q benchmarkQuery) {
				defer wg.Done()
				run(q)
			}(q)
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(max(*benchmarkCount, 1)), "\n",
		"success:", success.Load(), "\n",
	)
}
