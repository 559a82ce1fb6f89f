package main

import (
	"context"
	"math"
	"testing"

	"git.fiblab.net/sim/fare/fare"
	"git.fiblab.net/sim/fare/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func FuzzFare(f *testing.F) {
	server, err := NewFareServer(
		context.Background(),
		func(ctx context.Context) ([]fare.RouteRecord, error) {
			return loader.LoadCSVFile("testdata/distances.csv")
		},
		fare.DefaultConfig(), 0,
	)
	require.NoError(f, err)
	stations := server.Stations()

	f.Add(uint8(0), uint8(1), uint8(0), false)
	f.Add(uint8(3), uint8(20), uint8(4), true)
	// 构造随机请求
	f.Fuzz(func(t *testing.T, originID uint8, destinationID uint8, fareTypeID uint8, offPeak bool) {
		origin := stations[int(originID)%len(stations)]
		destination := stations[int(destinationID)%len(stations)]
		opts := fare.Options{
			FareType: fare.FARE_TYPES[int(fareTypeID)%len(fare.FARE_TYPES)],
			OffPeak:  offPeak,
		}
		b, err := server.Fare(context.Background(), origin, destination, opts)
		if err != nil {
			// 配置中的部分站点没有线路经过
			assert.ErrorIs(t, err, fare.ErrNoPathFound)
			return
		}
		assert.False(t, math.IsNaN(b.Fare))
		assert.GreaterOrEqual(t, b.Fare, 0.0)
		assert.Equal(t, b.FareDistance.Distance, fare.Round2(b.FareDistance.Distance))

		// 距离与方向无关
		back, err := server.Distance(context.Background(), destination, origin)
		require.NoError(t, err)
		assert.Equal(t, b.FareDistance.Distance, back.Distance)
	})
}
