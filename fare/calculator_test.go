package fare_test

import (
	"math"
	"sync"
	"testing"

	"git.fiblab.net/sim/fare/fare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFareAirport(t *testing.T) {
	c := newTestCalculator(t)

	b, err := c.CalculateFare("International Terminal", "Mascot", fare.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3.4, b.FareDistance.Distance)
	assert.Equal(t, 3.61, b.BaseFare)
	assert.Equal(t, 6.57, b.AccessFee)
	assert.Equal(t, 10.18, b.Fare)

	b, err = c.CalculateFare("International Terminal", "Domestic Terminal", fare.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2.20, b.AccessFee)
	assert.Equal(t, 5.81, b.Fare)

	b, err = c.CalculateFare("Green Square", "International Terminal", fare.Options{})
	require.NoError(t, err)
	assert.Equal(t, 5.0, b.FareDistance.Distance)
	assert.Equal(t, 8.97, b.AccessFee)
	assert.Equal(t, 12.58, b.Fare)

	b, err = c.CalculateFare("Central", "International Terminal", fare.Options{})
	require.NoError(t, err)
	assert.Equal(t, 8.0, b.FareDistance.Distance)
	assert.Equal(t, 14.87, b.AccessFee)
	assert.Equal(t, 18.48, b.Fare)

	b, err = c.CalculateFare("Central", "International Terminal", fare.Options{FareType: fare.FARE_TYPE_CHILD})
	require.NoError(t, err)
	assert.Equal(t, 13.18, b.AccessFee)
	assert.Equal(t, 14.98, b.Fare)

	b, err = c.CalculateFare("International Terminal", "Central", fare.Options{FareType: fare.FARE_TYPE_SCHOOL})
	require.NoError(t, err)
	assert.True(t, math.IsInf(b.Fare, 1))
}

func TestCalculateFareNoAccessFee(t *testing.T) {
	c := newTestCalculator(t)

	b, err := c.CalculateFare("Central", "Penrith", fare.Options{})
	require.NoError(t, err)
	assert.Equal(t, 55.0, b.FareDistance.Distance)
	assert.Equal(t, 0.0, b.AccessFee)
	assert.Equal(t, 6.89, b.Fare)

	b, err = c.CalculateFare("Macarthur", "Campbelltown", fare.Options{FareType: fare.FARE_TYPE_CONCESSION})
	require.NoError(t, err)
	assert.Equal(t, 1.86, b.FareDistance.Distance)
	assert.Equal(t, 3.61, b.BaseFare)
	assert.Equal(t, 1.8, b.Fare)
}

func TestCalculateFareSeniorOffPeak(t *testing.T) {
	c := newTestCalculator(t)

	b, err := c.CalculateFare("Central", "Katoomba", fare.Options{FareType: fare.FARE_TYPE_SENIOR, OffPeak: true})
	require.NoError(t, err)
	assert.Equal(t, 0.35, b.BaseFareDiscountFactor)
	assert.Equal(t, math.Min(2.50, 8.86*0.35), b.Fare)

	b, err = c.CalculateFare("Central", "Berowra", fare.Options{FareType: fare.FARE_TYPE_SENIOR, OffPeak: true})
	require.NoError(t, err)
	assert.Equal(t, fare.Round2(math.Min(2.50, 6.89*0.35)), b.Fare)
	assert.Equal(t, fare.Options{FareType: fare.FARE_TYPE_SENIOR, OffPeak: true}, b.Options)
}

func TestCalculateFareUnknownFareType(t *testing.T) {
	c := newTestCalculator(t)

	adult, err := c.CalculateFare("Central", "Berowra", fare.Options{})
	require.NoError(t, err)
	unknown, err := c.CalculateFare("Central", "Berowra", fare.Options{FareType: "tourist"})
	require.NoError(t, err)
	assert.Equal(t, adult.Fare, unknown.Fare)
	assert.Equal(t, fare.FareType("tourist"), unknown.Options.FareType)
}

func TestCalculateFareErrors(t *testing.T) {
	c := newTestCalculator(t)

	_, err := c.CalculateFare("Nonexistent", "Central", fare.Options{})
	assert.ErrorIs(t, err, fare.ErrUnknownStation)
	_, err = c.CalculateFare("Island A", "Central", fare.Options{})
	assert.ErrorIs(t, err, fare.ErrNoPathFound)
}

func TestCalculateFareDeterministic(t *testing.T) {
	c := newTestCalculator(t)
	first, err := c.CalculateFare("Hornsby", "International Terminal", fare.Options{FareType: fare.FARE_TYPE_CHILD})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.CalculateFare("Hornsby", "International Terminal", fare.Options{FareType: fare.FARE_TYPE_CHILD})
			assert.NoError(t, err)
			assert.Equal(t, first, b)
		}()
	}
	wg.Wait()
}

func TestCalculatorRebuild(t *testing.T) {
	c1 := newTestCalculator(t)
	c2 := newTestCalculator(t)
	stations := c1.Network().Stations()
	assert.Equal(t, stations, c2.Network().Stations())

	for _, a := range stations {
		for _, b := range stations {
			for _, opts := range []fare.Options{{}, {FareType: fare.FARE_TYPE_SENIOR, OffPeak: true}} {
				f1, err1 := c1.CalculateFare(a, b, opts)
				f2, err2 := c2.CalculateFare(a, b, opts)
				assert.Equal(t, err1, err2)
				assert.Equal(t, f1, f2, "%s -> %s", a, b)
			}
		}
	}
}

func TestNewCalculatorInvalidConfig(t *testing.T) {
	cfg := fare.DefaultConfig()
	cfg.Tariff.Bands = nil
	_, err := fare.NewCalculator(testRecords(), cfg)
	assert.Error(t, err)
}
