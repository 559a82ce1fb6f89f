package fare_test

import (
	"testing"

	"git.fiblab.net/sim/fare/fare"
	"github.com/stretchr/testify/require"
)

// 测试用线路
//
//	Central -- Green Square -- Mascot -- Domestic -- International -- Wolli Creek -- Revesby -- Glenfield -- Campbelltown -- Macarthur
//	Central -- Town Hall -- Wynyard -- North Sydney -- Chatswood -- Epping -- Hornsby -- Berowra
//	Central -- Redfern -- Strathfield -- Lidcombe -- Blacktown -- Penrith -- Katoomba
//	Island A -- Island B
func testRecords() []fare.RouteRecord {
	return []fare.RouteRecord{
		{ReferenceStation: "Central", Station: "Green Square", Route: "T8 Airport", Distance: 3.0},
		{ReferenceStation: "Central", Station: "Mascot", Route: "T8 Airport", Distance: 4.6},
		{ReferenceStation: "Central", Station: "Domestic Terminal", Route: "T8 Airport", Distance: 6.2},
		{ReferenceStation: "Central", Station: "International Terminal", Route: "T8 Airport", Distance: 8.0},
		{ReferenceStation: "Central", Station: "Wolli Creek", Route: "T8 Airport", Distance: 10.1},

		{ReferenceStation: "Wolli Creek", Station: "Revesby", Route: "T8 South", Distance: 11.0},
		{ReferenceStation: "Wolli Creek", Station: "Glenfield", Route: "T8 South", Distance: 25.0},
		{ReferenceStation: "Wolli Creek", Station: "Campbelltown", Route: "T8 South", Distance: 34.0},
		{ReferenceStation: "Wolli Creek", Station: "Macarthur", Route: "T8 South", Distance: 35.9},

		{ReferenceStation: "Central", Station: "Town Hall", Route: "T1 North Shore", Distance: 1.2},
		{ReferenceStation: "Central", Station: "Wynyard", Route: "T1 North Shore", Distance: 2.0},
		{ReferenceStation: "Central", Station: "North Sydney", Route: "T1 North Shore", Distance: 4.0},
		{ReferenceStation: "Central", Station: "Chatswood", Route: "T1 North Shore", Distance: 9.5},
		{ReferenceStation: "Central", Station: "Epping", Route: "T1 North Shore", Distance: 17.0},
		{ReferenceStation: "Central", Station: "Hornsby", Route: "T1 North Shore", Distance: 24.5},
		{ReferenceStation: "Central", Station: "Berowra", Route: "T1 North Shore", Distance: 36.0},

		{ReferenceStation: "Central", Station: "Redfern", Route: "T1 Western", Distance: 1.3},
		{ReferenceStation: "Central", Station: "Strathfield", Route: "T1 Western", Distance: 12.0},
		{ReferenceStation: "Central", Station: "Lidcombe", Route: "T1 Western", Distance: 16.5},
		{ReferenceStation: "Central", Station: "Blacktown", Route: "T1 Western", Distance: 34.0},
		{ReferenceStation: "Central", Station: "Penrith", Route: "T1 Western", Distance: 55.0},

		{ReferenceStation: "Central", Station: "Katoomba", Route: "Blue Mountains", Distance: 110.0},
		{ReferenceStation: "Central", Station: "Penrith", Route: "Blue Mountains", Distance: 55.0},

		{ReferenceStation: "Island A", Station: "Island B", Route: "Shuttle", Distance: 2.0},
	}
}

func newTestCalculator(t *testing.T) *fare.Calculator {
	t.Helper()
	c, err := fare.NewCalculator(testRecords(), fare.DefaultConfig())
	require.NoError(t, err)
	return c
}
