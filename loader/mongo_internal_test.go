package loader

import (
	"context"
	"os"
	"testing"

	"git.fiblab.net/sim/fare/fare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMongoRecords(t *testing.T) {
	records, err := convertMongoRecords([]mongoRecord{
		{ReferenceStation: "Central", Station: "Redfern", Route: "T1", Distance: 1.3},
		{ReferenceStation: "Central", Station: "Strathfield", Route: "T1", Distance: int32(12)},
		{ReferenceStation: "Central", Station: "Lidcombe", Route: "T1", Distance: "16.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.3, 12, 16.5}, []float64{records[0].Distance, records[1].Distance, records[2].Distance})

	_, err = convertMongoRecords([]mongoRecord{
		{ReferenceStation: "Central", Station: "Redfern", Route: "T1", Distance: true},
	})
	assert.ErrorIs(t, err, fare.ErrMalformedRecord)

	_, err = convertMongoRecords([]mongoRecord{
		{ReferenceStation: "Central", Station: "Redfern", Route: "T1", Distance: "far"},
	})
	assert.ErrorIs(t, err, fare.ErrMalformedRecord)
}

// 需要MONGO_URI、MONGO_DB、MONGO_COL环境变量
func TestLoadMongo(t *testing.T) {
	uri, db, col := os.Getenv("MONGO_URI"), os.Getenv("MONGO_DB"), os.Getenv("MONGO_COL")
	if uri == "" || db == "" || col == "" {
		t.Skip("MONGO_URI, MONGO_DB or MONGO_COL not set")
	}
	ctx := context.Background()
	client, err := NewMongoClient(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	records, err := LoadMongo(ctx, client, db, col)
	require.NoError(t, err)
	_, err = fare.NewCalculator(records, fare.DefaultConfig())
	assert.NoError(t, err)
}
