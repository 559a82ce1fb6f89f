package fare_test

import (
	"testing"

	"git.fiblab.net/sim/fare/fare"
	"github.com/stretchr/testify/assert"
)

func TestStationRegistry(t *testing.T) {
	r := fare.NewStationRegistry()
	central := r.Register("Central")
	redfern := r.Register("Redfern")
	assert.NotEqual(t, central, redfern)

	// 重复注册返回原句柄
	assert.Equal(t, central, r.Register("Central"))
	assert.Equal(t, 2, r.Len())

	h, err := r.Handle("Redfern")
	assert.NoError(t, err)
	assert.Equal(t, redfern, h)
	assert.Equal(t, "Redfern", r.Name(h))
	assert.True(t, r.Has("Central"))

	_, err = r.Handle("Nonexistent")
	assert.ErrorIs(t, err, fare.ErrUnknownStation)
	assert.False(t, r.Has("Nonexistent"))

	names := r.Names()
	assert.Equal(t, []string{"Central", "Redfern"}, names)
	names[0] = "changed"
	assert.Equal(t, "Central", r.Name(central))
}
