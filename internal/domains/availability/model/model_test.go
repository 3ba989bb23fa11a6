package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roombook/internal/domains/availability/model"
)

func TestKeysIgnoreRoomIDCase(t *testing.T) {
	const (
		lower = "6f1c2a7e-3b0d-4c55-9a51-2f0e8f4b9d10"
		upper = "6F1C2A7E-3B0D-4C55-9A51-2F0E8F4B9D10"
		day   = "2024-01-15"
	)

	assert.Equal(t, "availability:"+lower+":"+day, model.CacheKey(upper, day))
	assert.Equal(t, model.CacheKey(lower, day), model.CacheKey(upper, day))
	assert.Equal(t, model.RoomCachePrefix(lower), model.RoomCachePrefix(upper))
	assert.Equal(t, "slots:"+lower+":"+day, model.Topic(upper, day))
}
