package model

import (
	"strings"

	"roombook/shared"
)

const (
	EntityName = "availability"

	CachePrefix = "availability"
	TopicPrefix = "slots"

	EventSlotsUpdated = "slots.updated"
)

// CacheKey addresses the cached slot list of one room on one calendar day (YYYY-MM-DD).
// Room ids are lower-cased to match the form postgres returns for uuid columns.
func CacheKey(roomID, date string) string {
	return shared.BuildCacheKey(CachePrefix, strings.ToLower(roomID), date)
}

// RoomCachePrefix matches every cached day of a room.
func RoomCachePrefix(roomID string) string {
	return shared.BuildCacheKey(CachePrefix, strings.ToLower(roomID))
}

// Topic is the realtime topic clients subscribe to for one room and day.
func Topic(roomID, date string) string {
	return shared.BuildCacheKey(TopicPrefix, strings.ToLower(roomID), date)
}

// SlotsUpdated is pushed to realtime subscribers after a reservation touching their room and day changes.
type SlotsUpdated struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
}

func NewSlotsUpdated(roomID, date string) SlotsUpdated {
	return SlotsUpdated{
		Type:   EventSlotsUpdated,
		RoomID: roomID,
		Date:   date,
	}
}
