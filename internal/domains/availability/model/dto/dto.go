package dto

import (
	"time"

	"roombook/internal/domains/availability/slot"
	"roombook/shared/constant"
)

type GetSlotsRequest struct {
	RoomID string `json:"room_id" validate:"required,uuid"`
	Date   string `json:"date"    validate:"required,datetime=2006-01-02"`
}

type SlotResponse struct {
	ID        string `json:"id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// SlotID is the slot start as a UTC instant with milliseconds; equal starts give equal ids.
func SlotID(start time.Time) string {
	return start.UTC().Format(constant.InstantFormat)
}

func (s *SlotResponse) FromWindow(w slot.Window, available bool) {
	s.ID = SlotID(w.Start)
	s.Start = SlotID(w.Start)
	s.End = SlotID(w.End)
	s.Available = available
}

type GetSlotsResponse struct {
	RoomID string         `json:"room_id"`
	Date   string         `json:"date"`
	Slots  []SlotResponse `json:"slots"`
}
