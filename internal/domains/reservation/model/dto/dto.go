package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"roombook/internal/domains/reservation/model"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
)

// ReservationRequest is the body of both create and update; an update replaces every field.
type ReservationRequest struct {
	RoomID  string `json:"room_id" validate:"required,uuid"`
	Date    string `json:"date"    validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Status  string `json:"status"  validate:"required,oneof=confirmed pending cancelled"`
	Purpose string `json:"purpose" validate:"required,max=500"`
}

type (
	CreateReservationRequest = ReservationRequest
	UpdateReservationRequest = ReservationRequest
)

// Instant parses Date as an RFC 3339 instant.
func (r *ReservationRequest) Instant() (time.Time, error) {
	date, err := time.Parse(constant.DateFormat, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation date %q: %w", r.Date, err)
	}

	return date, nil
}

func (r *ReservationRequest) ToModel(callerID string) (model.Reservation, error) {
	date, err := r.Instant()
	if err != nil {
		return model.Reservation{}, err
	}

	return model.Reservation{
		ID:       uuid.NewString(),
		RoomID:   r.RoomID,
		UserID:   callerID,
		Date:     date,
		Status:   r.Status,
		Purpose:  r.Purpose,
		Metadata: gModel.NewMetadata(callerID, timezone.Now()),
	}, nil
}

// ToFields returns the column set written by an update.
func (r *ReservationRequest) ToFields(callerID string) (map[string]any, error) {
	date, err := r.Instant()
	if err != nil {
		return nil, err
	}

	return map[string]any{
		model.FieldRoomID:        r.RoomID,
		model.FieldDate:          date,
		model.FieldStatus:        r.Status,
		model.FieldPurpose:       r.Purpose,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: callerID,
	}, nil
}

// CancelFields is the only column set a cancellation writes.
func CancelFields(callerID string) map[string]any {
	return map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: callerID,
	}
}

type RoomSummary struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

type UserSummary struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ReservationResponse struct {
	ID      string       `json:"id"`
	RoomID  string       `json:"room_id"`
	UserID  string       `json:"user_id"`
	Date    string       `json:"date"`
	Status  string       `json:"status"`
	Purpose string       `json:"purpose"`
	Room    RoomSummary  `json:"room"`
	User    *UserSummary `json:"user,omitempty"`
	gDto.Metadata
}

// FromModel renders Date as a UTC instant so it compares equal to slot ids.
func (r *ReservationResponse) FromModel(mod model.Reservation) {
	r.ID = mod.ID
	r.RoomID = mod.RoomID
	r.UserID = mod.UserID
	r.Date = mod.Date.UTC().Format(constant.InstantFormat)
	r.Status = mod.Status
	r.Purpose = mod.Purpose
	r.Metadata.FromModel(mod.Metadata)
}

func (r *ReservationResponse) FromView(view model.ReservationView, withUser bool) {
	r.FromModel(view.Reservation)
	r.Room = RoomSummary{Name: view.RoomName, Icon: view.RoomIcon}

	if withUser {
		r.User = &UserSummary{Name: view.UserName, Email: view.UserEmail}
	}
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromViews(views []model.ReservationView, withUser bool, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(views))
	for i, view := range views {
		r.Reservations[i].FromView(view, withUser)
	}
}
