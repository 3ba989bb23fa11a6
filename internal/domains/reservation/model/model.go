package model

import (
	"time"

	"roombook/shared/constant"
	"roombook/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID      = "id"
	FieldRoomID  = "room_id"
	FieldUserID  = "user_id"
	FieldDate    = "date"
	FieldStatus  = "status"
	FieldPurpose = "purpose"
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

type Reservation struct {
	ID      string    `db:"id"`
	RoomID  string    `db:"room_id"`
	UserID  string    `db:"user_id"`
	Date    time.Time `db:"date"`
	Status  string    `db:"status"`
	Purpose string    `db:"purpose"`
	model.Metadata
}

// ReservationView is the read projection of a reservation joined with its room and owner.
// Room and user columns are nullable because both joins are LEFT JOINs.
type ReservationView struct {
	Reservation
	RoomName  *string `column:"name"  db:"room_name"  table:"rooms"`
	RoomIcon  *string `column:"icon"  db:"room_icon"  table:"rooms"`
	UserName  *string `column:"name"  db:"user_name"  table:"users"`
	UserEmail *string `column:"email" db:"user_email" table:"users"`
}

func (ReservationView) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = reservations.room_id LEFT JOIN users ON users.id = reservations.user_id"
}

// Access is the outcome of checking a caller against a reservation.
type Access int

const (
	AccessNotFound Access = iota
	AccessDenied
	AccessGranted
)

func (a Access) String() string {
	switch a {
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	default:
		return "not_found"
	}
}

// Authorize reports whether callerID owns r. A zero reservation is AccessNotFound.
func Authorize(r Reservation, callerID string) Access {
	switch {
	case r.ID == constant.Empty:
		return AccessNotFound
	case callerID == constant.Empty || r.UserID != callerID:
		return AccessDenied
	default:
		return AccessGranted
	}
}
