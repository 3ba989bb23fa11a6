package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roombook/internal/domains/reservation/model"
)

func TestAuthorize(t *testing.T) {
	owned := model.Reservation{ID: "res-1", UserID: "user-a"}

	tests := []struct {
		name     string
		res      model.Reservation
		callerID string
		want     model.Access
	}{
		{name: "owner", res: owned, callerID: "user-a", want: model.AccessGranted},
		{name: "other user", res: owned, callerID: "user-b", want: model.AccessDenied},
		{name: "empty caller", res: owned, callerID: "", want: model.AccessDenied},
		{name: "missing reservation", res: model.Reservation{}, callerID: "user-a", want: model.AccessNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.Authorize(tt.res, tt.callerID))
		})
	}
}

func TestAccess_String(t *testing.T) {
	assert.Equal(t, "granted", model.AccessGranted.String())
	assert.Equal(t, "denied", model.AccessDenied.String())
	assert.Equal(t, "not_found", model.AccessNotFound.String())
}

func TestReservationView_GetJoinQuery(t *testing.T) {
	query := model.ReservationView{}.GetJoinQuery()

	assert.Contains(t, query, "LEFT JOIN rooms ON rooms.id = reservations.room_id")
	assert.Contains(t, query, "LEFT JOIN users ON users.id = reservations.user_id")
}
