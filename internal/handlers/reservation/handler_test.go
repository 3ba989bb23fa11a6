package reservation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/infras/otel/mocks"
	availabilityMocks "roombook/internal/domains/availability/mocks"
	availabilityDto "roombook/internal/domains/availability/model/dto"
	reservationMocks "roombook/internal/domains/reservation/mocks"
	"roombook/internal/domains/reservation/model/dto"
	"roombook/internal/handlers/reservation"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
)

const (
	roomID = "6f1c2a7e-3b0d-4c55-9a51-2f0e8f4b9d10"
	userID = "user-1"
	resID  = "0b8e9d4c-1a2b-4c3d-8e9f-a0b1c2d3e4f5"
)

type fixture struct {
	service      *reservationMocks.MockService
	availability *availabilityMocks.MockAvailability
	router       chi.Router
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		service:      reservationMocks.NewMockService(ctrl),
		availability: availabilityMocks.NewMockAvailability(ctrl),
		router:       chi.NewRouter(),
	}

	handler := reservation.New(f.service, f.availability, mocks.NewOtel())
	handler.Router(f.router)

	return f
}

func (f fixture) do(method, target, body, caller string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if caller != "" {
		request = request.WithContext(context.WithValue(request.Context(), constant.ContextKeyUserID, caller))
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func TestGetAvailableSlots(t *testing.T) {
	t.Run("validated query reaches the service", func(t *testing.T) {
		f := newFixture(t)

		f.availability.EXPECT().
			GetSlots(gomock.Any(), roomID, "2024-01-15").
			Return(availabilityDto.GetSlotsResponse{RoomID: roomID, Date: "2024-01-15", Slots: []availabilityDto.SlotResponse{}}, nil)

		recorder := f.do(http.MethodGet, "/reservations/available?room_id="+roomID+"&date=2024-01-15", "", "")

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	tests := map[string]string{
		"missing date":   "/reservations/available?room_id=" + roomID,
		"malformed date": "/reservations/available?room_id=" + roomID + "&date=15-01-2024",
		"malformed room": "/reservations/available?room_id=abc&date=2024-01-15",
	}

	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			recorder := f.do(http.MethodGet, target, "", "")

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		f.availability.EXPECT().GetSlots(gomock.Any(), roomID, "2024-01-15").Return(availabilityDto.GetSlotsResponse{}, failure.NotFound("room not found"))

		recorder := f.do(http.MethodGet, "/reservations/available?room_id="+roomID+"&date=2024-01-15", "", "")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "room not found", decode(t, recorder)["error"])
	})
}

func TestCreateReservation(t *testing.T) {
	body := `{"room_id":"` + roomID + `","date":"2024-01-15T10:00:00Z","status":"confirmed","purpose":"standup"}`

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			Create(gomock.Any(), userID, dto.CreateReservationRequest{
				RoomID:  roomID,
				Date:    "2024-01-15T10:00:00Z",
				Status:  "confirmed",
				Purpose: "standup",
			}).
			Return(dto.ReservationResponse{ID: resID, Date: "2024-01-15T10:00:00.000Z"}, nil)

		recorder := f.do(http.MethodPost, "/reservations", body, userID)

		assert.Equal(t, http.StatusCreated, recorder.Code)

		data, ok := decode(t, recorder)["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, resID, data["id"])
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)

		recorder := f.do(http.MethodPost, "/reservations", strings.Replace(body, "confirmed", "tentative", 1), userID)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("slot taken", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Create(gomock.Any(), userID, gomock.Any()).Return(dto.ReservationResponse{}, failure.Conflict("room is already booked at this time"))

		recorder := f.do(http.MethodPost, "/reservations", body, userID)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestReservationByID(t *testing.T) {
	t.Run("get passes id and caller", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Get(gomock.Any(), resID, userID).Return(dto.ReservationResponse{ID: resID}, nil)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/reservations/"+resID, "", userID).Code)
	})

	t.Run("foreign reservation", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Delete(gomock.Any(), resID, "user-2").Return(failure.Forbidden("reservation belongs to another user"))

		assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/reservations/"+resID, "", "user-2").Code)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Cancel(gomock.Any(), resID, userID).Return(nil)

		assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/reservations/"+resID+"/cancel", "", userID).Code)
	})

	t.Run("malformed id never reaches the store", func(t *testing.T) {
		f := newFixture(t)

		for _, tc := range []struct{ method, target, body string }{
			{http.MethodGet, "/reservations/not-a-uuid", ""},
			{http.MethodPut, "/reservations/not-a-uuid", `{"room_id":"` + roomID + `","date":"2024-01-15T10:00:00Z","status":"confirmed","purpose":"sync"}`},
			{http.MethodDelete, "/reservations/not-a-uuid", ""},
			{http.MethodPost, "/reservations/not-a-uuid/cancel", ""},
		} {
			recorder := f.do(tc.method, tc.target, tc.body, userID)

			assert.Equal(t, http.StatusBadRequest, recorder.Code, "%s %s", tc.method, tc.target)
			assert.Contains(t, recorder.Body.String(), "id must be a valid UUID")
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Get(gomock.Any(), resID, "").Return(dto.ReservationResponse{}, failure.MissingIdentityError)

		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/reservations/"+resID, "", "").Code)
	})
}

func TestGetOwnReservations(t *testing.T) {
	t.Run("no paging unless asked", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			ListOwn(gomock.Any(), userID, gDto.QueryParams{}).
			Return(dto.GetReservationsResponse{TotalPage: 1, TotalData: 12}, nil)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/reservations", "", userID).Code)
	})

	t.Run("explicit paging is forwarded", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			ListOwn(gomock.Any(), userID, gDto.QueryParams{Page: 2, Limit: 5}).
			Return(dto.GetReservationsResponse{}, nil)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/reservations?page=2&limit=5", "", userID).Code)
	})
}

func TestGetAllReservations(t *testing.T) {
	t.Run("unknown sort column falls back to date", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			ListAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error) {
				assert.Equal(t, "reservations.date", params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				_, args := filter.GetWhereClause()
				assert.Equal(t, map[string]any{"status": "pending"}, args)

				return dto.GetReservationsResponse{}, nil
			})

		recorder := f.do(http.MethodGet, "/reservations/all?sort_by=users.password&status=pending", "", userID)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("bad status filter", func(t *testing.T) {
		f := newFixture(t)

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/reservations/all?status=maybe", "", userID).Code)
	})
}
