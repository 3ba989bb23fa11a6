package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/reservation/event"
	reservationMocks "roombook/internal/domains/reservation/mocks"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/model/dto"
	"roombook/internal/domains/reservation/service"
	roomMocks "roombook/internal/domains/room/mocks"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
)

const (
	testRoomID  = "5b0c6d2e-3f4a-4b1c-9d8e-7f6a5b4c3d2e"
	testOtherID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	testResID   = "res-1"
	userA       = "user-a"
	userB       = "user-b"
)

var testDate = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *reservationMocks.MockReservation
	rooms     *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	publisher *reservationMocks.MockPublisher
	svc       service.Reservation
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.Booking.Timezone = "UTC"

	f := fixture{
		repo:      reservationMocks.NewMockReservation(ctrl),
		rooms:     roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: reservationMocks.NewMockPublisher(ctrl),
	}
	f.svc = service.New(f.repo, f.rooms, cfg, f.cache, otelMocks.NewOtel(), f.publisher)

	return f
}

// expectPublish captures the single event a mutation publishes in the background.
func (f fixture) expectPublish() <-chan event.Event {
	published := make(chan event.Event, 1)

	f.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e event.Event) { published <- e })

	return published
}

// expectInvalidation requires the caller listing, the admin listing and the given availability keys to be dropped.
func (f fixture) expectInvalidation(callerID string, availabilityKeys ...any) {
	f.cache.EXPECT().Clear(gomock.Any(), "reservation:own:"+callerID+"*").Return(nil)
	f.cache.EXPECT().Clear(gomock.Any(), "reservation:all*").Return(nil)
	f.cache.EXPECT().Delete(gomock.Any(), availabilityKeys...).Return(nil)
}

func waitEvent(t *testing.T, published <-chan event.Event) event.Event {
	t.Helper()

	select {
	case e := <-published:
		return e
	case <-time.After(time.Second):
		t.Fatal("event was not published")

		return event.Event{}
	}
}

func ownedReservation() model.Reservation {
	return model.Reservation{
		ID:      testResID,
		RoomID:  testRoomID,
		UserID:  userA,
		Date:    testDate,
		Status:  model.StatusConfirmed,
		Purpose: "Sprint planning",
	}
}

func validRequest() dto.ReservationRequest {
	return dto.ReservationRequest{
		RoomID:  testRoomID,
		Date:    "2024-01-15T10:00:00Z",
		Status:  model.StatusConfirmed,
		Purpose: "Sprint planning",
	}
}

func TestReservationService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r model.Reservation) error {
				assert.Equal(t, userA, r.UserID)
				assert.True(t, r.Date.Equal(testDate))

				return nil
			})
		f.expectInvalidation(userA, "availability:"+testRoomID+":2024-01-15")
		published := f.expectPublish()

		res, err := f.svc.Create(context.Background(), userA, validRequest())

		require.NoError(t, err)
		assert.Equal(t, "2024-01-15T10:00:00.000Z", res.Date)
		assert.Equal(t, event.TypeCreated, waitEvent(t, published).Type)
	})

	t.Run("missing identity", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), "", validRequest())

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("room does not exist", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Create(context.Background(), userA, validRequest())

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("second confirmed booking of the slot", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("failed to insert data (reservation): %w", &pq.Error{Code: constant.PqErrorCodeUniqueViolation}))

		_, err := f.svc.Create(context.Background(), userA, validRequest())

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("room removed concurrently", func(t *testing.T) {
		f := newFixture(t)

		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: constant.PqErrorCodeFkViolation})

		_, err := f.svc.Create(context.Background(), userA, validRequest())

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestReservationService_Get(t *testing.T) {
	roomName := "Kenari"
	view := model.ReservationView{Reservation: ownedReservation(), RoomName: &roomName}

	tests := []struct {
		name     string
		callerID string
		view     model.ReservationView
		wantCode int
	}{
		{name: "owner", callerID: userA, view: view},
		{name: "other user", callerID: userB, view: view, wantCode: http.StatusForbidden},
		{name: "missing", callerID: userA, view: model.ReservationView{}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().GetView(gomock.Any(), gomock.Any()).Return(tt.view, nil)

			res, err := f.svc.Get(context.Background(), testResID, tt.callerID)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, &roomName, res.Room.Name)
			assert.Nil(t, res.User)
		})
	}

	t.Run("missing identity skips the store", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Get(context.Background(), testResID, "")

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestReservationService_ForeignCallerWritesNothing(t *testing.T) {
	operations := map[string]func(svc service.Reservation) error{
		"update": func(svc service.Reservation) error {
			_, err := svc.Update(context.Background(), testResID, userB, validRequest())

			return err
		},
		"delete": func(svc service.Reservation) error {
			return svc.Delete(context.Background(), testResID, userB)
		},
		"cancel": func(svc service.Reservation) error {
			return svc.Cancel(context.Background(), testResID, userB)
		},
	}

	for name, operation := range operations {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			// no Update, Delete, cache or publisher expectations: any write fails the test
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)

			err := operation(f.svc)

			assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
		})
	}
}

func TestReservationService_Cancel(t *testing.T) {
	t.Run("writes only status and metadata", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
				assert.Len(t, fields, 3)
				assert.Contains(t, fields, constant.FieldModifiedAt)
				assert.Equal(t, userA, fields[constant.FieldModifiedBy])
				assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "reservations.user_id")
				assert.Equal(t, userA, args[model.FieldUserID])

				return 1, nil
			})
		f.expectInvalidation(userA, "availability:"+testRoomID+":2024-01-15")
		published := f.expectPublish()

		require.NoError(t, f.svc.Cancel(context.Background(), testResID, userA))

		e := waitEvent(t, published)
		assert.Equal(t, event.TypeCancelled, e.Type)
		assert.Equal(t, model.StatusCancelled, e.Status)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		err := f.svc.Cancel(context.Background(), testResID, userA)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestReservationService_Update(t *testing.T) {
	t.Run("move to another room invalidates both days", func(t *testing.T) {
		f := newFixture(t)

		req := validRequest()
		req.RoomID = testOtherID
		req.Date = "2024-01-16T09:30:00Z"

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)
		f.rooms.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.expectInvalidation(userA,
			"availability:"+testRoomID+":2024-01-15",
			"availability:"+testOtherID+":2024-01-16")
		published := f.expectPublish()

		res, err := f.svc.Update(context.Background(), testResID, userA, req)

		require.NoError(t, err)
		assert.Equal(t, testOtherID, res.RoomID)
		assert.Equal(t, "2024-01-16T09:30:00.000Z", res.Date)

		e := waitEvent(t, published)
		assert.Equal(t, testRoomID, e.PreviousRoomID)
	})

	t.Run("row vanished between check and write", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := f.svc.Update(context.Background(), testResID, userA, validRequest())

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset"))

		_, err := f.svc.Update(context.Background(), testResID, userA, validRequest())

		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}

func TestReservationService_DeleteThenGet(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ownedReservation(), nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	f.expectInvalidation(userA, "availability:"+testRoomID+":2024-01-15")
	published := f.expectPublish()

	require.NoError(t, f.svc.Delete(context.Background(), testResID, userA))
	assert.Equal(t, event.TypeDeleted, waitEvent(t, published).Type)

	f.repo.EXPECT().GetView(gomock.Any(), gomock.Any()).Return(model.ReservationView{}, nil)

	_, err := f.svc.Get(context.Background(), testResID, userA)

	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestReservationService_ListOwn(t *testing.T) {
	t.Run("date ascending for the caller only", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().CountView(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().
			GetAllView(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationView, error) {
				assert.Equal(t, "reservations.date", params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				_, args := filter.GetWhereClause()
				assert.Equal(t, userA, args[model.FieldUserID])

				return []model.ReservationView{{Reservation: ownedReservation()}}, nil
			})

		saved := make(chan struct{})
		f.cache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).
			DoAndReturn(func(context.Context, string, any, int) error {
				close(saved)

				return nil
			})

		res, err := f.svc.ListOwn(context.Background(), userA, gDto.QueryParams{SortBy: "password", SortDir: gDto.SortDirDesc})

		require.NoError(t, err)
		require.Len(t, res.Reservations, 1)
		assert.Equal(t, testResID, res.Reservations[0].ID)

		select {
		case <-saved:
		default:
			t.Fatal("listing was not cached before ListOwn returned")
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListOwn(context.Background(), "", gDto.QueryParams{})

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestReservationService_ListAll(t *testing.T) {
	f := newFixture(t)
	email := "a@example.com"

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().CountView(gomock.Any(), gomock.Any()).Return(12, nil)
	f.repo.EXPECT().
		GetAllView(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.ReservationView{{Reservation: ownedReservation(), UserEmail: &email}}, nil)

	saved := make(chan struct{})
	f.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, any, int) error {
			close(saved)

			return nil
		})

	res, err := f.svc.ListAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalPage)
	require.NotNil(t, res.Reservations[0].User)
	assert.Equal(t, &email, res.Reservations[0].User.Email)

	<-saved
}
