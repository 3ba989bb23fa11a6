package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/otel/mocks"
	s3Mocks "roombook/infras/s3/mocks"
	roomMocks "roombook/internal/domains/room/mocks"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/service"
	cacheMocks "roombook/shared/cache/mocks"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
)

const (
	testRoomID  = "room-1"
	testCaller  = "admin-1"
	testIconURL = "https://cdn.example.com/room/new.png"
	testOldIcon = "https://cdn.example.com/room/old.png"
)

type fixture struct {
	repo  *roomMocks.MockRoom
	cache *cacheMocks.MockRedisCache
	s3    *s3Mocks.MockS3
	svc   service.Room
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := fixture{
		repo:  roomMocks.NewMockRoom(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
	}
	f.svc = service.New(f.repo, cfg, f.cache, mocks.NewOtel(), f.s3)

	return f
}

func testRoom(icon *string) model.Room {
	capacity := 8

	return model.Room{
		ID:       testRoomID,
		Name:     "Kenari",
		Icon:     icon,
		Capacity: &capacity,
		Metadata: gModel.NewMetadata(testCaller, timezone.Now()),
	}
}

func testIcon() *dto.IconUpload {
	return &dto.IconUpload{
		Filename:    "kenari.png",
		ContentType: "image/png",
		Size:        4,
		File:        strings.NewReader("icon"),
	}
}

func TestRoomService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateRoomRequest
		setupMock func(f fixture)
		wantErr   bool
	}{
		{
			name: "without icon",
			req:  dto.CreateRoomRequest{Name: "Kenari"},
			setupMock: func(f fixture) {
				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						assert.Equal(t, "Kenari", room.Name)
						assert.Nil(t, room.Icon)
						assert.Equal(t, testCaller, room.CreatedBy)

						return nil
					})

				f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
		},
		{
			name: "with icon",
			req:  dto.CreateRoomRequest{Name: "Kenari", Icon: testIcon()},
			setupMock: func(f fixture) {
				f.s3.EXPECT().
					Upload(gomock.Any(), model.EntityName, gomock.Any(), "image/png", gomock.Any()).
					Return(testIconURL, nil)

				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, room model.Room) error {
						require.NotNil(t, room.Icon)
						assert.Equal(t, testIconURL, *room.Icon)

						return nil
					})

				f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
		},
		{
			name: "upload error",
			req:  dto.CreateRoomRequest{Name: "Kenari", Icon: testIcon()},
			setupMock: func(f fixture) {
				f.s3.EXPECT().
					Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("bucket unreachable"))
			},
			wantErr: true,
		},
		{
			name: "insert error removes uploaded icon",
			req:  dto.CreateRoomRequest{Name: "Kenari", Icon: testIcon()},
			setupMock: func(f fixture) {
				f.s3.EXPECT().
					Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(testIconURL, nil)

				f.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))

				f.s3.EXPECT().Delete(gomock.Any(), testIconURL).Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Create(context.Background(), testCaller, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoomService_GetAll(t *testing.T) {
	t.Run("cache miss reads repository", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
		f.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]model.Room{testRoom(nil)}, nil)
		f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 3600).Return(nil).AnyTimes()

		res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 11, res.TotalData)
		assert.Equal(t, 2, res.TotalPage)
		require.Len(t, res.Rooms, 1)
		assert.Equal(t, testRoomID, res.Rooms[0].ID)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		assert.NoError(t, err)
	})

	t.Run("count error", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("count error"))

		_, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

		assert.Error(t, err)
	})
}

func TestRoomService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), "room:get:"+testRoomID, gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(nil), nil)
		f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		res, err := f.svc.Get(context.Background(), testRoomID)

		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "Kenari", res.Name)
		require.NotNil(t, res.Capacity)
		assert.Equal(t, 8, *res.Capacity)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		_, err := f.svc.Get(context.Background(), testRoomID)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRoomService_Update(t *testing.T) {
	name := "Kenari Besar"
	oldIcon := testOldIcon

	tests := []struct {
		name      string
		req       dto.UpdateRoomRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:     "empty request",
			req:      dto.UpdateRoomRequest{},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "room not found",
			req:  dto.UpdateRoomRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "rename",
			req:  dto.UpdateRoomRequest{Name: &name},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(&oldIcon), nil)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
						assert.Equal(t, name, fields[model.FieldName])
						assert.NotContains(t, fields, model.FieldIcon)

						return 1, nil
					})
				f.cache.EXPECT().Delete(gomock.Any(), "room:get:"+testRoomID).Return(nil)
				f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
		},
		{
			name: "icon replaced removes the previous object",
			req:  dto.UpdateRoomRequest{Icon: testIcon()},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(&oldIcon), nil)
				f.s3.EXPECT().
					Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(testIconURL, nil)
				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
						assert.Equal(t, testIconURL, fields[model.FieldIcon])

						return 1, nil
					})
				f.s3.EXPECT().Delete(gomock.Any(), testOldIcon).Return(nil)
				f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
				f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
		},
		{
			name: "row vanished before write",
			req:  dto.UpdateRoomRequest{Icon: testIcon()},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(nil), nil)
				f.s3.EXPECT().
					Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(testIconURL, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.s3.EXPECT().Delete(gomock.Any(), testIconURL).Return(nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setupMock != nil {
				tt.setupMock(f)
			}

			err := f.svc.Update(context.Background(), testRoomID, testCaller, tt.req)

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("removes icon and dependent caches", func(t *testing.T) {
		f := newFixture(t)
		icon := testOldIcon

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(&icon), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.s3.EXPECT().Delete(gomock.Any(), testOldIcon).Return(nil)
		f.cache.EXPECT().Delete(gomock.Any(), "room:get:"+testRoomID).Return(nil)
		f.cache.EXPECT().Clear(gomock.Any(), "availability:"+testRoomID+"*").Return(nil)
		f.cache.EXPECT().Clear(gomock.Any(), "reservation*").Return(nil)
		f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		assert.NoError(t, f.svc.Delete(context.Background(), testRoomID))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		err := f.svc.Delete(context.Background(), testRoomID)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testRoom(nil), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("database error"))

		err := f.svc.Delete(context.Background(), testRoomID)

		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
