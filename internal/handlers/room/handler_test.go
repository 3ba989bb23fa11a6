package room_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/infras/otel/mocks"
	realtimeMocks "roombook/infras/realtime/mocks"
	roomMocks "roombook/internal/domains/room/mocks"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/handlers/room"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
)

const roomID = "6f1c2a7e-3b0d-4c55-9a51-2f0e8f4b9d10"

type fixture struct {
	service *roomMocks.MockService
	hub     *realtimeMocks.MockHub
	router  chi.Router
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		service: roomMocks.NewMockService(ctrl),
		hub:     realtimeMocks.NewMockHub(ctrl),
		router:  chi.NewRouter(),
	}

	handler := room.New(f.service, f.hub, mocks.NewOtel())
	handler.Router(f.router)

	return f
}

type part struct {
	field, filename, contentType, content string
}

func multipartRequest(t *testing.T, method, target string, parts ...part) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, writer.WriteField(p.field, p.content))

			continue
		}

		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		header.Set("Content-Type", p.contentType)

		w, err := writer.CreatePart(header)
		require.NoError(t, err)

		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	request := httptest.NewRequest(method, target, body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	return request.WithContext(context.WithValue(request.Context(), constant.ContextKeyUserID, "admin-1"))
}

func TestCreateRoom(t *testing.T) {
	t.Run("with icon", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().
			Create(gomock.Any(), "admin-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, req dto.CreateRoomRequest) error {
				assert.Equal(t, "Board Room", req.Name)
				require.NotNil(t, req.Capacity)
				assert.Equal(t, 12, *req.Capacity)
				require.NotNil(t, req.Icon)
				assert.Equal(t, "board.png", req.Icon.Filename)
				assert.Equal(t, "image/png", req.Icon.ContentType)

				content, err := io.ReadAll(req.Icon.File)
				require.NoError(t, err)
				assert.Equal(t, "png-bytes", string(content))

				return nil
			})

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, multipartRequest(t, http.MethodPost, "/rooms",
			part{field: "name", content: "Board Room"},
			part{field: "capacity", content: "12"},
			part{field: "icon", filename: "board.png", contentType: "image/png", content: "png-bytes"},
		))

		assert.Equal(t, http.StatusCreated, recorder.Code)
	})

	t.Run("icon type rejected", func(t *testing.T) {
		f := newFixture(t)

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, multipartRequest(t, http.MethodPost, "/rooms",
			part{field: "name", content: "Board Room"},
			part{field: "icon", filename: "board.gif", contentType: "image/gif", content: "gif"},
		))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("capacity not a number", func(t *testing.T) {
		f := newFixture(t)

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, multipartRequest(t, http.MethodPost, "/rooms",
			part{field: "name", content: "Board Room"},
			part{field: "capacity", content: "many"},
		))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("name required", func(t *testing.T) {
		f := newFixture(t)

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, multipartRequest(t, http.MethodPost, "/rooms", part{field: "capacity", content: "4"}))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestUpdateRoom(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().
		Update(gomock.Any(), roomID, "admin-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, req dto.UpdateRoomRequest) error {
			require.NotNil(t, req.Name)
			assert.Equal(t, "Focus", *req.Name)
			assert.Nil(t, req.Capacity)
			assert.Nil(t, req.Icon)

			return nil
		})

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, multipartRequest(t, http.MethodPatch, "/rooms/"+roomID, part{field: "name", content: "Focus"}))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestGetRooms(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error) {
			assert.Equal(t, "rooms.name", params.SortBy)

			_, args := filter.GetWhereClause()
			assert.Equal(t, "%board%", args["name"])

			return dto.GetRoomsResponse{Rooms: []dto.RoomResponse{}}, nil
		})

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms?name=board", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSubscribeSlots(t *testing.T) {
	t.Run("subscribes to the room day topic", func(t *testing.T) {
		f := newFixture(t)

		f.hub.EXPECT().Serve(gomock.Any(), gomock.Any(), "slots:"+roomID+":2024-01-15").Return(nil)

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/"+roomID+"/slots/ws?date=2024-01-15", nil))
	})

	t.Run("date required", func(t *testing.T) {
		f := newFixture(t)

		recorder := httptest.NewRecorder()
		f.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/"+roomID+"/slots/ws", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
