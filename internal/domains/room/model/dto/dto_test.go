package dto_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	gModel "roombook/shared/model"
	"roombook/shared/validator"
)

func TestCreateRoomRequest_ToModel(t *testing.T) {
	capacity := 8
	icon := "https://cdn.example.com/room/a.png"
	req := dto.CreateRoomRequest{Name: "Orion", Capacity: &capacity}

	room := req.ToModel("admin-1", &icon)

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "Orion", room.Name)
	assert.Equal(t, &icon, room.Icon)
	assert.Equal(t, &capacity, room.Capacity)
	assert.Equal(t, "admin-1", room.CreatedBy)
	assert.Equal(t, room.CreatedAt, room.ModifiedAt)
}

func TestCreateRoomRequest_Validation(t *testing.T) {
	zero := 0

	tests := []struct {
		name    string
		req     dto.CreateRoomRequest
		message string
	}{
		{name: "valid without icon", req: dto.CreateRoomRequest{Name: "Orion"}},
		{name: "missing name", req: dto.CreateRoomRequest{}, message: "name is required"},
		{name: "zero capacity", req: dto.CreateRoomRequest{Name: "Orion", Capacity: &zero}, message: "capacity must be greater than 0"},
		{
			name: "icon wrong type",
			req: dto.CreateRoomRequest{
				Name: "Orion",
				Icon: &dto.IconUpload{Filename: "a.gif", ContentType: "image/gif", Size: 10, File: strings.NewReader("x")},
			},
			message: "content_type must be one of image/png image/jpeg image/svg+xml",
		},
		{
			name: "icon too large",
			req: dto.CreateRoomRequest{
				Name: "Orion",
				Icon: &dto.IconUpload{Filename: "a.png", ContentType: "image/png", Size: dto.MaxIconSize + 1, File: strings.NewReader("x")},
			},
			message: "size must be less than or equal to 1048576",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)

			if tt.message == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.message)
			}
		})
	}
}

func TestIconUpload_ObjectName(t *testing.T) {
	icon := dto.IconUpload{Filename: "meeting-room.svg"}

	name := icon.ObjectName()

	assert.True(t, strings.HasSuffix(name, ".svg"))
	assert.NotEqual(t, name, icon.ObjectName())
}

func TestUpdateRoomRequest_IsEmpty(t *testing.T) {
	name := "Vega"

	assert.True(t, (&dto.UpdateRoomRequest{}).IsEmpty())
	assert.False(t, (&dto.UpdateRoomRequest{Name: &name}).IsEmpty())
}

func TestGetRoomsResponse_FromModels(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rooms := []model.Room{
		{ID: "r1", Name: "Orion", Metadata: gModel.NewMetadata("admin", now)},
		{ID: "r2", Name: "Vega", Metadata: gModel.NewMetadata("admin", now)},
	}

	var res dto.GetRoomsResponse
	res.FromModels(rooms, 12, 10)

	assert.Equal(t, 12, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Rooms, 2)
	assert.Equal(t, "Vega", res.Rooms[1].Name)
	assert.Nil(t, res.Rooms[0].Icon)
}
