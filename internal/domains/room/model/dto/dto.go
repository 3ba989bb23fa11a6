package dto

import (
	"io"
	"path"

	"github.com/google/uuid"

	"roombook/internal/domains/room/model"
	"roombook/shared"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
)

const MaxIconSize = 1 << 20

// IconUpload is an icon file taken from a multipart form.
type IconUpload struct {
	Filename    string    `json:"filename"     validate:"required"`
	ContentType string    `json:"content_type" validate:"required,oneof=image/png image/jpeg image/svg+xml"`
	Size        int64     `json:"size"         validate:"gt=0,max=1048576"`
	File        io.Reader `json:"-"`
}

// ObjectName returns a fresh object name that keeps the upload's extension.
func (i *IconUpload) ObjectName() string {
	return uuid.NewString() + path.Ext(i.Filename)
}

type CreateRoomRequest struct {
	Name     string      `json:"name"     validate:"required,max=100"`
	Capacity *int        `json:"capacity" validate:"omitempty,gt=0"`
	Icon     *IconUpload `json:"icon"     validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string, iconURL *string) model.Room {
	return model.Room{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Icon:     iconURL,
		Capacity: c.Capacity,
		Metadata: gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateRoomRequest struct {
	Name     *string     `db:"name"     json:"name"     validate:"omitempty,min=1,max=100"`
	Capacity *int        `db:"capacity" json:"capacity" validate:"omitempty,gt=0"`
	Icon     *IconUpload `json:"icon"   validate:"omitempty"`
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == nil && u.Capacity == nil && u.Icon == nil
}

type RoomResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Icon     *string `json:"icon"`
	Capacity *int    `json:"capacity"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Icon = model.Icon
	r.Capacity = model.Capacity
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
