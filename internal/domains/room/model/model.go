package model

import "roombook/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldName     = "name"
	FieldIcon     = "icon"
	FieldCapacity = "capacity"
)

type Room struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	Icon     *string `db:"icon"`
	Capacity *int    `db:"capacity"`
	model.Metadata
}
