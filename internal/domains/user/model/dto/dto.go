package dto

import (
	"time"

	"roombook/internal/domains/user/model"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	ImageURL  *string `json:"image_url"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	LastLogin *string `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Email = user.Email
	r.Name = user.Name
	r.ImageURL = user.ImageURL
	r.Role = user.Level
	r.Active = user.Active
	r.LastLogin = formatOptional(user.LastLogin)
	r.Metadata.FromModel(user.Metadata)
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := t.UTC().Format(constant.DateFormat)

	return &formatted
}
