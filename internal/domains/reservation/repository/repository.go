package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/reservation/model"
	gDto "roombook/shared/dto"
	gRepo "roombook/shared/repository"
)

type Reservation interface {
	Insert(ctx context.Context, model model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) (int64, error)

	GetView(ctx context.Context, filter gDto.FilterGroup) (model.ReservationView, error)
	GetAllView(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationView, error)
	CountView(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	views gRepo.Repository[model.ReservationView]
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		views:      gRepo.NewRepository[model.ReservationView](model.EntityName+"_view", model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) GetView(ctx context.Context, filter gDto.FilterGroup) (model.ReservationView, error) {
	return r.views.Get(ctx, filter)
}

func (r *repositoryImpl) GetAllView(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.ReservationView, error) {
	return r.views.GetAll(ctx, params, filter)
}

func (r *repositoryImpl) CountView(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	return r.views.Count(ctx, filter)
}
