package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Reservation=MockService

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/infras/otel"
	availabilityModel "roombook/internal/domains/availability/model"
	"roombook/internal/domains/reservation/event"
	"roombook/internal/domains/reservation/model"
	"roombook/internal/domains/reservation/model/dto"
	"roombook/internal/domains/reservation/repository"
	roomModel "roombook/internal/domains/room/model"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/timezone"
)

const (
	cacheOwnReservation = "reservation:own"
	cacheAllReservation = "reservation:all"

	sortByDate = model.TableName + "." + model.FieldDate
)

type Reservation interface {
	ListOwn(ctx context.Context, callerID string, params gDto.QueryParams) (dto.GetReservationsResponse, error)
	ListAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Get(ctx context.Context, id, callerID string) (dto.ReservationResponse, error)
	Create(ctx context.Context, callerID string, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Update(ctx context.Context, id, callerID string, req dto.UpdateReservationRequest) (dto.ReservationResponse, error)
	Delete(ctx context.Context, id, callerID string) error
	Cancel(ctx context.Context, id, callerID string) error
}

type serviceImpl struct {
	repo      repository.Reservation
	roomRepo  roomRepo.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	publisher event.Publisher
	location  *time.Location
}

func New(repo repository.Reservation, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, publisher event.Publisher) Reservation {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		publisher: publisher,
		location:  timezone.LoadOrDefault(cfg.Booking.Timezone),
	}
}

func (s *serviceImpl) ListOwn(ctx context.Context, callerID string, params gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.ListOwn")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if callerID == constant.Empty {
		return res, failure.MissingIdentityError
	}

	params.SortBy = sortByDate
	params.SortDir = gDto.SortDirAsc

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldUserID, Value: callerID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	return s.list(ctx, shared.BuildCacheKey(cacheOwnReservation, callerID), params, filter, false)
}

func (s *serviceImpl) ListAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.ListAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, cacheAllReservation, params, filter, true)
}

func (s *serviceImpl) list(ctx context.Context, prefix string, params gDto.QueryParams, filter gDto.FilterGroup, withUser bool) (res dto.GetReservationsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(prefix, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.repo.CountView(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	views, err := s.repo.GetAllView(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromViews(views, withUser, total, params.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save reservations to cache")
	}

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id, callerID string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if callerID == constant.Empty {
		return res, failure.MissingIdentityError
	}

	view, err := s.repo.GetView(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if err = accessError(model.Authorize(view.Reservation, callerID)); err != nil {
		return res, err
	}

	res.FromView(view, false)

	return res, nil
}

// Create performs no availability check; a second confirmed reservation of the same room and instant
// is rejected by the store.
func (s *serviceImpl) Create(ctx context.Context, callerID string, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if callerID == constant.Empty {
		return res, failure.MissingIdentityError
	}

	reservation, err := req.ToModel(callerID)
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	if err = s.ensureRoom(ctx, reservation.RoomID); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, reservation); err != nil {
		log.Error().Err(err).Msg("failed to create reservation")

		return res, storeError("create", err)
	}

	s.invalidate(ctx, callerID, reservation)
	s.publish(ctx, event.New(event.TypeCreated, reservation))

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, id, callerID string, req dto.UpdateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return res, err
	}

	fields, err := req.ToFields(callerID)
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	if req.RoomID != current.RoomID {
		if err = s.ensureRoom(ctx, req.RoomID); err != nil {
			return res, err
		}
	}

	affected, err := s.repo.Update(ctx, fields, shared.FilterByIDAndOwner(id, model.FieldID, callerID, model.FieldUserID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to update reservation")

		return res, storeError("update", err)
	}

	if affected == 0 {
		return res, failure.NotFound("reservation not found") //nolint:wrapcheck
	}

	updated := current
	updated.RoomID = req.RoomID
	updated.Date, _ = fields[model.FieldDate].(time.Time)
	updated.Status = req.Status
	updated.Purpose = req.Purpose
	updated.ModifiedAt, _ = fields[constant.FieldModifiedAt].(time.Time)
	updated.ModifiedBy = callerID

	s.invalidate(ctx, callerID, current, updated)
	s.publish(ctx, event.New(event.TypeUpdated, updated).Moved(current))

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id, callerID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, shared.FilterByIDAndOwner(id, model.FieldID, callerID, model.FieldUserID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to delete reservation")

		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	if affected == 0 {
		return failure.NotFound("reservation not found") //nolint:wrapcheck
	}

	s.invalidate(ctx, callerID, current)
	s.publish(ctx, event.New(event.TypeDeleted, current))

	return nil
}

// Cancel writes the status and modification metadata only.
func (s *serviceImpl) Cancel(ctx context.Context, id, callerID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Update(ctx, dto.CancelFields(callerID), shared.FilterByIDAndOwner(id, model.FieldID, callerID, model.FieldUserID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to cancel reservation")

		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if affected == 0 {
		return failure.NotFound("reservation not found") //nolint:wrapcheck
	}

	current.Status = model.StatusCancelled

	s.invalidate(ctx, callerID, current)
	s.publish(ctx, event.New(event.TypeCancelled, current))

	return nil
}

// authorize loads the reservation and checks that callerID owns it.
func (s *serviceImpl) authorize(ctx context.Context, id, callerID string) (model.Reservation, error) {
	if callerID == constant.Empty {
		return model.Reservation{}, failure.MissingIdentityError
	}

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if err = accessError(model.Authorize(reservation, callerID)); err != nil {
		log.Debug().Str("reservation", id).Str("caller", callerID).Err(err).Msg("reservation access refused")

		return model.Reservation{}, err
	}

	return reservation, nil
}

func (s *serviceImpl) ensureRoom(ctx context.Context, roomID string) error {
	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return failure.NotFound("room not found") //nolint:wrapcheck
	}

	return nil
}

// invalidate drops the caller's listings, the admin listings and the availability of every room and day in touched.
func (s *serviceImpl) invalidate(ctx context.Context, callerID string, touched ...model.Reservation) {
	shared.InvalidateCaches(ctx, s.cache, shared.BuildCacheKey(cacheOwnReservation, callerID))
	shared.InvalidateCaches(ctx, s.cache, cacheAllReservation)

	keys := make([]string, 0, len(touched))
	for _, r := range touched {
		keys = append(keys, availabilityModel.CacheKey(r.RoomID, r.Date.In(s.location).Format(constant.DateOnlyFormat)))
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("failed to delete availability from cache")
	}
}

func (s *serviceImpl) publish(ctx context.Context, e event.Event) {
	go s.publisher.Publish(context.WithoutCancel(ctx), e)
}

func accessError(access model.Access) error {
	switch access {
	case model.AccessNotFound:
		return failure.NotFound("reservation not found") //nolint:wrapcheck
	case model.AccessDenied:
		return failure.Forbidden("reservation belongs to another user") //nolint:wrapcheck
	default:
		return nil
	}
}

func storeError(action string, err error) error {
	switch {
	case shared.IsUniqueViolation(err):
		return failure.Conflict("room is already booked at this time") //nolint:wrapcheck
	case shared.IsForeignKeyViolation(err):
		return failure.BadRequestFromString("room does not exist") //nolint:wrapcheck
	default:
		return fmt.Errorf("failed to %s reservation: %w", action, err)
	}
}
