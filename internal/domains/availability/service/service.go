package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/availability/model"
	"roombook/internal/domains/availability/model/dto"
	"roombook/internal/domains/availability/slot"
	reservationModel "roombook/internal/domains/reservation/model"
	reservationRepo "roombook/internal/domains/reservation/repository"
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
	defaultOpenTime     = "09:00"
	defaultCloseTime    = "18:00"
	defaultIntervalMin  = 30
	defaultSlotCacheTTL = 60
)

type Availability interface {
	GetSlots(ctx context.Context, roomID, date string) (dto.GetSlotsResponse, error)
}

type serviceImpl struct {
	reservationRepo reservationRepo.Reservation
	roomRepo        roomRepo.Room
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	location        *time.Location
}

func New(reservationRepo reservationRepo.Reservation, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Availability {
	return &serviceImpl{
		reservationRepo: reservationRepo,
		roomRepo:        roomRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		location:        timezone.LoadOrDefault(cfg.Booking.Timezone),
	}
}

// GetSlots marks a slot unavailable only when a confirmed reservation starts at exactly the slot's start.
// Slots already in the past are returned as well.
func (s *serviceImpl) GetSlots(ctx context.Context, roomID, date string) (res dto.GetSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.GetSlots")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	day, err := timezone.ParseDate(date, s.location)
	if err != nil {
		return res, failure.BadRequest(err) //nolint:wrapcheck
	}

	cacheKey := model.CacheKey(roomID, date)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for slots")

		return res, nil
	}

	windows, err := s.windows(day)
	if err != nil {
		log.Error().Err(err).Msg("invalid booking hours configuration")

		return res, fmt.Errorf("failed to generate slots: %w", err)
	}

	exist, err := s.roomRepo.Exist(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("room not found") //nolint:wrapcheck
	}

	reservations, err := s.reservationRepo.GetAll(ctx, gDto.QueryParams{}, confirmedOn(roomID, day))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	booked := make(map[int64]struct{}, len(reservations))
	for _, r := range reservations {
		booked[r.Date.UnixNano()] = struct{}{}
	}

	res.RoomID = roomID
	res.Date = date
	res.Slots = []dto.SlotResponse{}

	for w := range windows {
		_, taken := booked[w.Start.UnixNano()]

		var slotRes dto.SlotResponse
		slotRes.FromWindow(w, !taken)

		res.Slots = append(res.Slots, slotRes)
	}

	// The key must exist before the response is sent.
	if err := s.cache.Save(ctx, cacheKey, res, cmp.Or(s.cfg.Booking.SlotCacheTTL, defaultSlotCacheTTL)); err != nil {
		log.Error().Err(err).Msg("failed to save slots to cache")
	}

	return res, nil
}

func (s *serviceImpl) windows(day time.Time) (iter.Seq[slot.Window], error) {
	opensAt, err := timezone.ClockOn(day, cmp.Or(s.cfg.Booking.OpenTime, defaultOpenTime))
	if err != nil {
		return nil, err
	}

	closesAt, err := timezone.ClockOn(day, cmp.Or(s.cfg.Booking.CloseTime, defaultCloseTime))
	if err != nil {
		return nil, err
	}

	interval := time.Duration(cmp.Or(s.cfg.Booking.SlotIntervalMin, defaultIntervalMin)) * time.Minute

	return slot.Generate(opensAt, closesAt, interval)
}

// confirmedOn selects the confirmed reservations of roomID within the calendar day starting at day.
func confirmedOn(roomID string, day time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    reservationModel.FieldRoomID,
				Value:    roomID,
				Operator: gDto.FilterOperatorEq,
				Table:    reservationModel.TableName,
			},
			gDto.Filter{
				Field:    reservationModel.FieldStatus,
				Value:    reservationModel.StatusConfirmed,
				Operator: gDto.FilterOperatorEq,
				Table:    reservationModel.TableName,
			},
			gDto.Filter{
				ArgName:  "day_start",
				Field:    reservationModel.FieldDate,
				Value:    day,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    reservationModel.TableName,
			},
			gDto.Filter{
				ArgName:  "day_end",
				Field:    reservationModel.FieldDate,
				Value:    day.AddDate(0, 0, 1),
				Operator: gDto.FilterOperatorLess,
				Table:    reservationModel.TableName,
			},
		},
	}
}
