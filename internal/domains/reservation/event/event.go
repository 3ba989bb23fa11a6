package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/infras/realtime"
	availabilityModel "roombook/internal/domains/availability/model"
	"roombook/internal/domains/reservation/model"
	"roombook/shared/constant"
	"roombook/shared/timezone"
)

const (
	TypeCreated   = "reservation.created"
	TypeUpdated   = "reservation.updated"
	TypeCancelled = "reservation.cancelled"
	TypeDeleted   = "reservation.deleted"
)

// Event describes one reservation mutation. Previous* are set when an update moved the reservation.
type Event struct {
	Type           string     `json:"type"`
	ReservationID  string     `json:"reservation_id"`
	RoomID         string     `json:"room_id"`
	UserID         string     `json:"user_id"`
	Date           time.Time  `json:"date"`
	Status         string     `json:"status"`
	PreviousRoomID string     `json:"previous_room_id,omitempty"`
	PreviousDate   *time.Time `json:"previous_date,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

func New(eventType string, r model.Reservation) Event {
	return Event{
		Type:          eventType,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		UserID:        r.UserID,
		Date:          r.Date,
		Status:        r.Status,
		OccurredAt:    timezone.Now(),
	}
}

// Moved records where the reservation was before an update.
func (e Event) Moved(previous model.Reservation) Event {
	if previous.RoomID != e.RoomID || !previous.Date.Equal(e.Date) {
		date := previous.Date
		e.PreviousRoomID = previous.RoomID
		e.PreviousDate = &date
	}

	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
	Consume(ctx context.Context) error
}

type publisherImpl struct {
	cfg      *config.Config
	kafka    kafka.Client
	hub      realtime.Hub
	otel     otel.Otel
	location *time.Location
	groupID  string
}

// NewPublisher routes events through Kafka when enabled so every instance's hub sees them,
// and straight to the local hub otherwise.
func NewPublisher(cfg *config.Config, kafkaClient kafka.Client, hub realtime.Hub, otel otel.Otel) Publisher {
	return &publisherImpl{
		cfg:      cfg,
		kafka:    kafkaClient,
		hub:      hub,
		otel:     otel,
		location: timezone.LoadOrDefault(cfg.Booking.Timezone),
		groupID:  cfg.Kafka.ConsumerGroup + "-" + uuid.NewString(),
	}
}

func (p *publisherImpl) Publish(ctx context.Context, e Event) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".reservation.Publish")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"event.type":     e.Type,
		"reservation.id": e.ReservationID,
	})

	if !p.cfg.Kafka.Enable {
		p.notify(e)

		return
	}

	if err := p.kafka.SendMessages(ctx, p.cfg.Kafka.Topic.Reservation, kafka.Message{Key: e.RoomID, Value: e}); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("type", e.Type).Str("reservation", e.ReservationID).Msg("failed to publish reservation event")

		// local subscribers still get the update
		p.notify(e)
	}
}

// Consume relays events from Kafka to the local hub until ctx is done. It is a no-op when Kafka is disabled.
func (p *publisherImpl) Consume(ctx context.Context) error {
	if !p.cfg.Kafka.Enable {
		return nil
	}

	err := p.kafka.Consume(ctx, p.groupID, p.cfg.Kafka.Topic.Reservation, p.handle)
	if err != nil {
		return fmt.Errorf("failed to consume reservation events: %w", err)
	}

	return nil
}

func (p *publisherImpl) handle(ctx context.Context, msg kafkaGo.Message) error {
	_, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".reservation.Handle")
	defer scope.End()

	e, err := kafka.Decode[Event](msg)
	if err != nil {
		// undecodable messages are skipped, not retried
		log.Warn().Err(err).Str("key", string(msg.Key)).Msg("dropping malformed reservation event")

		return nil
	}

	p.notify(e)

	return nil
}

func (p *publisherImpl) notify(e Event) {
	p.broadcast(e.RoomID, e.Date)

	if e.PreviousDate != nil {
		p.broadcast(e.PreviousRoomID, *e.PreviousDate)
	}
}

func (p *publisherImpl) broadcast(roomID string, date time.Time) {
	day := date.In(p.location).Format(constant.DateOnlyFormat)

	if err := p.hub.Broadcast(availabilityModel.Topic(roomID, day), availabilityModel.NewSlotsUpdated(roomID, day)); err != nil {
		log.Error().Err(err).Str("room", roomID).Str("date", day).Msg("failed to broadcast slot update")
	}
}
