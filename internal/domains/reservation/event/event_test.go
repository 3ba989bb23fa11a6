package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/kafka"
	kafkaMocks "roombook/infras/kafka/mocks"
	otelMocks "roombook/infras/otel/mocks"
	realtimeMocks "roombook/infras/realtime/mocks"
	availabilityModel "roombook/internal/domains/availability/model"
	"roombook/internal/domains/reservation/event"
	"roombook/internal/domains/reservation/model"
)

var testDate = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testReservation() model.Reservation {
	return model.Reservation{
		ID:     "res-1",
		RoomID: "room-1",
		UserID: "user-a",
		Date:   testDate,
		Status: model.StatusConfirmed,
	}
}

func newConfig(kafkaEnabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Booking.Timezone = "UTC"
	cfg.Kafka.Enable = kafkaEnabled
	cfg.Kafka.ConsumerGroup = "roombook"
	cfg.Kafka.Topic.Reservation = "reservation-events"

	return cfg
}

func TestEvent_Moved(t *testing.T) {
	current := testReservation()

	t.Run("same room and instant", func(t *testing.T) {
		e := event.New(event.TypeUpdated, current).Moved(current)

		assert.Empty(t, e.PreviousRoomID)
		assert.Nil(t, e.PreviousDate)
	})

	t.Run("moved to another day", func(t *testing.T) {
		previous := current
		previous.Date = testDate.AddDate(0, 0, -1)

		e := event.New(event.TypeUpdated, current).Moved(previous)

		assert.Equal(t, "room-1", e.PreviousRoomID)
		require.NotNil(t, e.PreviousDate)
		assert.True(t, e.PreviousDate.Equal(previous.Date))
	})
}

func TestPublisher_PublishWithoutKafka(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := realtimeMocks.NewMockHub(ctrl)
	client := kafkaMocks.NewMockClient(ctrl)

	publisher := event.NewPublisher(newConfig(false), client, hub, otelMocks.NewOtel())

	hub.EXPECT().
		Broadcast(availabilityModel.Topic("room-1", "2024-01-15"), availabilityModel.NewSlotsUpdated("room-1", "2024-01-15")).
		Return(nil)

	publisher.Publish(context.Background(), event.New(event.TypeCreated, testReservation()))
}

func TestPublisher_PublishMovedNotifiesBothDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	hub := realtimeMocks.NewMockHub(ctrl)

	publisher := event.NewPublisher(newConfig(false), kafkaMocks.NewMockClient(ctrl), hub, otelMocks.NewOtel())

	previous := testReservation()
	previous.RoomID = "room-2"

	hub.EXPECT().Broadcast("slots:room-1:2024-01-15", gomock.Any()).Return(nil)
	hub.EXPECT().Broadcast("slots:room-2:2024-01-15", gomock.Any()).Return(nil)

	publisher.Publish(context.Background(), event.New(event.TypeUpdated, testReservation()).Moved(previous))
}

func TestPublisher_PublishWithKafka(t *testing.T) {
	t.Run("sends to the reservation topic keyed by room", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)

		publisher := event.NewPublisher(newConfig(true), client, realtimeMocks.NewMockHub(ctrl), otelMocks.NewOtel())

		client.EXPECT().
			SendMessages(gomock.Any(), "reservation-events", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				require.Len(t, messages, 1)
				assert.Equal(t, "room-1", messages[0].Key)

				e, ok := messages[0].Value.(event.Event)
				require.True(t, ok)
				assert.Equal(t, event.TypeCancelled, e.Type)

				return nil
			})

		publisher.Publish(context.Background(), event.New(event.TypeCancelled, testReservation()))
	})

	t.Run("send failure falls back to the local hub", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)
		hub := realtimeMocks.NewMockHub(ctrl)

		publisher := event.NewPublisher(newConfig(true), client, hub, otelMocks.NewOtel())

		client.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
		hub.EXPECT().Broadcast("slots:room-1:2024-01-15", gomock.Any()).Return(nil)

		publisher.Publish(context.Background(), event.New(event.TypeDeleted, testReservation()))
	})
}

func TestPublisher_Consume(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		publisher := event.NewPublisher(newConfig(false), kafkaMocks.NewMockClient(ctrl), realtimeMocks.NewMockHub(ctrl), otelMocks.NewOtel())

		assert.NoError(t, publisher.Consume(context.Background()))
	})

	t.Run("relays events to the hub", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)
		hub := realtimeMocks.NewMockHub(ctrl)

		publisher := event.NewPublisher(newConfig(true), client, hub, otelMocks.NewOtel())

		payload, err := json.Marshal(event.New(event.TypeCreated, testReservation()))
		require.NoError(t, err)

		client.EXPECT().
			Consume(gomock.Any(), gomock.Any(), "reservation-events", gomock.Any()).
			DoAndReturn(func(ctx context.Context, groupID, _ string, handler kafka.Handler) error {
				assert.Contains(t, groupID, "roombook-")

				assert.NoError(t, handler(ctx, kafkaGo.Message{Key: []byte("room-1"), Value: payload}))
				assert.NoError(t, handler(ctx, kafkaGo.Message{Key: []byte("room-1"), Value: []byte("{not json")}))

				return nil
			})
		hub.EXPECT().Broadcast("slots:room-1:2024-01-15", gomock.Any()).Return(nil)

		assert.NoError(t, publisher.Consume(context.Background()))
	})
}
