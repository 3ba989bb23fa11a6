package kafka

import (
	"testing"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
}

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{Key: "room-1", Value: payload{RoomID: "room-1", Date: "2024-01-15"}}

	raw, err := msg.toKafkaMessage("reservation-events")
	require.NoError(t, err)
	assert.Equal(t, "reservation-events", raw.Topic)
	assert.Equal(t, []byte("room-1"), raw.Key)
	assert.JSONEq(t, `{"room_id":"room-1","date":"2024-01-15"}`, string(raw.Value))

	decoded, err := Decode[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, payload{RoomID: "room-1", Date: "2024-01-15"}, decoded)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode[payload](kafkaGo.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestUnmarshalableValue(t *testing.T) {
	msg := Message{Key: "k", Value: make(chan int)}

	_, err := msg.toKafkaMessage("t")
	assert.Error(t, err)
}
