package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes; the embedded interface panics on anything else.
type fakeClient struct {
	mqtt.Client
	err  error
	sent []published
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(c.err)
}

func testLog() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	publisher := NewMQTTPublisherWithClient(client, "makemydestiny/bookings/", testLog())

	event := models.BookingEvent{
		Type:        BookingCancelled,
		BookingID:   "b1",
		TripID:      "t1",
		UserID:      "u1",
		Seats:       3,
		TotalAmount: 3000,
		OccurredAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, client.sent, 1)
	assert.Equal(t, "makemydestiny/bookings/cancelled", client.sent[0].topic)
	assert.Equal(t, byte(1), client.sent[0].qos)

	var decoded models.BookingEvent
	require.NoError(t, json.Unmarshal(client.sent[0].payload, &decoded))
	assert.Equal(t, event.BookingID, decoded.BookingID)
	assert.Equal(t, event.Seats, decoded.Seats)
	assert.Equal(t, event.TotalAmount, decoded.TotalAmount)
	assert.True(t, event.OccurredAt.Equal(decoded.OccurredAt))
}

func TestMQTTPublisher_PublishError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	publisher := NewMQTTPublisherWithClient(client, "bookings", testLog())

	err := publisher.Publish(context.Background(), models.BookingEvent{Type: BookingCreated})
	assert.ErrorContains(t, err, "bookings/created")
}

func TestTopic(t *testing.T) {
	publisher := NewMQTTPublisherWithClient(&fakeClient{}, "a/b", testLog())
	assert.Equal(t, "a/b/created", publisher.Topic(BookingCreated))
	assert.Equal(t, "a/b/updated", publisher.Topic(BookingUpdated))
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), models.BookingEvent{Type: BookingCreated}))
}

// Integration test (requires running MQTT broker)
func TestNewMQTTPublisher_Integration(t *testing.T) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		t.Skip("MQTT_BROKER not set, skipping integration test")
	}
	publisher, err := NewMQTTPublisher(config.MQTTConfig{
		Broker:      broker,
		ClientID:    "makemydestiny-test",
		TopicPrefix: "makemydestiny/test",
	}, testLog())
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer publisher.Close()

	assert.True(t, publisher.Connected())
	assert.NoError(t, publisher.Publish(context.Background(), models.BookingEvent{Type: BookingCreated, BookingID: "x"}))
}
