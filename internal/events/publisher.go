package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// Booking event types.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
)

const publishTimeout = 5 * time.Second

// Publisher announces committed booking changes.
type Publisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

// MQTTPublisher publishes booking events as JSON to an MQTT broker.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	log         *logrus.Entry
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg config.MQTTConfig, log *logrus.Entry) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return NewMQTTPublisherWithClient(client, cfg.TopicPrefix, log), nil
}

// NewMQTTPublisherWithClient wraps an already connected client.
func NewMQTTPublisherWithClient(client mqtt.Client, topicPrefix string, log *logrus.Entry) *MQTTPublisher {
	return &MQTTPublisher{client: client, topicPrefix: strings.TrimSuffix(topicPrefix, "/"), log: log}
}

// Topic is where events of eventType are published, e.g. "<prefix>/cancelled".
func (p *MQTTPublisher) Topic(eventType string) string {
	return p.topicPrefix + "/" + strings.TrimPrefix(eventType, "booking.")
}

// Publish sends event with QoS 1 and waits for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, event models.BookingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	topic := p.Topic(event.Type)
	token := p.client.Publish(topic, 1, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.log.WithFields(logrus.Fields{"topic": topic, "booking_id": event.BookingID}).Debug("booking event published")
	return nil
}

// Connected reports whether the client currently holds a broker connection.
func (p *MQTTPublisher) Connected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker after in-flight work drains.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// Nop drops events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.BookingEvent) error { return nil }
