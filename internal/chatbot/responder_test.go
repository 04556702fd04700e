package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	count int64
	err   error
	calls int
}

func (s *stubCounter) CountActiveTrips(context.Context) (int64, error) {
	s.calls++
	return s.count, s.err
}

func newResponder(counter TripCounter) *Responder {
	logger, _ := test.NewNullLogger()
	return NewResponder(counter, logrus.NewEntry(logger))
}

func TestDetectIntent(t *testing.T) {
	r := newResponder(&stubCounter{})

	tests := []struct {
		message string
		want    Intent
	}{
		{"1", IntentDestinations},
		{" 2 ", IntentBooking},
		{"3", IntentCancel},
		{"4", IntentPrice},
		{"5", IntentJharkhand},
		{"6", IntentDiscount},
		{"7", IntentDefault},
		{"Hello there", IntentGreeting},
		{"I want to make a reservation", IntentBooking},
		{"Can I get a refund?", IntentCancel},
		{"What does it cost", IntentPrice},
		{"Trips to Netarhat", IntentJharkhand},
		{"Show me a destination", IntentDestinations},
		{"any offer for a group", IntentDiscount},
		{"email address please", IntentContact},
		{"SUPPORT", IntentHelp},
		{"xyz", IntentDefault},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DetectIntent(tt.message))
		})
	}
}

func TestDetectIntent_FirstMatchWins(t *testing.T) {
	r := newResponder(&stubCounter{})
	// matches both greeting and booking; greeting is listed first
	assert.Equal(t, IntentGreeting, r.DetectIntent("hello, I want to book"))
	assert.Equal(t, r.DetectIntent("1"), r.DetectIntent("popular destinations"))
}

func TestRespond_HowMany(t *testing.T) {
	counter := &stubCounter{count: 17}
	r := newResponder(counter)

	reply, err := r.Respond(context.Background(), "How many trips are available?")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "17")
	assert.Equal(t, 1, counter.calls)

	reply, err = r.Respond(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, IntentGreeting, reply.Intent)
	assert.Equal(t, replies[IntentGreeting], reply.Text)
	assert.Equal(t, 1, counter.calls)
}

func TestRespond_HowManyCountFails(t *testing.T) {
	r := newResponder(&stubCounter{err: errors.New("db down")})

	reply, err := r.Respond(context.Background(), "how many trips?")
	require.NoError(t, err)
	assert.Equal(t, replies[IntentDestinations], reply.Text)
}

func TestRespond_EmptyMessage(t *testing.T) {
	r := newResponder(&stubCounter{})
	for _, msg := range []string{"", "   "} {
		_, err := r.Respond(context.Background(), msg)
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.EqualError(t, err, "Please provide a message")
	}
}

func TestFAQs(t *testing.T) {
	r := newResponder(&stubCounter{})
	list := r.FAQs()
	require.Len(t, list, 5)
	list[0].Question = "changed"
	assert.NotEqual(t, "changed", r.FAQs()[0].Question)
}
