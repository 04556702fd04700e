package tickets

import (
	"bytes"
	"testing"
	"time"

	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRender(t *testing.T) {
	start := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	view := models.BookingView{
		Booking: models.Booking{
			ID:               primitive.NewObjectID(),
			SeatsBooked:      2,
			TotalAmount:      9000,
			Status:           models.StatusBooked,
			PaymentStatus:    models.PaymentCompleted,
			BookingDate:      time.Now().UTC(),
			TravellerDetails: []models.Traveller{{Name: "Asha", Age: 30, Gender: "female"}},
		},
		Trip: &models.TripSummary{Destination: "Netarhat", State: "Jharkhand", StartDate: start, EndDate: start.AddDate(0, 0, 3), Duration: "4 Days"},
		User: &models.UserSummary{Name: "Asha", Email: "asha@example.com"},
	}

	pdf, filename, err := Render(view)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "ETICKET_"+view.ID.Hex()+".pdf", filename)
}

func TestRender_WithoutSummaries(t *testing.T) {
	pdf, _, err := Render(models.BookingView{Booking: models.Booking{ID: primitive.NewObjectID(), Status: models.StatusCancelled}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
