package tickets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/phpdave11/gofpdf"
)

const dateLayout = "02 Jan 2006"

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Render builds the e-ticket PDF for a booking and returns it with a download filename.
func Render(view models.BookingView) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("MakeMyDestiny E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MakeMyDestiny E-TICKET")
	pdf.Ln(12)

	destination, state, dates, duration := "-", "-", "-", "-"
	if view.Trip != nil {
		destination = safe(view.Trip.Destination, "-")
		state = safe(view.Trip.State, "-")
		dates = fmt.Sprintf("%s - %s", view.Trip.StartDate.Format(dateLayout), view.Trip.EndDate.Format(dateLayout))
		duration = safe(view.Trip.Duration, "-")
	}
	traveller := "-"
	if view.User != nil {
		traveller = fmt.Sprintf("%s <%s>", safe(view.User.Name, "-"), view.User.Email)
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", view.ID.Hex()),
		fmt.Sprintf("Booked by      : %s", traveller),
		fmt.Sprintf("Destination    : %s, %s", destination, state),
		fmt.Sprintf("Travel dates   : %s", dates),
		fmt.Sprintf("Duration       : %s", duration),
		fmt.Sprintf("Seats          : %d", view.SeatsBooked),
		fmt.Sprintf("Total amount   : Rs. %.2f", view.TotalAmount),
		fmt.Sprintf("Status         : %s (payment %s)", view.Status, view.PaymentStatus),
		fmt.Sprintf("Booked on      : %s", view.BookingDate.Format(dateLayout)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if len(view.TravellerDetails) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Travellers")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for i, t := range view.TravellerDetails {
			pdf.Cell(0, 6, fmt.Sprintf("%d) %s, %d, %s", i+1, safe(t.Name, "-"), t.Age, safe(t.Gender, "-")))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "Please carry a valid photo ID and show this ticket at departure."
	if view.Status == models.StatusCancelled {
		note = "This booking has been cancelled and the ticket is no longer valid."
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render ticket: %w", err)
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%s.pdf", view.ID.Hex()), nil
}
