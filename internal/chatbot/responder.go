package chatbot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
)

// Intent is the category a message is classified into.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentBooking      Intent = "booking"
	IntentCancel       Intent = "cancel"
	IntentPrice        Intent = "price"
	IntentJharkhand    Intent = "jharkhand"
	IntentDestinations Intent = "destinations"
	IntentDiscount     Intent = "discount"
	IntentContact      Intent = "contact"
	IntentHelp         Intent = "help"
	IntentDefault      Intent = "default"
)

// shortcuts maps the menu numbers "1".."6".
var shortcuts = map[string]Intent{
	"1": IntentDestinations,
	"2": IntentBooking,
	"3": IntentCancel,
	"4": IntentPrice,
	"5": IntentJharkhand,
	"6": IntentDiscount,
}

var replies = map[Intent]string{
	IntentGreeting: "Hello! Welcome to MakeMyDestiny!\n\nI can help you with:\n1. View Destinations\n2. Booking Process\n" +
		"3. Cancellation Policy\n4. Pricing Info\n5. Jharkhand Places\n6. Group Discounts\n\nJust type the number or ask your question!",
	IntentBooking: "How to book a trip:\n\n1. Browse trips on our website\n2. Select your destination\n3. Choose number of seats\n" +
		"4. Fill traveller details\n5. Confirm booking\n\nNeed help with a specific destination?",
	IntentCancel: "Cancellation policy:\n\n- Free cancellation up to 48 hours before travel\n- Full refund within 5-7 business days\n\n" +
		"To cancel: go to 'My Bookings', select the booking and click 'Cancel'.",
	IntentPrice: "Our pricing:\n\nHill Stations: Rs. 8,000 - 15,000\nBeach Destinations: Rs. 10,000 - 25,000\n" +
		"Religious Places: Rs. 5,000 - 12,000\nHeritage Sites: Rs. 7,000 - 18,000\n\n" +
		"Prices include transport, accommodation and meals. Check the trips page for exact pricing.",
	IntentJharkhand: "Jharkhand destinations:\n\n1. Netarhat, the hill station queen\n2. Baidyanath Dham, Deoghar\n3. Hundru Falls, Ranchi\n" +
		"4. Betla National Park\n5. Tagore Hill, Ranchi\n6. Parasnath Hills\n\nWhich one interests you?",
	IntentDestinations: "Popular destinations:\n\n1. Manali, Himachal\n2. Goa Beaches\n3. Kerala Backwaters\n4. Varanasi\n" +
		"5. Jaipur, Rajasthan\n6. Darjeeling\n\nBrowse the trips page for dates and seats.",
	IntentDiscount: "Group discounts:\n\n- 10-15 people: 10% off\n- 16-25 people: 15% off\n- 25+ people: 20% off\n\n" +
		"Contact us for custom group packages!",
	IntentContact: "Contact us:\n\nEmail: support@makemydestiny.com\nLocation: Ranchi, Jharkhand\nHours: Mon-Sat, 9AM-6PM",
	IntentHelp: "I'm your travel assistant!\n\nQuick commands:\n1 - View all destinations\n2 - How to book\n3 - Cancellation policy\n" +
		"4 - Pricing information\n5 - Jharkhand places\n6 - Group discounts\n\nOr just ask me anything about travel!",
	IntentDefault: "I'm here to help! Try:\n\n- Type 1-6 for quick info\n- Ask about destinations\n- Inquire about bookings\n" +
		"- Check prices\n\nWhat would you like to know?",
}

type rule struct {
	pattern *regexp.Regexp
	intent  Intent
}

// FAQ is one entry of the static FAQ list.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faqs = []FAQ{
	{Question: "How do I book a trip?", Answer: "Browse trips, select destination, choose seats, fill details, and confirm booking."},
	{Question: "What is the cancellation policy?", Answer: "Free cancellation up to 48 hours before travel. Full refund within 5-7 days."},
	{Question: "Which places in Jharkhand do you cover?", Answer: "Netarhat, Deoghar, Betla National Park, Hundru Falls, Ranchi, and more!"},
	{Question: "Are group discounts available?", Answer: "Yes! Groups of 10+ get 10-20% discount based on size."},
	{Question: "What's included in the package?", Answer: "Transportation, accommodation, meals, and guided tours."},
}

// TripCounter reports how many trips are currently bookable.
type TripCounter interface {
	CountActiveTrips(ctx context.Context) (int64, error)
}

// Reply is the responder's answer to one message.
type Reply struct {
	Text   string
	Intent Intent
}

// Responder maps messages to canned replies. It keeps no conversation state.
type Responder struct {
	rules   []rule
	counter TripCounter
	log     *logrus.Entry
}

// NewResponder compiles the keyword rules once. Order matters: the first match wins.
func NewResponder(counter TripCounter, log *logrus.Entry) *Responder {
	return &Responder{
		rules: []rule{
			{regexp.MustCompile(`hi|hello|hey|namaste|good morning|good evening`), IntentGreeting},
			{regexp.MustCompile(`book|booking|reserve|reservation|how to book`), IntentBooking},
			{regexp.MustCompile(`cancel|cancellation|refund`), IntentCancel},
			{regexp.MustCompile(`price|cost|fare|rate|how much`), IntentPrice},
			{regexp.MustCompile(`jharkhand|ranchi|netarhat|deoghar|betla`), IntentJharkhand},
			{regexp.MustCompile(`destination|place|location|where|show|available trips`), IntentDestinations},
			{regexp.MustCompile(`discount|group|offer`), IntentDiscount},
			{regexp.MustCompile(`contact|phone|email|call`), IntentContact},
			{regexp.MustCompile(`help|assist|support`), IntentHelp},
		},
		counter: counter,
		log:     log.WithField("component", "chatbot"),
	}
}

// DetectIntent classifies a message without side effects.
func (r *Responder) DetectIntent(message string) Intent {
	msg := strings.ToLower(strings.TrimSpace(message))
	if intent, ok := shortcuts[msg]; ok {
		return intent
	}
	for _, rl := range r.rules {
		if rl.pattern.MatchString(msg) {
			return rl.intent
		}
	}
	return IntentDefault
}

// Respond answers a message. Questions containing "how many" get the live trip count.
func (r *Responder) Respond(ctx context.Context, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, models.Validationf("Please provide a message")
	}

	intent := r.DetectIntent(message)
	text := replies[intent]

	if strings.Contains(strings.ToLower(message), "how many") {
		count, err := r.counter.CountActiveTrips(ctx)
		if err != nil {
			r.log.WithError(err).Warn("active trip count unavailable")
			text = replies[IntentDestinations]
		} else {
			text = fmt.Sprintf("We currently have %d amazing trips available!\n\nType '1' to see all destinations!", count)
		}
	}
	return Reply{Text: text, Intent: intent}, nil
}

// FAQs returns the static FAQ list.
func (r *Responder) FAQs() []FAQ {
	out := make([]FAQ, len(faqs))
	copy(out, faqs)
	return out
}
