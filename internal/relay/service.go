// Package relay implements the voice-assistant webhook endpoints. It
// translates Vapi tool-call envelopes into Cal.com availability and booking
// calls and renders the outcome as natural language for the voice platform.
//
// Every tool-call outcome, success or failure, travels back inside a
// 200-shaped results envelope; that is the contract with the voice platform.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celestialHunt/frontdesk/internal/calcom"
	"github.com/celestialHunt/frontdesk/internal/config"
)

// maxSpokenSlots caps how many slots are read out per availability answer.
const maxSpokenSlots = 5

// slotLength is the length of a bookable slot. Slot descriptors from the
// upstream only carry a start time; the spoken end time is derived from it.
const slotLength = 30 * time.Minute

// ToolCall is one entry of the envelope a voice-assistant platform sends to
// invoke a named function.
type ToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	} `json:"function"`
}

// toolCallEnvelope is the inbound wire shape of a Vapi webhook request.
type toolCallEnvelope struct {
	Message struct {
		ToolCalls []ToolCall `json:"toolCalls"`
	} `json:"message"`
}

// toolCallResult is one outcome, correlated to its tool call.
type toolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// Service holds the relay's configuration and its scheduling API client.
// The relay keeps no state of its own; every request is self-contained.
type Service struct {
	cfg    config.CalCom
	client *calcom.Client
}

// NewService creates the relay service for the given scheduling API account.
func NewService(cfg config.CalCom) *Service {
	return &Service{cfg: cfg, client: calcom.NewClient(cfg)}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Service) SetupHttpRouter() *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	router.GET("/availability/:date", s.availability)
	vapi := router.Group("/vapi")
	vapi.POST("/check-availability", s.checkAvailability)
	vapi.POST("/book-appointment", s.bookAppointment)
	return router
}

// availability returns the structured availability for a date together with
// a direct booking-page link.
//
// Example REST API call:
//
//	> curl "http://localhost:8081/availability/2026-02-10"
func (s *Service) availability(c *gin.Context) {
	date := c.Param("date")
	avail, err := s.client.CheckAvailability(c.Request.Context(), date, s.cfg.EventSlug, s.cfg.TimeZone)
	c.IndentedJSON(http.StatusOK, gin.H{
		"date":                date,
		"availability":        availabilityPayload(avail, err),
		"direct_booking_link": s.client.BookingLink(date, s.cfg.EventSlug),
	})
}

// availabilityPayload normalizes a slots query outcome into the wire shape
// of the availability endpoint. Errors become structured objects, never a
// non-200 response.
func availabilityPayload(avail *calcom.Availability, err error) gin.H {
	switch {
	case err == nil:
		return gin.H{
			"status":   "success",
			"date":     avail.Date,
			"slots":    avail.Slots,
			"timezone": avail.TimeZone,
		}
	case errors.Is(err, calcom.ErrInvalidDateFormat):
		return gin.H{"error": "invalid_date_format", "message": "Date must be YYYY-MM-DD"}
	case errors.Is(err, calcom.ErrPastDate):
		return gin.H{"error": "invalid_date", "message": "Cannot query past dates"}
	}
	var apiErr *calcom.APIError
	if errors.As(err, &apiErr) {
		return gin.H{"status": "api_error", "data": rawOrString(apiErr.Body)}
	}
	var reqErr *calcom.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return gin.H{"error": "request_failed", "message": err.Error(), "status_code": reqErr.StatusCode}
	}
	return gin.H{"error": "request_failed", "message": err.Error()}
}

// rawOrString embeds an upstream body verbatim when it is valid JSON and as
// a plain string otherwise.
func rawOrString(body []byte) interface{} {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// checkAvailability answers a Vapi check-availability tool call with a
// spoken-style summary of the free slots on the requested date.
func (s *Service) checkAvailability(c *gin.Context) {
	calls, ok := bindToolCalls(c)
	if !ok {
		return
	}
	results := make([]toolCallResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, toolCallResult{
			ToolCallID: call.ID,
			Result:     s.availabilityMessage(c.Request.Context(), call),
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// availabilityMessage runs the availability query for one tool call and
// renders the outcome as prose.
func (s *Service) availabilityMessage(ctx context.Context, call ToolCall) string {
	date := stringArg(call.Function.Arguments, "date")
	if date == "" {
		return "Please tell me which date you would like to check."
	}
	timeZone := stringArg(call.Function.Arguments, "timezone")
	if timeZone == "" {
		timeZone = s.cfg.TimeZone
	}
	avail, err := s.client.CheckAvailability(ctx, date, s.cfg.EventSlug, timeZone)
	switch {
	case errors.Is(err, calcom.ErrInvalidDateFormat):
		return "I could not understand that date. Please give me the year, month and day."
	case errors.Is(err, calcom.ErrPastDate):
		return "That date is in the past. Please pick an upcoming date."
	case err != nil:
		return "Sorry, I could not reach the calendar right now. Please try again in a moment."
	}
	return renderSlots(avail)
}

// renderSlots turns the slot list into a single spoken sentence of at most
// maxSpokenSlots start-end ranges.
func renderSlots(avail *calcom.Availability) string {
	ranges := make([]string, 0, maxSpokenSlots)
	for _, slot := range avail.Slots {
		if len(ranges) == maxSpokenSlots {
			break
		}
		start, err := time.Parse(time.RFC3339, slot.Start)
		if err != nil {
			continue
		}
		ranges = append(ranges, fmt.Sprintf("%s to %s",
			start.Format("03:04 PM"), start.Add(slotLength).Format("03:04 PM")))
	}
	if len(ranges) == 0 {
		return fmt.Sprintf("There are no slots available on %s.", avail.Date)
	}
	return fmt.Sprintf("These are the open 30-minute slots on %s: %s.",
		avail.Date, strings.Join(ranges, ", "))
}

// bookAppointment answers a Vapi book-appointment tool call by creating a
// booking and reporting the outcome as prose.
func (s *Service) bookAppointment(c *gin.Context) {
	calls, ok := bindToolCalls(c)
	if !ok {
		return
	}
	results := make([]toolCallResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, toolCallResult{
			ToolCallID: call.ID,
			Result:     s.bookingMessage(c.Request.Context(), call),
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// bookingMessage validates the attendee fields of one tool call, issues the
// booking request, and renders the outcome. Validation failures are reported
// as prose without any outbound call.
func (s *Service) bookingMessage(ctx context.Context, call ToolCall) string {
	name := stringArg(call.Function.Arguments, "name")
	if name == "" {
		name = "Customer"
	}
	email := NormalizeSpokenEmail(stringArg(call.Function.Arguments, "email"))
	if !validEmail(email) {
		return "The email address I heard does not seem right. Could you spell it out again, please?"
	}
	start := stringArg(call.Function.Arguments, "time")
	if start == "" {
		return "What time would you like to book? Please give me a date and time."
	}

	result, err := s.client.CreateBooking(ctx, calcom.BookingRequest{
		Start:       start,
		EventTypeID: s.cfg.EventTypeID,
		Name:        name,
		Email:       email,
		TimeZone:    s.cfg.TimeZone,
	})
	if err != nil {
		return "I ran into a technical issue while booking. Please try again in a moment."
	}
	switch {
	case result.Confirmed():
		return fmt.Sprintf("Your appointment is booked for %s. A confirmation email is on its way to %s.",
			start, email)
	case result.StatusCode == http.StatusOK || result.StatusCode == http.StatusCreated:
		return "I am sorry, the booking could not be completed. Please try another time."
	default:
		return fmt.Sprintf("I am sorry, the booking failed with status %d. Please try again later.",
			result.StatusCode)
	}
}

// bindToolCalls parses the inbound envelope and rejects requests without any
// tool-call entries. The absence condition is a structured 400, not prose;
// there is no tool call to correlate a message to.
func bindToolCalls(c *gin.Context) ([]ToolCall, bool) {
	var envelope toolCallEnvelope
	if err := c.BindJSON(&envelope); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return nil, false
	}
	if len(envelope.Message.ToolCalls) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no tool calls found"})
		return nil, false
	}
	return envelope.Message.ToolCalls, true
}

// stringArg reads a string-typed entry from a tool call's arguments map.
func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}
