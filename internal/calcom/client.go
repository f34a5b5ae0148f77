// Package calcom is a thin client for the Cal.com v2 scheduling API. It
// covers the three operations the relay needs: querying free slots for a
// date, creating a booking, and composing a direct booking-page link.
package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/celestialHunt/frontdesk/internal/config"
)

// apiVersion is the value of the cal-api-version header expected by the v2
// slots and bookings endpoints.
const apiVersion = "2024-09-04"

// requestTimeout bounds every outbound call. A single attempt is made; there
// is no retry.
const requestTimeout = 10 * time.Second

// ErrInvalidDateFormat is returned for dates that do not parse as YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("date must be YYYY-MM-DD")

// ErrPastDate is returned for dates earlier than the current date.
var ErrPastDate = errors.New("cannot query past dates")

// RequestError is a transport-level failure: the call never completed or its
// response could not be read. StatusCode is zero unless a response arrived
// before the failure.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("cal.com request failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("cal.com request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError is a completed call that the upstream answered with a non-success
// status or a non-success body. Body carries the raw upstream response.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cal.com api error (status %d)", e.StatusCode)
}

// Slot is a bookable time interval reported by the scheduling API.
type Slot struct {
	Start string `json:"start"`
}

// Availability is the normalized result of a slots query for one date.
type Availability struct {
	Date     string `json:"date"`
	TimeZone string `json:"timezone"`
	Slots    []Slot `json:"slots"`
}

// BookingRequest carries the fields sent to the bookings endpoint.
type BookingRequest struct {
	Start       string
	EventTypeID int
	Name        string
	Email       string
	TimeZone    string
}

// BookingResult is the outcome of a booking call that reached the upstream.
// Status is the status field reported in the response body, empty if the
// body could not be parsed.
type BookingResult struct {
	StatusCode int
	Status     string
	Body       json.RawMessage
}

// Confirmed reports whether the upstream both answered with a success HTTP
// status and reported success in the body.
func (r *BookingResult) Confirmed() bool {
	return (r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated) &&
		r.Status == "success"
}

// Client calls the Cal.com v2 API on behalf of one configured account.
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client for the account described by the configuration.
func NewClient(cfg config.CalCom) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		httpClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
	}
}

// slotsResponse is the wire shape of the v2 slots endpoint: slots grouped by
// date under the data key.
type slotsResponse struct {
	Status string            `json:"status"`
	Data   map[string][]Slot `json:"data"`
}

// CheckAvailability fetches the free slots for the given date. The date must
// be in YYYY-MM-DD format and must not lie in the past; both conditions are
// checked before any network call. The returned error is ErrInvalidDateFormat,
// ErrPastDate, a *RequestError or an *APIError.
func (c *Client) CheckAvailability(ctx context.Context, dateStr, eventTypeSlug, timeZone string) (*Availability, error) {
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	year, month, day := c.now().Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if parsed.Before(today) {
		return nil, ErrPastDate
	}

	params := url.Values{}
	params.Set("username", c.username)
	params.Set("eventTypeSlug", eventTypeSlug)
	params.Set("start", dateStr+"T00:00:00Z")
	params.Set("end", dateStr+"T23:59:59Z")
	params.Set("timeZone", timeZone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/slots?"+params.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	var slots slotsResponse
	if err := json.Unmarshal(body, &slots); err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if slots.Status != "success" {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	avail := &Availability{
		Date:     dateStr,
		TimeZone: timeZone,
		Slots:    slots.Data[dateStr],
	}
	if avail.Slots == nil {
		avail.Slots = []Slot{}
	}
	return avail, nil
}

// CreateBooking creates a booking for the given attendee and start time. A
// non-nil error means the call never completed; upstream rejections are
// reported through the BookingResult so that the caller can map them to
// outcome messages.
func (c *Client) CreateBooking(ctx context.Context, booking BookingRequest) (*BookingResult, error) {
	payload := map[string]interface{}{
		"start":       booking.Start,
		"eventTypeId": booking.EventTypeID,
		"attendee": map[string]string{
			"name":     booking.Name,
			"email":    booking.Email,
			"timeZone": booking.TimeZone,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/bookings", bytes.NewReader(encoded))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: err}
	}

	result := &BookingResult{StatusCode: resp.StatusCode, Body: body}
	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		result.Status = parsed.Status
	}
	return result, nil
}

// BookingLink composes a direct link to the booking page for a specific date
// and event type. No validation, no network call.
func (c *Client) BookingLink(dateStr, eventTypeSlug string) string {
	return fmt.Sprintf("%s/%s/%s?date=%s", c.baseURL, c.username, eventTypeSlug, dateStr)
}

// setHeaders applies the authorization and versioning headers required by
// the v2 API.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("cal-api-version", apiVersion)
	req.Header.Set("Accept", "application/json")
}
