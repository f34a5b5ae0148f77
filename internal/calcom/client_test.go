package calcom

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/celestialHunt/frontdesk/internal/config"
)

// newTestClient creates a client against the given test server with a fixed
// clock so that the past-date check does not depend on the wall clock.
func newTestClient(serverURL string) *Client {
	client := NewClient(config.CalCom{
		BaseURL:  serverURL,
		APIKey:   "cal_test_key",
		Username: "jane-doe",
	})
	client.now = func() time.Time {
		return time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	}
	return client
}

// TestCheckAvailabilityInvalidFormat expects an invalid-format error for a date that does not
// parse, without any network call being made.
func TestCheckAvailabilityInvalidFormat(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CheckAvailability(context.Background(), "not-a-date", "30min", "Asia/Kolkata")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
	assert.Equal(t, 0, requests)
}

// TestCheckAvailabilityPastDate expects an invalid-date error for a date in the past, without any
// network call being made.
func TestCheckAvailabilityPastDate(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CheckAvailability(context.Background(), "2020-01-01", "30min", "Asia/Kolkata")
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Equal(t, 0, requests)
}

// TestCheckAvailabilityToday expects that the current date itself is not rejected as past.
func TestCheckAvailabilityToday(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	avail, err := client.CheckAvailability(context.Background(), "2026-08-31", "30min", "Asia/Kolkata")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(avail.Slots))
}

// TestCheckAvailabilitySuccess expects that the slots query carries the right parameters and
// headers and that the slots for the requested date are returned.
func TestCheckAvailabilitySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/slots", r.URL.Path)
		assert.Equal(t, "jane-doe", r.URL.Query().Get("username"))
		assert.Equal(t, "30min", r.URL.Query().Get("eventTypeSlug"))
		assert.Equal(t, "2030-05-06T00:00:00Z", r.URL.Query().Get("start"))
		assert.Equal(t, "2030-05-06T23:59:59Z", r.URL.Query().Get("end"))
		assert.Equal(t, "Asia/Kolkata", r.URL.Query().Get("timeZone"))
		assert.Equal(t, "Bearer cal_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-09-04", r.Header.Get("cal-api-version"))
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"2030-05-06": [
					{"start": "2030-05-06T09:00:00.000Z"},
					{"start": "2030-05-06T09:30:00.000Z"}
				]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	avail, err := client.CheckAvailability(context.Background(), "2030-05-06", "30min", "Asia/Kolkata")
	assert.NoError(t, err)
	assert.Equal(t, "2030-05-06", avail.Date)
	assert.Equal(t, "Asia/Kolkata", avail.TimeZone)
	assert.Equal(t, 2, len(avail.Slots))
	assert.Equal(t, "2030-05-06T09:00:00.000Z", avail.Slots[0].Start)
}

// TestCheckAvailabilityUpstreamStatus expects an api error carrying the raw upstream body when
// the upstream answers with a non-success HTTP status.
func TestCheckAvailabilityUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status": "error", "message": "boom"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CheckAvailability(context.Background(), "2030-05-06", "30min", "Asia/Kolkata")
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, string(apiErr.Body), "boom")
}

// TestCheckAvailabilityUpstreamBody expects an api error when the upstream answers 200 but
// reports a non-success status in the body.
func TestCheckAvailabilityUpstreamBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "data": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CheckAvailability(context.Background(), "2030-05-06", "30min", "Asia/Kolkata")
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

// TestCheckAvailabilityTransportError expects a request error when the upstream is unreachable.
func TestCheckAvailabilityTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // shut down before the call

	client := newTestClient(server.URL)
	_, err := client.CheckAvailability(context.Background(), "2030-05-06", "30min", "Asia/Kolkata")
	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.StatusCode)
}

// TestCreateBookingConfirmed expects that the booking request carries the attendee fields and
// that a 201 with a success body is reported as confirmed.
func TestCreateBookingConfirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/bookings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		assert.Equal(t, "2030-05-06T09:00:00Z", payload["start"])
		assert.Equal(t, 4711.0, payload["eventTypeId"])
		attendee := payload["attendee"].(map[string]interface{})
		assert.Equal(t, "Jane Doe", attendee["name"])
		assert.Equal(t, "jane.doe@example.com", attendee["email"])
		assert.Equal(t, "Asia/Kolkata", attendee["timeZone"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.CreateBooking(context.Background(), BookingRequest{
		Start:       "2030-05-06T09:00:00Z",
		EventTypeID: 4711,
		Name:        "Jane Doe",
		Email:       "jane.doe@example.com",
		TimeZone:    "Asia/Kolkata",
	})
	assert.NoError(t, err)
	assert.True(t, result.Confirmed())
}

// TestCreateBookingRejectedBody expects that a 200 with a non-success body is not reported as
// confirmed.
func TestCreateBookingRejectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "slot taken"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.CreateBooking(context.Background(), BookingRequest{Start: "2030-05-06T09:00:00Z"})
	assert.NoError(t, err)
	assert.False(t, result.Confirmed())
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

// TestCreateBookingUpstreamStatus expects that a non-success HTTP status is reported through the
// result, not as a transport error.
func TestCreateBookingUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": "error", "message": "invalid start"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.CreateBooking(context.Background(), BookingRequest{Start: "yesterday"})
	assert.NoError(t, err)
	assert.False(t, result.Confirmed())
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}

// TestCreateBookingTransportError expects a request error when the upstream is unreachable.
func TestCreateBookingTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateBooking(context.Background(), BookingRequest{Start: "2030-05-06T09:00:00Z"})
	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
}

// TestBookingLink expects the direct booking-page URL for a date and event type.
func TestBookingLink(t *testing.T) {
	client := NewClient(config.CalCom{
		BaseURL:  "https://cal.com",
		APIKey:   "cal_test_key",
		Username: "jane-doe",
	})
	link := client.BookingLink("2026-02-10", "45min")
	assert.Equal(t, "https://cal.com/jane-doe/45min?date=2026-02-10", link)
	assert.Contains(t, link, "45min")
	assert.Contains(t, link, "date=2026-02-10")
}
