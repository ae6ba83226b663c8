package bookingclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/calendar"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCalendar() *calendar.Calendar {
	// Monday 2026-10-19
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return calendar.New(time.UTC, calendar.DefaultTemplate(), 7, func() time.Time { return now })
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAvailableDatesFromServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/available-dates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": []dto.AvailableDateResponse{
				{Date: "2026-10-19", Available: true, AvailableSlots: 7, AppointmentCount: 3},
			},
		})
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL + "/api/v1/", Calendar: testCalendar(), Log: quietLogger()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	got, err := client.AvailableDates(context.Background())
	if err != nil {
		t.Fatalf("available dates: %v", err)
	}
	if got.Fallback {
		t.Fatal("server answer must not be marked as fallback")
	}
	if len(got.Dates) != 1 || got.Dates[0].AppointmentCount != 3 {
		t.Fatalf("unexpected dates %+v", got.Dates)
	}
}

func TestAvailableDatesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"code":    "STORAGE_UNAVAILABLE",
		})
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL, Calendar: testCalendar(), Log: quietLogger()})

	got, err := client.AvailableDates(context.Background())
	if err != nil {
		t.Fatalf("expected fallback, got error %v", err)
	}
	if !got.Fallback {
		t.Fatal("expected fallback flag")
	}
	// Mon 19 .. Mon 26 without the weekend.
	if len(got.Dates) != 6 {
		t.Fatalf("expected 6 business days, got %d", len(got.Dates))
	}
	for _, d := range got.Dates {
		if d.AvailableSlots != 10 || d.AppointmentCount != 0 || !d.Available {
			t.Fatalf("fallback must assume a free day, got %+v", d)
		}
	}

	withoutCalendar, _ := New(Config{BaseURL: server.URL, Log: quietLogger()})
	if _, err := withoutCalendar.AvailableDates(context.Background()); err == nil {
		t.Fatal("expected an error without a calendar to fall back on")
	}
}

func TestBookSlotTaken(t *testing.T) {
	var received dto.CreateAppointmentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&received)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"code":    "SLOT_TAKEN",
			"message": "this time slot is already booked, please choose another",
		})
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL, Log: quietLogger()})

	_, err := client.Book(context.Background(), &dto.CreateAppointmentRequest{
		PatientName: "Ahmad Ali", PhoneNumber: "0991234567", AppointmentDate: "2026-10-20", AppointmentTime: "09:00",
	})
	if !IsSlotTaken(err) {
		t.Fatalf("expected SLOT_TAKEN, got %v", err)
	}
	if received.PatientName != "Ahmad Ali" || received.AppointmentTime != "09:00" {
		t.Fatalf("unexpected request body %+v", received)
	}
}

func TestAvailableSlots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "2026-10-20" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "code": "INVALID_DATE"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": []string{"09:30", "10:00"}})
	}))
	defer server.Close()

	client, _ := New(Config{BaseURL: server.URL, Log: quietLogger()})

	slots, err := client.AvailableSlots(context.Background(), "2026-10-20")
	if err != nil || len(slots) != 2 || slots[0] != "09:30" {
		t.Fatalf("unexpected slots %v (%v)", slots, err)
	}

	_, err = client.AvailableSlots(context.Background(), "nope")
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Code != "INVALID_DATE" || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected INVALID_DATE api error, got %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url"}); err == nil {
		t.Fatal("expected invalid base url error")
	}
}
