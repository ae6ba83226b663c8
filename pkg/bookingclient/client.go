// Package bookingclient is a Go client for the public booking API.
package bookingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/calendar"

	"github.com/sirupsen/logrus"
)

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("booking api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("booking api: %d: %s", e.StatusCode, e.Message)
}

// IsSlotTaken reports whether err is the API telling the caller that the
// requested slot was booked by someone else.
func IsSlotTaken(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "SLOT_TAKEN"
}

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// Calendar enables the offline fallback for AvailableDates. It must use
	// the same template and horizon as the server.
	Calendar *calendar.Calendar
	Log      *logrus.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	calendar   *calendar.Calendar
	log        *logrus.Logger
}

// AvailableDates is the list shown to patients. Fallback is set when the list
// was computed locally because the server could not be reached; such a list
// assumes every slot is free and is only a hint.
type AvailableDates struct {
	Dates    []dto.AvailableDateResponse
	Fallback bool
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("bookingclient: invalid base url %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		calendar:   cfg.Calendar,
		log:        log,
	}, nil
}

// AvailableDates fetches the bookable dates. When the request fails and a
// calendar is configured, a locally computed list is returned instead.
func (c *Client) AvailableDates(ctx context.Context) (*AvailableDates, error) {
	var dates []dto.AvailableDateResponse
	err := c.do(ctx, http.MethodGet, "/available-dates", nil, &dates)
	if err == nil {
		return &AvailableDates{Dates: dates}, nil
	}
	if c.calendar == nil || ctx.Err() != nil {
		return nil, err
	}

	c.log.WithError(err).Warn("Falling back to locally computed available dates")
	return &AvailableDates{Dates: c.fallbackDates(), Fallback: true}, nil
}

func (c *Client) fallbackDates() []dto.AvailableDateResponse {
	total := c.calendar.Template().Total()
	days := c.calendar.Window()
	dates := make([]dto.AvailableDateResponse, 0, len(days))
	for _, day := range days {
		dates = append(dates, dto.AvailableDateResponse{
			Date:           day.Format(calendar.DateLayout),
			Available:      total > 0,
			AvailableSlots: total,
		})
	}
	return dates
}

func (c *Client) AvailableSlots(ctx context.Context, date string) ([]string, error) {
	var slots []string
	if err := c.do(ctx, http.MethodGet, "/available-slots?date="+url.QueryEscape(date), nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Book submits a booking. Rejections come back as *APIError carrying the
// machine-readable code.
func (c *Client) Book(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	var appointment dto.AppointmentResponse
	if err := c.do(ctx, http.MethodPost, "/appointments", req, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("bookingclient: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("bookingclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bookingclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("bookingclient: decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("bookingclient: decode data: %w", err)
	}
	return nil
}
