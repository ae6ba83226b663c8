package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/metrics"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// bookingError binds a usecase error kind to the code clients match on.
type bookingError struct {
	err    error
	status int
	code   string
}

var bookingErrors = []bookingError{
	{usecase.ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS"},
	{usecase.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
	{usecase.ErrPastDate, http.StatusBadRequest, "PAST_DATE"},
	{usecase.ErrWeekendNotBookable, http.StatusBadRequest, "WEEKEND_NOT_BOOKABLE"},
	{usecase.ErrOutsideBusinessHours, http.StatusBadRequest, "OUTSIDE_BUSINESS_HOURS"},
	{usecase.ErrInvalidName, http.StatusBadRequest, "INVALID_NAME"},
	{usecase.ErrInvalidPhone, http.StatusBadRequest, "INVALID_PHONE"},
	{usecase.ErrNotesTooLong, http.StatusBadRequest, "NOTES_TOO_LONG"},
	{usecase.ErrSlotTaken, http.StatusBadRequest, "SLOT_TAKEN"},
	{usecase.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{usecase.ErrInvalidRange, http.StatusBadRequest, "INVALID_RANGE"},
	{usecase.ErrAppointmentNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// writeUsecaseError maps a usecase error to a response. Unknown errors are
// reported as STORAGE_UNAVAILABLE; the underlying detail is only exposed when
// debug is set.
func writeUsecaseError(w http.ResponseWriter, log *logrus.Logger, debug bool, err error) string {
	for _, be := range bookingErrors {
		if errors.Is(err, be.err) {
			response.ErrorWithCode(w, be.status, be.code, err.Error(), nil)
			return be.code
		}
	}

	log.WithError(err).Error("request failed")

	var detail interface{}
	if debug {
		detail = err.Error()
	}
	response.ErrorWithCode(w, http.StatusInternalServerError, "STORAGE_UNAVAILABLE",
		"Service temporarily unavailable, please try again later", detail)
	return "STORAGE_UNAVAILABLE"
}

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
	log                *logrus.Logger
	metrics            *metrics.Metrics
	debug              bool
}

func NewAppointmentHandler(
	appointmentUsecase usecase.AppointmentUsecase,
	validator *validator.CustomValidator,
	log *logrus.Logger,
	m *metrics.Metrics,
	debug bool,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
		log:                log,
		metrics:            m,
		debug:              debug,
	}
}

// CreateAppointment handles public booking
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.BookingRejected("INVALID_BODY")
		response.InvalidBody(w)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.metrics.BookingRejected("MISSING_FIELDS")
		response.ValidationError(w, "MISSING_FIELDS", h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		code := writeUsecaseError(w, h.log, h.debug, err)
		h.metrics.BookingRejected(code)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// ListAppointments handles the admin appointment list
// @Summary List appointments
// @Tags Appointments
// @Security BearerAuth
// @Produce json
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param status query string false "pending, confirmed or cancelled"
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &dto.AppointmentFilterRequest{
		Date:   strings.TrimSpace(query.Get("date")),
		From:   strings.TrimSpace(query.Get("from")),
		To:     strings.TrimSpace(query.Get("to")),
		Status: strings.TrimSpace(query.Get("status")),
	}

	appointments, err := h.appointmentUsecase.ListAppointments(r.Context(), filter)
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.SuccessWithCount(w, http.StatusOK, "Appointments retrieved successfully", appointments, len(appointments))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// UpdateStatus handles status changes
// @Summary Update appointment status
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.UpdateAppointmentStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.InvalidBody(w)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, "INVALID_STATUS", h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), actorID, id, &req)
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := h.appointmentUsecase.DeleteAppointment(r.Context(), actorID, id); err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment deleted successfully", nil)
}
