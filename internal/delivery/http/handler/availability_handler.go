package handler

import (
	"net/http"
	"strings"

	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	log                 *logrus.Logger
	debug               bool
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, log *logrus.Logger, debug bool) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		log:                 log,
		debug:               debug,
	}
}

// GetAvailableDates lists every business day in the booking horizon
// @Summary List bookable dates
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /available-dates [get]
func (h *AvailabilityHandler) GetAvailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.availabilityUsecase.GetAvailableDates(r.Context())
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Available dates retrieved successfully", dates)
}

// GetAvailableSlots lists the free start times of one day
// @Summary List free slots
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /available-slots [get]
func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	slots, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), date)
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}
