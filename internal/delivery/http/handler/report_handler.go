package handler

import (
	"net/http"
	"strings"

	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
	log           *logrus.Logger
	debug         bool
}

func NewReportHandler(reportUsecase usecase.ReportUsecase, log *logrus.Logger, debug bool) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
		log:           log,
		debug:         debug,
	}
}

// Summary handles the appointment summary report
// @Summary Appointment counts by status and day
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	report, err := h.reportUsecase.Summary(r.Context(), strings.TrimSpace(query.Get("from")), strings.TrimSpace(query.Get("to")))
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.Success(w, http.StatusOK, "Report generated successfully", report)
}
