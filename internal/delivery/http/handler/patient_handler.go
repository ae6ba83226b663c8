package handler

import (
	"net/http"

	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	log            *logrus.Logger
	debug          bool
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, log *logrus.Logger, debug bool) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		log:            log,
		debug:          debug,
	}
}

// ListPatients returns patient records derived from appointments, optionally
// filtered by a name or phone fragment.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientUsecase.ListPatients(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeUsecaseError(w, h.log, h.debug, err)
		return
	}

	response.SuccessWithCount(w, http.StatusOK, "Patients retrieved successfully", patients, len(patients))
}
