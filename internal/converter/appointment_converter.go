package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientName:     appointment.PatientName,
		PhoneNumber:     appointment.PhoneNumber,
		AppointmentDate: appointment.DateString(),
		AppointmentTime: appointment.AppointmentTime,
		Notes:           appointment.Notes,
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// PatientRecordsToResponses converts derived patient records to PatientResponse DTOs
func PatientRecordsToResponses(records []entity.PatientRecord) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(records))
	for i, record := range records {
		responses[i] = dto.PatientResponse{
			PhoneNumber:        record.PhoneNumber,
			PatientName:        record.PatientName,
			TotalAppointments:  record.TotalAppointments,
			ActiveAppointments: record.ActiveAppointments,
			FirstVisit:         record.FirstVisit.Format("2006-01-02"),
			LastVisit:          record.LastVisit.Format("2006-01-02"),
		}
	}
	return responses
}
