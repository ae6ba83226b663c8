package dto

// PatientResponse is a patient record derived from appointment history.
type PatientResponse struct {
	PhoneNumber        string `json:"phoneNumber"`
	PatientName        string `json:"patientName"`
	TotalAppointments  int64  `json:"totalAppointments"`
	ActiveAppointments int64  `json:"activeAppointments"`
	FirstVisit         string `json:"firstVisit"`
	LastVisit          string `json:"lastVisit"`
}
