package dto

type CreateAppointmentRequest struct {
	HospitalID    string `json:"hospitalId"`
	RequestedDate string `json:"requestedDate"`
	RequestedSlot string `json:"requestedSlot"`
	Reason        string `json:"reason"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	PhoneNumber   string `json:"phoneNumber"`
}

type ConfirmAppointmentRequest struct {
	ConfirmedDate string `json:"confirmedDate"`
}
