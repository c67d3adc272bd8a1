package staff

import "github.com/hms/dashboard/internal/platform/middleware"

// StaffRecord is the payload shown in the staff detail modal. Every field is
// optional; the backend omits whatever it does not know.
type StaffRecord struct {
	Name            *string `json:"name,omitempty"`
	StaffID         *string `json:"staff_id,omitempty"`
	Role            *string `json:"role,omitempty"`
	Department      *string `json:"department,omitempty"`
	Specialization  *string `json:"specialization,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Address         *string `json:"address,omitempty"`
	Gender          *string `json:"gender,omitempty"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
	JoiningDate     *string `json:"joining_date,omitempty"`
	ExperienceYears *int    `json:"experience_years,omitempty"`
	Shift           *string `json:"shift,omitempty"`
	Status          *string `json:"status,omitempty"`
	PhotoURL        *string `json:"photo_url,omitempty"`
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return middleware.SanitizeString(*s)
}
