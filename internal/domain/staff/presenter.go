// Package staff renders the staff detail modal.
package staff

import (
	"strconv"
)

// Field is one labelled row of the modal. Value is empty when the record
// does not carry the field.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ModalView is the rendered modal.
type ModalView struct {
	Title    string  `json:"title"`
	PhotoURL string  `json:"photo_url"`
	Fields   []Field `json:"fields"`

	onClose func()
}

// Close runs the close callback supplied by the owner of the visibility flag.
func (v *ModalView) Close() {
	if v != nil && v.onClose != nil {
		v.onClose()
	}
}

// Value returns the rendered value for key, or "" if there is no such row
// or the modal is hidden.
func (v *ModalView) Value(key string) string {
	if v == nil {
		return ""
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Presenter renders the staff modal from an optional record.
type Presenter struct{}

// Render builds the modal. It returns nil when the modal is hidden and
// renders missing fields, or a nil record, as empty values.
func (Presenter) Render(visible bool, rec *StaffRecord, onClose func()) *ModalView {
	if !visible {
		return nil
	}
	if rec == nil {
		rec = &StaffRecord{}
	}

	experience := ""
	if rec.ExperienceYears != nil {
		experience = strconv.Itoa(*rec.ExperienceYears) + " years"
	}

	title := strVal(rec.Name)
	if title == "" {
		title = "Staff Details"
	}

	return &ModalView{
		Title:    title,
		PhotoURL: strVal(rec.PhotoURL),
		Fields: []Field{
			{Key: "name", Label: "Name", Value: strVal(rec.Name)},
			{Key: "staff_id", Label: "Staff ID", Value: strVal(rec.StaffID)},
			{Key: "role", Label: "Role", Value: strVal(rec.Role)},
			{Key: "department", Label: "Department", Value: strVal(rec.Department)},
			{Key: "specialization", Label: "Specialization", Value: strVal(rec.Specialization)},
			{Key: "email", Label: "Email", Value: strVal(rec.Email)},
			{Key: "phone", Label: "Phone", Value: strVal(rec.Phone)},
			{Key: "address", Label: "Address", Value: strVal(rec.Address)},
			{Key: "gender", Label: "Gender", Value: strVal(rec.Gender)},
			{Key: "date_of_birth", Label: "Date of Birth", Value: strVal(rec.DateOfBirth)},
			{Key: "joining_date", Label: "Joining Date", Value: strVal(rec.JoiningDate)},
			{Key: "experience", Label: "Experience", Value: experience},
			{Key: "shift", Label: "Shift", Value: strVal(rec.Shift)},
			{Key: "status", Label: "Status", Value: strVal(rec.Status)},
		},
		onClose: onClose,
	}
}
