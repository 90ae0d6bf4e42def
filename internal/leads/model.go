package leads

import (
	"strings"
	"time"
)

// Registration types and statuses used by the chatbot intake.
const (
	RegistrationSeller = "seller"
	RegistrationOwner  = "owner"

	StatusNew = "new"

	SourceChatbot = "chatbot"
)

// Lead is a prospective client or property owner registered with an agency.
type Lead struct {
	ID                       string    `json:"id"`
	AgencyID                 string    `json:"agency_id"`
	FirstName                string    `json:"first_name"`
	LastName                 string    `json:"last_name"`
	Phone                    string    `json:"phone"`
	Email                    string    `json:"email,omitempty"`
	RegistrationType         string    `json:"registration_type"`
	Purpose                  string    `json:"purpose"`
	Status                   string    `json:"status"`
	Source                   string    `json:"source"`
	Notes                    string    `json:"notes,omitempty"`
	DesiredNeighborhood      string    `json:"desired_neighborhood,omitempty"`
	BedroomsText             string    `json:"bedrooms_text,omitempty"`
	CheckInDateText          string    `json:"check_in_date_text,omitempty"`
	InterestedUnitIDs        []string  `json:"interested_unit_ids,omitempty"`
	InterestedCondominiumIDs []string  `json:"interested_condominium_ids,omitempty"`
	HasPets                  *bool     `json:"has_pets,omitempty"`
	PreferredLanguage        string    `json:"preferred_language,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
}

// FullName joins first and last name.
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CreateLeadRequest is the creation payload for a lead.
type CreateLeadRequest struct {
	AgencyID                 string   `json:"-"`
	FirstName                string   `json:"first_name"`
	LastName                 string   `json:"last_name"`
	Phone                    string   `json:"phone"`
	Email                    string   `json:"email"`
	RegistrationType         string   `json:"registration_type"`
	Purpose                  string   `json:"purpose"`
	Status                   string   `json:"status"`
	Source                   string   `json:"source"`
	Notes                    string   `json:"notes"`
	DesiredNeighborhood      string   `json:"desired_neighborhood"`
	BedroomsText             string   `json:"bedrooms_text"`
	CheckInDateText          string   `json:"check_in_date_text"`
	InterestedUnitIDs        []string `json:"interested_unit_ids"`
	InterestedCondominiumIDs []string `json:"interested_condominium_ids"`
	HasPets                  *bool    `json:"has_pets"`
	PreferredLanguage        string   `json:"preferred_language"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.AgencyID) == "" {
		return ErrMissingAgencyID
	}
	if strings.TrimSpace(r.FirstName) == "" {
		return ErrInvalidName
	}
	if r.Email == "" && r.Phone == "" {
		return ErrMissingContact
	}
	return nil
}

func (r *CreateLeadRequest) toLead(id string, createdAt time.Time) *Lead {
	status := r.Status
	if status == "" {
		status = StatusNew
	}
	return &Lead{
		ID:                       id,
		AgencyID:                 r.AgencyID,
		FirstName:                r.FirstName,
		LastName:                 r.LastName,
		Phone:                    r.Phone,
		Email:                    r.Email,
		RegistrationType:         r.RegistrationType,
		Purpose:                  r.Purpose,
		Status:                   status,
		Source:                   r.Source,
		Notes:                    r.Notes,
		DesiredNeighborhood:      r.DesiredNeighborhood,
		BedroomsText:             r.BedroomsText,
		CheckInDateText:          r.CheckInDateText,
		InterestedUnitIDs:        r.InterestedUnitIDs,
		InterestedCondominiumIDs: r.InterestedCondominiumIDs,
		HasPets:                  r.HasPets,
		PreferredLanguage:        r.PreferredLanguage,
		CreatedAt:                createdAt,
	}
}

// ListLeadsFilter narrows ListByAgency results.
type ListLeadsFilter struct {
	Status string
	Source string
	Limit  int
	Offset int
}

// phoneDigits strips everything but digits so "+52 998-123" and "52998123" compare equal.
func phoneDigits(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
