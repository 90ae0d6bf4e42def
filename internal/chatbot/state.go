package chatbot

import (
	"encoding/json"
	"fmt"
)

// stateVersion is bumped whenever State gains fields that need migration on load.
const stateVersion = 1

// Language is the visitor-facing language of a conversation.
type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

func (l Language) valid() bool {
	return l == LanguageES || l == LanguageEN
}

// LeadData accumulates the answers collected during a conversation.
type LeadData struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Zone          string `json:"zone,omitempty"`
	PropertyType  string `json:"propertyType,omitempty"`
	Bedrooms      string `json:"bedrooms,omitempty"`
	DesiredPrice  string `json:"desiredPrice,omitempty"`
	Budget        string `json:"budget,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	MoveDate      string `json:"moveDate,omitempty"`
	HasPets       *bool  `json:"hasPets,omitempty"`
	OperationType string `json:"operationType,omitempty"`

	PropertyID    string `json:"propertyId,omitempty"`
	CondominiumID string `json:"condominiumId,omitempty"`
	SourcePage    string `json:"sourcePage,omitempty"`
}

// AppointmentData is reserved for the appointment booking flow.
type AppointmentData struct {
	PropertyID string `json:"propertyId,omitempty"`
	Date       string `json:"date,omitempty"`
	Time       string `json:"time,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// State is the serializable conversation state stored as conversation metadata.
type State struct {
	Version         int             `json:"version"`
	CurrentStep     Step            `json:"currentStep"`
	LeadData        LeadData        `json:"leadData"`
	AppointmentData AppointmentData `json:"appointmentData"`
	LeadID          string          `json:"leadId,omitempty"`
	AppointmentID   string          `json:"appointmentId,omitempty"`
	RetryCount      int             `json:"retryCount"`
	FlowType        FlowType        `json:"flowType,omitempty"`
	Brand           Brand           `json:"brand,omitempty"`
	Language        Language        `json:"language"`
	LanguagePinned  bool            `json:"languagePinned,omitempty"`
}

// NewState returns the state of a conversation that has not started yet.
func NewState() State {
	return State{
		Version:     stateVersion,
		CurrentStep: StepGreeting,
		Language:    LanguageES,
	}
}

// DecodeState rebuilds a State from stored metadata. Absent or unknown values
// fall back to their defaults so older conversations keep loading.
func DecodeState(raw json.RawMessage) (State, error) {
	st := NewState()
	if len(raw) == 0 || string(raw) == "null" {
		return st, nil
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("chatbot: decode state: %w", err)
	}
	if !st.CurrentStep.Valid() {
		st.CurrentStep = StepGreeting
	}
	if !st.Language.valid() {
		st.Language = LanguageES
	}
	if st.RetryCount < 0 {
		st.RetryCount = 0
	}
	if st.Brand != "" && !st.Brand.valid() {
		st.Brand = BrandDefault
	}
	st.Version = stateVersion
	return st, nil
}

// Encode serializes the state for storage.
func (s State) Encode() (json.RawMessage, error) {
	s.Version = stateVersion
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("chatbot: encode state: %w", err)
	}
	return data, nil
}

// clone copies s so that pointer fields are not shared with the original.
func (s State) clone() State {
	if s.LeadData.HasPets != nil {
		v := *s.LeadData.HasPets
		s.LeadData.HasPets = &v
	}
	return s
}
