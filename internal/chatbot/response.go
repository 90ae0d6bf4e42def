package chatbot

import (
	"fmt"
	"strings"

	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
)

// QuickReply is a clickable answer offered alongside the message.
type QuickReply = conversation.QuickReply

// InputType tells the rendering layer which input control to show next.
type InputType string

const (
	InputText   InputType = "text"
	InputPhone  InputType = "phone"
	InputSelect InputType = "select"
	InputDate   InputType = "date"
	InputNumber InputType = "number"
	InputNone   InputType = "none"
)

// Action types attached to a response.
const (
	ActionLeadCreated        = "lead_created"
	ActionAppointmentCreated = "appointment_created"
	ActionComplete           = "complete"
)

// Action signals a milestone reached during the turn.
type Action struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// ChatResponse is the reply rendered for the step about to be presented.
type ChatResponse struct {
	Message       string       `json:"message"`
	QuickReplies  []QuickReply `json:"quickReplies,omitempty"`
	InputType     InputType    `json:"inputType,omitempty"`
	Action        *Action      `json:"action,omitempty"`
	LeadID        string       `json:"leadId,omitempty"`
	AppointmentID string       `json:"appointmentId,omitempty"`
}

type stepCopy struct {
	key       messageKey
	catalog   catalog
	inputType InputType
}

var stepCopies = map[Step]stepCopy{
	StepOperationType:      {msgOperationType, mainMenuCatalog, InputSelect},
	StepNoVacationRedirect: {msgNoVacation, noVacationCatalog, InputSelect},
	StepOwnerType:          {msgOwnerType, ownerTypeCatalog, InputSelect},

	StepOwnerRentName:     {msgAskName, nil, InputText},
	StepOwnerRentPhone:    {msgAskPhone, nil, InputPhone},
	StepOwnerRentZone:     {msgOwnerZone, zoneCatalog, InputSelect},
	StepOwnerRentType:     {msgOwnerPropertyType, propertyTypeCatalog, InputSelect},
	StepOwnerRentBedrooms: {msgOwnerBedrooms, bedroomsCatalog, InputSelect},
	StepOwnerRentPrice:    {msgOwnerRentPrice, nil, InputNumber},

	StepOwnerSaleName:  {msgAskName, nil, InputText},
	StepOwnerSalePhone: {msgAskPhone, nil, InputPhone},
	StepOwnerSaleZone:  {msgOwnerZone, zoneCatalog, InputSelect},
	StepOwnerSaleType:  {msgOwnerPropertyType, propertyTypeCatalog, InputSelect},
	StepOwnerSalePrice: {msgOwnerSalePrice, nil, InputNumber},

	StepRentName:     {msgAskName, nil, InputText},
	StepRentPhone:    {msgAskPhone, nil, InputPhone},
	StepRentBudget:   {msgRentBudget, rentBudgetCatalog, InputSelect},
	StepRentZone:     {msgSearchZone, zoneCatalog, InputSelect},
	StepRentMoveDate: {msgMoveDate, nil, InputDate},
	StepRentBedrooms: {msgRentBedrooms, bedroomsCatalog, InputSelect},
	StepRentPets:     {msgPets, yesNoCatalog, InputSelect},

	StepBuyName:    {msgAskName, nil, InputText},
	StepBuyPhone:   {msgAskPhone, nil, InputPhone},
	StepBuyBudget:  {msgBuyBudget, buyBudgetCatalog, InputSelect},
	StepBuyPayment: {msgPaymentMethod, paymentCatalog, InputSelect},
	StepBuyZone:    {msgSearchZone, zoneCatalog, InputSelect},
	StepBuyType:    {msgBuyPropertyType, propertyTypeCatalog, InputSelect},

	StepOwnerComplete: {msgOwnerComplete, completeCatalog, InputSelect},
	StepRentComplete:  {msgRentComplete, completeCatalog, InputSelect},
	StepBuyComplete:   {msgBuyComplete, completeCatalog, InputSelect},
	StepOtherHelp:     {msgOtherHelp, mainMenuCatalog.with(finishOption), InputText},
	StepComplete:      {msgComplete, nil, InputNone},
}

// BuildResponse renders the prompt for step in the conversation's language.
func BuildResponse(step Step, st State, brand BrandContext) ChatResponse {
	lang := st.Language
	if !lang.valid() {
		lang = LanguageES
	}

	switch {
	case step == StepGreeting:
		key := msgGreetingDefault
		if brand.Brand == BrandRentals {
			key = msgGreetingRentals
		}
		return ChatResponse{
			Message:      fmt.Sprintf(copyText(lang, key), brand.DisplayName),
			QuickReplies: mainMenuCatalog.with(languageToggle(lang)).quickReplies(lang),
			InputType:    InputSelect,
		}
	case step.IsConfirm():
		flow, _ := step.Flow()
		return ChatResponse{
			Message:      confirmationMessage(flow, st.LeadData, lang),
			QuickReplies: confirmCatalog.quickReplies(lang),
			InputType:    InputSelect,
		}
	}

	sc, ok := stepCopies[step]
	if !ok {
		sc = stepCopies[StepOperationType]
	}
	key := sc.key
	if step.IsPhone() && st.RetryCount > 0 {
		key = msgPhoneRetry
	}
	resp := ChatResponse{
		Message:   copyText(lang, key),
		InputType: sc.inputType,
	}
	if len(sc.catalog) > 0 {
		resp.QuickReplies = sc.catalog.quickReplies(lang)
	}
	if step == StepComplete {
		resp.Action = &Action{Type: ActionComplete}
	}
	return resp
}

// ErrorResponse is the apology returned when a turn cannot be processed.
func ErrorResponse(lang Language) ChatResponse {
	return ChatResponse{Message: copyText(lang, msgError), InputType: InputText}
}

type summaryLine struct {
	label messageKey
	value string
}

// confirmationMessage lists what the sub-flow collected. Missing values render
// as a "not provided" placeholder.
func confirmationMessage(flow FlowType, lead LeadData, lang Language) string {
	lines := summaryLines(flow, lead, lang)
	missing := copyText(lang, msgNotProvided)

	var b strings.Builder
	b.WriteString(copyText(lang, msgConfirmIntro))
	b.WriteString("\n")
	for _, line := range lines {
		value := strings.TrimSpace(line.value)
		if value == "" {
			value = missing
		}
		fmt.Fprintf(&b, "\n• %s: %s", copyText(lang, line.label), value)
	}
	b.WriteString("\n\n")
	b.WriteString(copyText(lang, msgConfirmQuestion))
	return b.String()
}

func summaryLines(flow FlowType, lead LeadData, lang Language) []summaryLine {
	switch flow {
	case FlowOwnerRent:
		return []summaryLine{
			{msgLabelOperation, copyText(lang, msgOperationOwnerRent)},
			{msgLabelName, lead.Name},
			{msgLabelPhone, lead.Phone},
			{msgLabelZone, lead.Zone},
			{msgLabelPropertyType, lead.PropertyType},
			{msgLabelBedrooms, lead.Bedrooms},
			{msgLabelDesiredPrice, lead.DesiredPrice},
		}
	case FlowOwnerSale:
		return []summaryLine{
			{msgLabelOperation, copyText(lang, msgOperationOwnerSale)},
			{msgLabelName, lead.Name},
			{msgLabelPhone, lead.Phone},
			{msgLabelZone, lead.Zone},
			{msgLabelPropertyType, lead.PropertyType},
			{msgLabelDesiredPrice, lead.DesiredPrice},
		}
	case FlowRentLong:
		return []summaryLine{
			{msgLabelOperation, copyText(lang, msgOperationRent)},
			{msgLabelName, lead.Name},
			{msgLabelPhone, lead.Phone},
			{msgLabelBudget, lead.Budget},
			{msgLabelZone, lead.Zone},
			{msgLabelMoveDate, lead.MoveDate},
			{msgLabelBedrooms, lead.Bedrooms},
			{msgLabelPets, petsLabel(lead.HasPets, lang)},
		}
	case FlowBuy:
		return []summaryLine{
			{msgLabelOperation, copyText(lang, msgOperationBuy)},
			{msgLabelName, lead.Name},
			{msgLabelPhone, lead.Phone},
			{msgLabelBudget, lead.Budget},
			{msgLabelPaymentMethod, lead.PaymentMethod},
			{msgLabelZone, lead.Zone},
			{msgLabelPropertyType, lead.PropertyType},
		}
	}
	return []summaryLine{
		{msgLabelName, lead.Name},
		{msgLabelPhone, lead.Phone},
	}
}

func petsLabel(hasPets *bool, lang Language) string {
	if hasPets == nil {
		return ""
	}
	if *hasPets {
		return copyText(lang, msgYes)
	}
	return copyText(lang, msgNo)
}
