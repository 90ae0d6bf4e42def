package chatbot

import "strings"

// OperationListProperty marks a visitor who chose to list a property but has
// not yet said whether it is for rent or sale.
const OperationListProperty = "list_property"

// ApplyInput records input against the field targeted by step and returns the
// updated state. st is left untouched.
func ApplyInput(step Step, input string, st State) State {
	next := st.clone()
	value := strings.TrimSpace(input)
	intent := DetectIntent(value)

	switch intent {
	case IntentLangEN:
		next.Language = LanguageEN
		next.LanguagePinned = true
		return next
	case IntentLangES:
		next.Language = LanguageES
		next.LanguagePinned = true
		return next
	}

	switch step {
	case StepGreeting:
		commitBranch(&next, intent)
		return next
	case StepOperationType:
		if intent == IntentNone {
			intent = IntentRentLong
		}
		commitBranch(&next, intent)
		return next
	case StepNoVacationRedirect:
		if intent == IntentRentLong || intent == IntentBuy {
			commitBranch(&next, intent)
		}
		return next
	case StepOwnerType:
		flow := FlowOwnerRent
		if isOwnerSale(value) {
			flow = FlowOwnerSale
		}
		next.FlowType = flow
		next.LeadData.OperationType = string(flow)
		next.RetryCount = 0
		return next
	case StepOtherHelp, StepComplete:
		if !isDecline(value) {
			commitBranch(&next, intent)
		}
		return next
	case StepOwnerComplete, StepRentComplete, StepBuyComplete:
		return next
	}

	info, ok := stepIndex[step]
	if !ok {
		return next
	}
	switch info.field {
	case fieldPhone:
		switch {
		case IsValidPhone(value):
			next.LeadData.Phone = NormalizePhone(value)
			next.RetryCount = 0
		case st.RetryCount < maxPhoneRetries:
			next.RetryCount = st.RetryCount + 1
		default:
			next.RetryCount = 0
		}
	case fieldPets:
		hasPets := isYes(value)
		next.LeadData.HasPets = &hasPets
	case fieldConfirm:
		if isRestartToken(value) {
			clearFlowFields(&next.LeadData, info.flow)
			next.RetryCount = 0
		}
	default:
		setField(&next.LeadData, info.field, resolveOption(step, value, next.Language))
	}
	return next
}

// commitBranch records the sub-flow a main-menu intent opens.
func commitBranch(st *State, intent Intent) {
	switch intent {
	case IntentRentLong:
		st.FlowType = FlowRentLong
		st.LeadData.OperationType = string(FlowRentLong)
	case IntentBuy:
		st.FlowType = FlowBuy
		st.LeadData.OperationType = string(FlowBuy)
	case IntentListProperty:
		st.LeadData.OperationType = OperationListProperty
	case IntentOther:
		if st.FlowType == "" {
			st.FlowType = FlowOther
		}
		if st.LeadData.OperationType == "" {
			st.LeadData.OperationType = string(FlowOther)
		}
	default:
		return
	}
	st.RetryCount = 0
}

func resolveOption(step Step, value string, lang Language) string {
	if cat := fieldCatalog(step); cat != nil {
		if label, ok := cat.label(value, lang); ok {
			return label
		}
	}
	return value
}

func setField(lead *LeadData, f field, value string) {
	switch f {
	case fieldName:
		lead.Name = value
	case fieldPhone:
		lead.Phone = value
	case fieldZone:
		lead.Zone = value
	case fieldPropertyType:
		lead.PropertyType = value
	case fieldBedrooms:
		lead.Bedrooms = value
	case fieldDesiredPrice:
		lead.DesiredPrice = value
	case fieldBudget:
		lead.Budget = value
	case fieldPaymentMethod:
		lead.PaymentMethod = value
	case fieldMoveDate:
		lead.MoveDate = value
	}
}

// clearFlowFields wipes what a sub-flow collected so it can be asked again.
func clearFlowFields(lead *LeadData, flow FlowType) {
	for _, f := range flowFields(flow) {
		if f == fieldPets {
			lead.HasPets = nil
			continue
		}
		setField(lead, f, "")
	}
}
