package chatbot

// NextStep computes the step that follows step once input has been received.
// st is the state before input was applied. NextStep never mutates state.
func NextStep(step Step, input string, st State) Step {
	intent := DetectIntent(input)
	if intent.IsLanguageSwitch() {
		return step
	}

	switch step {
	case StepGreeting:
		if next, ok := branchStep(intent); ok {
			return next
		}
		return StepOperationType
	case StepOperationType:
		if next, ok := branchStep(intent); ok {
			return next
		}
		return StepRentName
	case StepNoVacationRedirect:
		switch intent {
		case IntentRentLong:
			return StepRentName
		case IntentBuy:
			return StepBuyName
		}
		return StepOtherHelp
	case StepOwnerType:
		if isOwnerSale(input) {
			return StepOwnerSaleName
		}
		return StepOwnerRentName
	case StepOwnerComplete, StepRentComplete, StepBuyComplete:
		if isDecline(input) {
			return StepComplete
		}
		return StepOtherHelp
	case StepOtherHelp:
		if isDecline(input) {
			return StepComplete
		}
		if next, ok := branchStep(intent); ok {
			return next
		}
		return StepOtherHelp
	case StepComplete:
		if next, ok := branchStep(intent); ok {
			return next
		}
		return StepComplete
	}

	info, ok := stepIndex[step]
	if !ok {
		return StepGreeting
	}
	switch info.field {
	case fieldPhone:
		if !IsValidPhone(input) && st.RetryCount < maxPhoneRetries {
			return step
		}
	case fieldConfirm:
		if isRestartToken(input) {
			return firstStep(info.flow)
		}
	}
	return info.next
}

// branchStep maps a main-menu intent to the step that opens its branch.
func branchStep(intent Intent) (Step, bool) {
	switch intent {
	case IntentListProperty:
		return StepOwnerType, true
	case IntentBuy:
		return StepBuyName, true
	case IntentRentShort:
		return StepNoVacationRedirect, true
	case IntentRentLong:
		return StepRentName, true
	case IntentOther:
		return StepOtherHelp, true
	}
	return "", false
}
