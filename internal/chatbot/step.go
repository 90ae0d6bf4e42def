package chatbot

// Step identifies a node of the lead-intake dialogue graph.
type Step string

const (
	StepGreeting           Step = "greeting"
	StepOperationType      Step = "operation_type"
	StepNoVacationRedirect Step = "no_vacation_redirect"
	StepOwnerType          Step = "owner_type"

	StepOwnerRentName     Step = "owner_rent_name"
	StepOwnerRentPhone    Step = "owner_rent_phone"
	StepOwnerRentZone     Step = "owner_rent_zone"
	StepOwnerRentType     Step = "owner_rent_type"
	StepOwnerRentBedrooms Step = "owner_rent_bedrooms"
	StepOwnerRentPrice    Step = "owner_rent_price"
	StepOwnerRentConfirm  Step = "owner_rent_confirm"

	StepOwnerSaleName    Step = "owner_sale_name"
	StepOwnerSalePhone   Step = "owner_sale_phone"
	StepOwnerSaleZone    Step = "owner_sale_zone"
	StepOwnerSaleType    Step = "owner_sale_type"
	StepOwnerSalePrice   Step = "owner_sale_price"
	StepOwnerSaleConfirm Step = "owner_sale_confirm"

	StepRentName     Step = "rent_name"
	StepRentPhone    Step = "rent_phone"
	StepRentBudget   Step = "rent_budget"
	StepRentZone     Step = "rent_zone"
	StepRentMoveDate Step = "rent_move_date"
	StepRentBedrooms Step = "rent_bedrooms"
	StepRentPets     Step = "rent_pets"
	StepRentConfirm  Step = "rent_confirm"

	StepBuyName    Step = "buy_name"
	StepBuyPhone   Step = "buy_phone"
	StepBuyBudget  Step = "buy_budget"
	StepBuyPayment Step = "buy_payment"
	StepBuyZone    Step = "buy_zone"
	StepBuyType    Step = "buy_type"
	StepBuyConfirm Step = "buy_confirm"

	StepOwnerComplete Step = "owner_complete"
	StepRentComplete  Step = "rent_complete"
	StepBuyComplete   Step = "buy_complete"
	StepOtherHelp     Step = "other_help"
	StepComplete      Step = "complete"
)

// FlowType tags the sub-flow a visitor committed to.
type FlowType string

const (
	FlowRentLong  FlowType = "rent_long"
	FlowBuy       FlowType = "buy"
	FlowOwnerRent FlowType = "owner_rent"
	FlowOwnerSale FlowType = "owner_sale"
	FlowOther     FlowType = "other"
)

// field names the lead attribute a data-collection step writes.
type field int

const (
	fieldNone field = iota
	fieldName
	fieldPhone
	fieldZone
	fieldPropertyType
	fieldBedrooms
	fieldDesiredPrice
	fieldBudget
	fieldPaymentMethod
	fieldMoveDate
	fieldPets
	fieldConfirm
)

type flowStep struct {
	step  Step
	field field
}

// flowSequences holds the fixed question order of each data-collection sub-flow.
var flowSequences = map[FlowType][]flowStep{
	FlowOwnerRent: {
		{StepOwnerRentName, fieldName},
		{StepOwnerRentPhone, fieldPhone},
		{StepOwnerRentZone, fieldZone},
		{StepOwnerRentType, fieldPropertyType},
		{StepOwnerRentBedrooms, fieldBedrooms},
		{StepOwnerRentPrice, fieldDesiredPrice},
		{StepOwnerRentConfirm, fieldConfirm},
	},
	FlowOwnerSale: {
		{StepOwnerSaleName, fieldName},
		{StepOwnerSalePhone, fieldPhone},
		{StepOwnerSaleZone, fieldZone},
		{StepOwnerSaleType, fieldPropertyType},
		{StepOwnerSalePrice, fieldDesiredPrice},
		{StepOwnerSaleConfirm, fieldConfirm},
	},
	FlowRentLong: {
		{StepRentName, fieldName},
		{StepRentPhone, fieldPhone},
		{StepRentBudget, fieldBudget},
		{StepRentZone, fieldZone},
		{StepRentMoveDate, fieldMoveDate},
		{StepRentBedrooms, fieldBedrooms},
		{StepRentPets, fieldPets},
		{StepRentConfirm, fieldConfirm},
	},
	FlowBuy: {
		{StepBuyName, fieldName},
		{StepBuyPhone, fieldPhone},
		{StepBuyBudget, fieldBudget},
		{StepBuyPayment, fieldPaymentMethod},
		{StepBuyZone, fieldZone},
		{StepBuyType, fieldPropertyType},
		{StepBuyConfirm, fieldConfirm},
	},
}

var flowCompletion = map[FlowType]Step{
	FlowOwnerRent: StepOwnerComplete,
	FlowOwnerSale: StepOwnerComplete,
	FlowRentLong:  StepRentComplete,
	FlowBuy:       StepBuyComplete,
}

type stepInfo struct {
	flow  FlowType
	field field
	next  Step
}

var (
	stepIndex = buildStepIndex()

	standaloneSteps = map[Step]struct{}{
		StepGreeting:           {},
		StepOperationType:      {},
		StepNoVacationRedirect: {},
		StepOwnerType:          {},
		StepOwnerComplete:      {},
		StepRentComplete:       {},
		StepBuyComplete:        {},
		StepOtherHelp:          {},
		StepComplete:           {},
	}
)

func buildStepIndex() map[Step]stepInfo {
	index := make(map[Step]stepInfo)
	for flow, seq := range flowSequences {
		for i, fs := range seq {
			next := flowCompletion[flow]
			if i+1 < len(seq) {
				next = seq[i+1].step
			}
			index[fs.step] = stepInfo{flow: flow, field: fs.field, next: next}
		}
	}
	return index
}

// Valid reports whether s belongs to the step enumeration.
func (s Step) Valid() bool {
	if _, ok := standaloneSteps[s]; ok {
		return true
	}
	_, ok := stepIndex[s]
	return ok
}

// Flow returns the sub-flow a data-collection step belongs to.
func (s Step) Flow() (FlowType, bool) {
	info, ok := stepIndex[s]
	return info.flow, ok
}

// IsPhone reports whether s collects the visitor's phone number.
func (s Step) IsPhone() bool {
	return stepIndex[s].field == fieldPhone
}

// IsConfirm reports whether s is one of the sub-flow confirmation steps.
func (s Step) IsConfirm() bool {
	return stepIndex[s].field == fieldConfirm
}

func (s Step) targetField() field {
	return stepIndex[s].field
}

// AllSteps lists every step, entry steps first.
func AllSteps() []Step {
	steps := []Step{StepGreeting, StepOperationType, StepNoVacationRedirect, StepOwnerType}
	for _, flow := range []FlowType{FlowOwnerRent, FlowOwnerSale, FlowRentLong, FlowBuy} {
		for _, fs := range flowSequences[flow] {
			steps = append(steps, fs.step)
		}
	}
	return append(steps, StepOwnerComplete, StepRentComplete, StepBuyComplete, StepOtherHelp, StepComplete)
}

func firstStep(flow FlowType) Step {
	seq := flowSequences[flow]
	if len(seq) == 0 {
		return StepOtherHelp
	}
	return seq[0].step
}

// flowFields lists the lead attributes collected by a sub-flow.
func flowFields(flow FlowType) []field {
	seq := flowSequences[flow]
	out := make([]field, 0, len(seq))
	for _, fs := range seq {
		if fs.field != fieldConfirm {
			out = append(out, fs.field)
		}
	}
	return out
}
