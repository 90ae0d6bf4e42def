package chatbot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBrand = BrandContext{Brand: BrandDefault, DisplayName: "PropDesk"}

func TestBuildResponse_EveryStepRenders(t *testing.T) {
	for _, lang := range []Language{LanguageES, LanguageEN} {
		st := NewState()
		st.Language = lang
		for _, step := range AllSteps() {
			resp := BuildResponse(step, st, testBrand)
			assert.NotEmpty(t, resp.Message, "%s/%s", lang, step)
			assert.NotEmpty(t, resp.InputType, "%s/%s", lang, step)
			assert.NotContains(t, resp.Message, "%!", "%s/%s", lang, step)
			for _, qr := range resp.QuickReplies {
				assert.NotEmpty(t, qr.Label, "%s/%s/%s", lang, step, qr.Value)
				assert.NotEmpty(t, qr.Value)
			}
		}
	}
}

func TestBuildResponse_InputTypes(t *testing.T) {
	st := NewState()
	tests := map[Step]InputType{
		StepGreeting:           InputSelect,
		StepOperationType:      InputSelect,
		StepRentName:           InputText,
		StepBuyPhone:           InputPhone,
		StepRentBudget:         InputSelect,
		StepOwnerSaleZone:      InputSelect,
		StepOwnerRentType:      InputSelect,
		StepRentBedrooms:       InputSelect,
		StepRentPets:           InputSelect,
		StepBuyPayment:         InputSelect,
		StepOwnerRentPrice:     InputNumber,
		StepRentMoveDate:       InputDate,
		StepBuyConfirm:         InputSelect,
		StepOtherHelp:          InputText,
		StepComplete:           InputNone,
		StepOwnerComplete:      InputSelect,
		StepNoVacationRedirect: InputSelect,
	}
	for step, want := range tests {
		assert.Equal(t, want, BuildResponse(step, st, testBrand).InputType, "step %s", step)
	}
}

func TestBuildResponse_CompleteAction(t *testing.T) {
	resp := BuildResponse(StepComplete, NewState(), testBrand)
	require.NotNil(t, resp.Action)
	assert.Equal(t, ActionComplete, resp.Action.Type)
	assert.Empty(t, resp.QuickReplies)
}

func TestBuildResponse_PhoneRetryMessage(t *testing.T) {
	st := NewState()
	assert.Equal(t, copyText(LanguageES, msgAskPhone), BuildResponse(StepOwnerSalePhone, st, testBrand).Message)
	st.RetryCount = 1
	assert.Equal(t, copyText(LanguageES, msgPhoneRetry), BuildResponse(StepOwnerSalePhone, st, testBrand).Message)
}

func TestBuildResponse_SharedPhonePrompt(t *testing.T) {
	st := NewState()
	st.Language = LanguageEN
	want := BuildResponse(StepRentPhone, st, testBrand).Message
	for _, step := range []Step{StepBuyPhone, StepOwnerRentPhone, StepOwnerSalePhone} {
		assert.Equal(t, want, BuildResponse(step, st, testBrand).Message)
	}
}

func TestBuildResponse_GreetingUsesBrand(t *testing.T) {
	st := NewState()
	def := BuildResponse(StepGreeting, st, BrandContext{Brand: BrandDefault, DisplayName: "Casa Sol"})
	assert.Contains(t, def.Message, "Casa Sol")

	rentals := BuildResponse(StepGreeting, st, BrandContext{Brand: BrandRentals, DisplayName: "Casa Sol Rentas"})
	assert.Contains(t, rentals.Message, "Casa Sol Rentas")
	assert.NotEqual(t, def.Message, rentals.Message)

	var values []string
	for _, qr := range def.QuickReplies {
		values = append(values, qr.Value)
	}
	assert.Contains(t, values, "lang_en")
	assert.Contains(t, values, "rent_short")
}

func TestBuildResponse_ConfirmationWithEmptyLeadData(t *testing.T) {
	for _, lang := range []Language{LanguageES, LanguageEN} {
		for _, step := range []Step{StepOwnerRentConfirm, StepOwnerSaleConfirm, StepRentConfirm, StepBuyConfirm} {
			st := NewState()
			st.Language = lang
			msg := BuildResponse(step, st, testBrand).Message

			for _, bad := range []string{"undefined", "null", "<nil>", "%!"} {
				assert.NotContains(t, msg, bad, "%s/%s", lang, step)
			}
			placeholder := copyText(lang, msgNotProvided)
			for _, line := range strings.Split(msg, "\n") {
				if !strings.HasPrefix(line, "• ") {
					continue
				}
				parts := strings.SplitN(line, ": ", 2)
				require.Len(t, parts, 2, line)
				if strings.Contains(parts[0], copyText(lang, msgLabelOperation)) {
					continue
				}
				assert.Equal(t, placeholder, parts[1], "%s/%s: %s", lang, step, line)
			}
		}
	}
}

func TestBuildResponse_ConfirmationInterpolatesLeadData(t *testing.T) {
	hasPets := true
	st := NewState()
	st.LeadData = LeadData{Name: "Ana", Phone: "+529981234567", Zone: "Centro", HasPets: &hasPets}

	msg := BuildResponse(StepRentConfirm, st, testBrand).Message
	assert.Contains(t, msg, "• Nombre: Ana")
	assert.Contains(t, msg, "• Teléfono: +529981234567")
	assert.Contains(t, msg, "• Zona: Centro")
	assert.Contains(t, msg, "• Mascotas: Sí")
	assert.Contains(t, msg, "• Presupuesto: No proporcionado")
}

func TestDecodeState_Defaults(t *testing.T) {
	st, err := DecodeState(nil)
	require.NoError(t, err)
	assert.Equal(t, NewState(), st)

	st, err = DecodeState([]byte(`{"currentStep":"legacy_step","language":"fr","retryCount":-3,"brand":"mystery","leadData":{"name":"Ana"}}`))
	require.NoError(t, err)
	assert.Equal(t, StepGreeting, st.CurrentStep)
	assert.Equal(t, LanguageES, st.Language)
	assert.Equal(t, 0, st.RetryCount)
	assert.Equal(t, BrandDefault, st.Brand)
	assert.Equal(t, "Ana", st.LeadData.Name)
	assert.Equal(t, stateVersion, st.Version)

	st, err = DecodeState([]byte(`{"leadData":{"phone":"+52998"}}`))
	require.NoError(t, err)
	assert.Equal(t, StepGreeting, st.CurrentStep)
	assert.Equal(t, "+52998", st.LeadData.Phone)

	_, err = DecodeState([]byte(`{not json`))
	assert.Error(t, err)
}

func TestState_EncodeDecodeKeepsEverything(t *testing.T) {
	hasPets := false
	st := NewState()
	st.CurrentStep = StepRentPets
	st.FlowType = FlowRentLong
	st.Brand = BrandRentals
	st.Language = LanguageEN
	st.LanguagePinned = true
	st.RetryCount = 1
	st.LeadID = "lead-1"
	st.LeadData = LeadData{Name: "Ana", HasPets: &hasPets, SourcePage: "/rentals"}

	raw, err := st.Encode()
	require.NoError(t, err)
	decoded, err := DecodeState(raw)
	require.NoError(t, err)
	assert.Equal(t, st, decoded)
}

func TestBrandCatalog(t *testing.T) {
	c := DefaultBrandCatalog()
	assert.Equal(t, BrandRentals, c.Resolve("/rentas/depto-centro"))
	assert.Equal(t, BrandRentals, c.Resolve("https://example.com/Rentals?unit=4"))
	assert.Equal(t, BrandDefault, c.Resolve("https://example.com/"))
	assert.Equal(t, BrandDefault, c.Resolve("https://example.com"))
	assert.Equal(t, BrandDefault, c.Resolve(""))
	assert.Equal(t, "PropDesk Rentas", c.Context(BrandRentals).DisplayName)
	assert.Equal(t, "PropDesk", c.Context("").DisplayName)
}
