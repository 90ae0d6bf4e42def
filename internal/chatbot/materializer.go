package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/observability/metrics"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// Lead materialization results reported to metrics.
const (
	leadResultCreated = "created"
	leadResultReused  = "reused"
	leadResultSkipped = "skipped"
	leadResultFailed  = "failed"
)

var leadPurposes = map[FlowType]map[Language]string{
	FlowRentLong:  {LanguageES: "cliente", LanguageEN: "client"},
	FlowBuy:       {LanguageES: "comprador", LanguageEN: "buyer"},
	FlowOwnerRent: {LanguageES: "propietario renta", LanguageEN: "owner rent"},
	FlowOwnerSale: {LanguageES: "propietario venta", LanguageEN: "owner sale"},
	FlowOther:     {LanguageES: "consulta", LanguageEN: "inquiry"},
}

// Materializer turns a confirmed conversation into a lead, reusing an existing
// lead of the same agency and phone when there is one.
type Materializer struct {
	leads    LeadStore
	notifier LeadNotifier
	metrics  *metrics.ChatbotMetrics
	logger   *logging.Logger
}

// NewMaterializer wires the lead store. notifier and m may be nil.
func NewMaterializer(store LeadStore, notifier LeadNotifier, m *metrics.ChatbotMetrics, logger *logging.Logger) *Materializer {
	if store == nil {
		panic("chatbot: lead store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Materializer{leads: store, notifier: notifier, metrics: m, logger: logger}
}

// Materialize returns the id of the lead for st. It returns "" without error
// when the name or phone has not been collected.
func (m *Materializer) Materialize(ctx context.Context, agencyID, conversationID string, st State) (string, error) {
	flow := string(st.FlowType)
	name := strings.TrimSpace(st.LeadData.Name)
	phone := NormalizePhone(st.LeadData.Phone)
	if name == "" || phone == "" {
		m.logger.Warn("lead materialization skipped: missing name or phone",
			"conversation_id", conversationID,
			"agency_id", agencyID,
			"flow_type", flow,
		)
		m.metrics.ObserveLead(flow, leadResultSkipped)
		return "", nil
	}

	existingID, err := m.leads.CheckDuplicate(ctx, agencyID, "", "", phone)
	if err != nil {
		m.metrics.ObserveLead(flow, leadResultFailed)
		return "", fmt.Errorf("chatbot: duplicate lead check: %w", err)
	}
	if existingID != "" {
		m.logger.Info("reusing existing lead",
			"conversation_id", conversationID,
			"agency_id", agencyID,
			"lead_id", existingID,
		)
		m.metrics.ObserveLead(flow, leadResultReused)
		return existingID, nil
	}

	req := buildLeadRequest(agencyID, conversationID, phone, st)
	lead, err := m.leads.Create(ctx, req)
	if err != nil {
		m.metrics.ObserveLead(flow, leadResultFailed)
		return "", fmt.Errorf("chatbot: create lead: %w", err)
	}
	m.metrics.ObserveLead(flow, leadResultCreated)
	m.logger.Info("lead created from chatbot",
		"conversation_id", conversationID,
		"agency_id", agencyID,
		"lead_id", lead.ID,
		"flow_type", flow,
	)

	if m.notifier != nil {
		if err := m.notifier.LeadCreated(ctx, lead); err != nil {
			m.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}
	return lead.ID, nil
}

func buildLeadRequest(agencyID, conversationID, phone string, st State) *leads.CreateLeadRequest {
	lead := st.LeadData
	lang := st.Language
	if !lang.valid() {
		lang = LanguageES
	}
	firstName, lastName := splitName(lead.Name)

	req := &leads.CreateLeadRequest{
		AgencyID:            agencyID,
		FirstName:           firstName,
		LastName:            lastName,
		Phone:               phone,
		Email:               strings.TrimSpace(lead.Email),
		RegistrationType:    registrationType(st.FlowType),
		Purpose:             leadPurpose(st.FlowType, lang),
		Status:              leads.StatusNew,
		Source:              leads.SourceChatbot,
		Notes:               leadNotes(conversationID, st),
		DesiredNeighborhood: lead.Zone,
		BedroomsText:        lead.Bedrooms,
		CheckInDateText:     lead.MoveDate,
		HasPets:             lead.HasPets,
		PreferredLanguage:   string(lang),
	}
	if lead.PropertyID != "" {
		req.InterestedUnitIDs = []string{lead.PropertyID}
	}
	if lead.CondominiumID != "" {
		req.InterestedCondominiumIDs = []string{lead.CondominiumID}
	}
	return req
}

// splitName splits on the first run of whitespace.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	i := strings.IndexFunc(name, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' })
	if i < 0 {
		return name, ""
	}
	return name[:i], strings.TrimSpace(name[i+1:])
}

func registrationType(flow FlowType) string {
	if flow == FlowOwnerRent || flow == FlowOwnerSale {
		return leads.RegistrationOwner
	}
	return leads.RegistrationSeller
}

func leadPurpose(flow FlowType, lang Language) string {
	purposes, ok := leadPurposes[flow]
	if !ok {
		purposes = leadPurposes[FlowOther]
	}
	return purposes[lang]
}

// leadNotes gives agents every populated answer plus the conversation id.
func leadNotes(conversationID string, st State) string {
	lang := st.Language
	lead := st.LeadData
	fields := []summaryLine{
		{msgLabelName, lead.Name},
		{msgLabelPhone, lead.Phone},
		{msgLabelEmail, lead.Email},
		{msgLabelOperation, lead.OperationType},
		{msgLabelZone, lead.Zone},
		{msgLabelPropertyType, lead.PropertyType},
		{msgLabelBedrooms, lead.Bedrooms},
		{msgLabelDesiredPrice, lead.DesiredPrice},
		{msgLabelBudget, lead.Budget},
		{msgLabelPaymentMethod, lead.PaymentMethod},
		{msgLabelMoveDate, lead.MoveDate},
		{msgLabelPets, petsLabel(lead.HasPets, lang)},
		{msgLabelProperty, lead.PropertyID},
		{msgLabelCondominium, lead.CondominiumID},
		{msgLabelSourcePage, lead.SourcePage},
	}

	var b strings.Builder
	b.WriteString(copyText(lang, msgNotesHeader))
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", copyText(lang, f.label), f.value)
	}
	fmt.Fprintf(&b, "\n%s: %s", copyText(lang, msgLabelConversation), conversationID)
	return b.String()
}
