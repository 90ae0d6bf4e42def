package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// LeadEmailNotifier e-mails an agency inbox whenever the chatbot registers a lead.
type LeadEmailNotifier struct {
	email      EmailSender
	recipients map[string]string
	logger     *logging.Logger
}

// NewLeadEmailNotifier maps agency ids to the inbox that receives their leads.
// Agencies without an entry are skipped.
func NewLeadEmailNotifier(email EmailSender, recipients map[string]string, logger *logging.Logger) *LeadEmailNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	inboxes := make(map[string]string, len(recipients))
	for agency, inbox := range recipients {
		agency = strings.TrimSpace(agency)
		inbox = strings.TrimSpace(inbox)
		if agency != "" && inbox != "" {
			inboxes[agency] = inbox
		}
	}
	return &LeadEmailNotifier{
		email:      email,
		recipients: inboxes,
		logger:     logger,
	}
}

// LeadCreated sends the new-lead e-mail for lead's agency.
func (n *LeadEmailNotifier) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	if n == nil || n.email == nil || lead == nil {
		return nil
	}
	inbox, ok := n.recipients[lead.AgencyID]
	if !ok {
		n.logger.Debug("notify: no lead inbox configured", "agency_id", lead.AgencyID)
		return nil
	}

	msg := EmailMessage{
		To:      inbox,
		Subject: newLeadSubject(lead),
		Body:    newLeadBody(lead),
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: new lead email: %w", err)
	}
	return nil
}

func newLeadSubject(lead *leads.Lead) string {
	name := lead.FullName()
	if name == "" {
		name = lead.Phone
	}
	return fmt.Sprintf("Nuevo lead del chatbot - %s", name)
}

func newLeadBody(lead *leads.Lead) string {
	var b strings.Builder
	b.WriteString("Se registró un nuevo lead desde el chatbot del sitio web.\n")
	fields := []struct{ label, value string }{
		{"Nombre", lead.FullName()},
		{"Teléfono", lead.Phone},
		{"Correo", lead.Email},
		{"Tipo", lead.RegistrationType},
		{"Propósito", lead.Purpose},
		{"Zona", lead.DesiredNeighborhood},
		{"Recámaras", lead.BedroomsText},
		{"Idioma", lead.PreferredLanguage},
		{"ID", lead.ID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", f.label, f.value)
	}
	if lead.Notes != "" {
		fmt.Fprintf(&b, "\n\n%s", lead.Notes)
	}
	return b.String()
}
