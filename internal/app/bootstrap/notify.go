package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/propdesk-ai-platform/internal/config"
	"github.com/wolfman30/propdesk-ai-platform/internal/notify"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

// Email providers accepted by EMAIL_PROVIDER.
const (
	EmailSendGrid = "sendgrid"
	EmailSES      = "ses"
	EmailStub     = "stub"
)

// BuildEmailSender returns the sender named by cfg.EmailProvider. sesClient is
// only consulted for the ses provider.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.EmailProvider {
	case "", EmailStub:
		return notify.NewStubEmailSender(logger), nil
	case EmailSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case EmailSES:
		if strings.TrimSpace(cfg.SESFromEmail) == "" {
			return nil, fmt.Errorf("bootstrap: SES_FROM_EMAIL is required for the ses provider")
		}
		sender := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: ses client is required for the ses provider")
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildLeadNotifier pairs sender with the per-agency inboxes from config.
func BuildLeadNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) (*notify.LeadEmailNotifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	recipients, err := cfg.LeadNotifyEmails()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse LEAD_NOTIFY_EMAILS_JSON: %w", err)
	}
	if len(recipients) == 0 && logger != nil {
		logger.Warn("no lead notification inboxes configured")
	}
	return notify.NewLeadEmailNotifier(sender, recipients, logger), nil
}
