// Command chatsim drives the lead-intake chatbot from a terminal using
// in-memory stores. Leads it creates are printed when the session ends.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/wolfman30/propdesk-ai-platform/internal/chatbot"
	"github.com/wolfman30/propdesk-ai-platform/internal/conversation"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/notify"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

type options struct {
	agencyID   string
	sourcePage string
	propertyID string
	condoID    string
	logLevel   string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.agencyID, "agency", "demo-agency", "agency id the conversation belongs to")
	flag.StringVar(&opts.sourcePage, "page", "/", "page the widget is embedded on (e.g. /rentas/depa-12)")
	flag.StringVar(&opts.propertyID, "property", "", "property id from the page context")
	flag.StringVar(&opts.condoID, "condo", "", "condominium id from the page context")
	flag.StringVar(&opts.logLevel, "log-level", "error", "log level for the chatbot service")
	flag.Parse()

	if err := run(context.Background(), os.Stdin, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "chatsim: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	logger := logging.NewWithOptions(logging.Options{Level: opts.logLevel, Format: "text", Output: os.Stderr})
	store := conversation.NewMemoryStore()
	repo := leads.NewInMemoryRepository()
	notifier := notify.NewLeadEmailNotifier(notify.NewStubEmailSender(logger), nil, logger)
	svc := chatbot.NewService(store, chatbot.NewMaterializer(repo, notifier, nil, logger), chatbot.DefaultBrandCatalog(), nil, logger)

	rc := &chatbot.RequestContext{
		PropertyID:    opts.propertyID,
		CondominiumID: opts.condoID,
		SourcePage:    opts.sourcePage,
	}
	conv, err := svc.CreateConversation(ctx, opts.agencyID, "chatsim", rc)
	if err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}
	for _, msg := range conv.Messages {
		printBot(out, msg.Content, msg.QuickReplies)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}
		resp, err := svc.ProcessMessage(ctx, conv.ID, text, opts.agencyID, rc)
		if err != nil {
			return fmt.Errorf("process message: %w", err)
		}
		printBot(out, resp.Message, resp.QuickReplies)
		if resp.LeadID != "" {
			fmt.Fprintf(out, "  [lead %s]\n", resp.LeadID)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	created, err := repo.ListByAgency(ctx, opts.agencyID, leads.ListLeadsFilter{})
	if err != nil {
		return fmt.Errorf("list leads: %w", err)
	}
	fmt.Fprintf(out, "\n%d lead(s) created\n", len(created))
	for _, lead := range created {
		fmt.Fprintf(out, "- %s | %s | %s/%s\n", lead.FullName(), lead.Phone, lead.RegistrationType, lead.Purpose)
	}
	return nil
}

func printBot(out io.Writer, text string, replies []chatbot.QuickReply) {
	fmt.Fprintf(out, "bot: %s\n", text)
	for _, qr := range replies {
		fmt.Fprintf(out, "  [%s] %s\n", qr.Value, qr.Label)
	}
}
