// Command admintoken mints a short-lived admin JWT signed with
// ADMIN_JWT_SECRET. Leave -agency empty for a token that spans all agencies.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/wolfman30/propdesk-ai-platform/internal/config"
	httpmiddleware "github.com/wolfman30/propdesk-ai-platform/internal/http/middleware"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "ops", "token subject")
	agencyID := flag.String("agency", "", "restrict the token to one agency")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg := appconfig.Load()
	token, err := mint(cfg.AdminJWTSecret, *subject, *agencyID, *ttl, time.Now())
	if err != nil {
		log.Fatalf("admintoken: %v", err)
	}
	fmt.Println(token)
}

func mint(secret, subject, agencyID string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	return httpmiddleware.SignAdminToken(secret, subject, agencyID, now.Add(ttl))
}
