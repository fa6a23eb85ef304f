// Command session-token mints a signed session token for local development,
// standing in for the external identity provider.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cli"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/session"
)

func main() {
	userID := flag.String("user", "", "user id (subject); a random UUID when empty")
	email := flag.String("email", "", "email shown in the page header")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, _ := cli.Bootstrap(applog.ComponentSession, nil)
	if len(cfg.SessionSecret) < 32 {
		fmt.Fprintln(os.Stderr, "session-token: SESSION_SECRET must be set to at least 32 bytes")
		os.Exit(1)
	}
	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "session-token: -ttl must be positive")
		os.Exit(2)
	}

	sub := *userID
	if sub == "" {
		sub = uuid.NewString()
	}

	raw, err := session.NewIssuer(cfg.SessionSecret).Issue(sub, *email, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "session-token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "user %s, expires %s\n", sub, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(raw)
}
