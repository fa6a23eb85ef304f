// Command expense-report prints the analytics summary of one user's expenses
// to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/analytics"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/backend"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/cli"
	"github.com/aadhiseshansscse/ExpenseTrackerapp/internal/core"
	applog "github.com/aadhiseshansscse/ExpenseTrackerapp/internal/log"
)

func main() {
	userID := flag.String("user", "", "owner whose expenses are summarized (required)")
	todayFlag := flag.String("today", "", "reference date YYYY-MM-DD for the 30-day window (default: today)")
	flag.Parse()

	cfg, logger := cli.Bootstrap(applog.ComponentReport, nil)

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "expense-report: -user is required")
		flag.Usage()
		os.Exit(2)
	}

	today := core.DateOf(time.Now())
	if *todayFlag != "" {
		d, err := core.ParseDate(*todayFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "expense-report: %v\n", err)
			os.Exit(2)
		}
		today = d
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	// The report only reads; never publish events from here.
	backendCfg.AMQPURL = ""

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := backend.NewOpener(logger).Open(ctx, backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to open record store", err, "backend", cfg.DataBackend)
	}
	defer res.Close()

	items, err := res.Store.ListExpenses(ctx, *userID)
	if err != nil {
		cli.Fatal(logger, "Failed to list expenses", err, applog.FieldUserID, *userID)
	}

	sum, ok := analytics.Summarize(items, today)
	fmt.Println(render(*userID, sum, ok))
}
