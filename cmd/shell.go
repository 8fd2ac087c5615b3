package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rmgil/go-poker-metrics/internal/report"
	"github.com/rmgil/go-poker-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("pokermetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("pokermetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "runs":
			shellRuns(db)
		case "hands":
			shellHands(db, args)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <hand-id-prefix>")
				continue
			}
			shellShow(db, args[0])
		case "months":
			shellMonths(db)
		case "sql":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			shellSQL(db, strings.Join(args, " "))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"runs", "list all stored parse runs"},
		{"hands [site] [month] [limit]", "list stored hands, optionally filtered"},
		{"show <hand-id-prefix>", "print one hand's full action script"},
		{"months", "rolled-up hand counts per month and room"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellRuns(db *storage.DB) {
	runs, err := db.ListRuns()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(runs) == 0 {
		cMuted.Println("No runs stored yet.")
		return
	}
	report.PrintRunsTable(os.Stdout, runs)
}

// shellHands accepts positional filters: anything with a '-' is a month
// bucket, a plain number is the row limit, the rest is a room name.
func shellHands(db *storage.DB, args []string) {
	site, month := "", ""
	limit := 50
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			limit = n
			continue
		}
		if strings.Contains(arg, "-") || arg == "unknown" {
			month = arg
			continue
		}
		site = arg
	}

	rows, err := db.ListHands(site, month, limit)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("No hands matched.")
		return
	}
	report.PrintHandsTable(os.Stdout, rows)
}

func shellShow(db *storage.DB, prefix string) {
	h, err := db.GetHandByPrefix(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if h == nil {
		cWarn.Fprintf(os.Stderr, "no hand found with prefix %q\n", prefix)
		return
	}
	report.PrintHandDetail(os.Stdout, h)
}

func shellMonths(db *storage.DB) {
	rows, err := db.SummaryByMonthSite()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("No hands stored yet.")
		return
	}
	report.PrintMonthSiteSummary(os.Stdout, rows)
}

func shellSQL(db *storage.DB, query string) {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("(no rows)")
		return
	}
	cHeader.Println(strings.Join(cols, "  |  "))
	for _, row := range rows {
		fmt.Println(strings.Join(row, "  |  "))
	}
	fmt.Printf("\n(%d rows)\n", len(rows))
}
