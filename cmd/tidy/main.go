package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tidy-go/internal/app"
	"tidy-go/internal/config"
	"tidy-go/internal/model"
	"tidy-go/internal/tidy"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Apply").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Rule-driven file organizer",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Rules File: %s\n", cfg.RulesPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Rules File: %s\n", cfg.RulesPath)
		fmt.Printf("Trash Dir:  %s\n", cfg.Trash.Dir)
		fmt.Printf("History:    %s\n", cfg.History.Type)
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan DIRECTORY",
	Short: "Scan a directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		job, err := a.StartScan(args[0], func(count int, path string) {
			fmt.Printf("\r%d entries... %s", count, path)
		})
		if err != nil {
			return err
		}

		// Ctrl-C cancels the scan cooperatively; partial results are valid.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				job.Cancel()
			case <-job.Done():
			}
		}()

		result := job.Wait()
		fmt.Println()
		printScanResult(result)
		return nil
	},
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan DIRECTORY",
	Short: "Preview planned actions without touching any file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Plan")
		if err != nil {
			return err
		}
		defer a.Close()

		plan, result, err := a.BuildPlan(args[0])
		if err != nil {
			return err
		}

		printScanResult(result)
		printPlan(plan)
		return nil
	},
}

// apply command
var applyCmd = &cobra.Command{
	Use:   "apply DIRECTORY",
	Short: "Plan and, after approval, execute actions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("Apply")
		if err != nil {
			return err
		}
		defer a.Close()

		plan, result, err := a.BuildPlan(args[0])
		if err != nil {
			return err
		}

		printScanResult(result)
		printPlan(plan)
		if len(plan.Actions) == 0 {
			return nil
		}

		// Execution always needs an explicit approval; the engine never
		// runs a plan it produced on its own.
		if !yes {
			approved, err := confirm(fmt.Sprintf("Apply %d action(s)?", len(plan.Actions)))
			if err != nil {
				return err
			}
			if !approved {
				fmt.Println("Aborted; nothing was changed.")
				return nil
			}
		}

		log, session, err := a.Execute(result.Root, plan)
		if err != nil {
			return err
		}

		success, skipped, failed := 0, 0, 0
		for _, e := range log.Entries {
			switch e.Outcome {
			case model.OutcomeSuccess:
				success++
			case model.OutcomeSkipped:
				skipped++
			case model.OutcomeFailed:
				failed++
				fmt.Printf("failed: %s (%s)\n", e.Source, e.Message)
			}
		}
		fmt.Printf("Done: %d succeeded, %d skipped, %d failed.\n", success, skipped, failed)
		fmt.Printf("Session %s recorded; undo with: tidy undo %s\n", session.ID, session.ID)
		return nil
	},
}

// undo command
var undoCmd = &cobra.Command{
	Use:   "undo [SESSION-ID]",
	Short: "Undo a recorded session (most recent by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actionID, _ := cmd.Flags().GetString("item")

		a, err := newApp("Undo")
		if err != nil {
			return err
		}
		defer a.Close()

		var sessionID string
		if len(args) == 1 {
			sessionID = args[0]
		} else {
			latest, err := a.LatestSession()
			if err != nil {
				return err
			}
			if latest == nil {
				fmt.Println("No sessions recorded.")
				return nil
			}
			sessionID = latest.ID
		}

		if actionID != "" {
			entry, err := a.UndoItem(sessionID, actionID)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", entry.Outcome, entry.Message)
			return nil
		}

		result, err := a.UndoSession(sessionID)
		if err != nil {
			return err
		}
		fmt.Printf("Undo of session %s: %d restored, %d skipped, %d failed.\n",
			sessionID, result.Restored, result.Skipped, result.Failed)
		for _, e := range result.Entries {
			if e.Outcome != model.UndoRestored {
				fmt.Printf("  %s: %s\n", e.Outcome, e.Message)
			}
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Sessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("%s  %s  %s  %d item(s)\n",
				s.ID,
				s.Timestamp.Format("2006-01-02 15:04:05"),
				s.SourceDir,
				len(s.Items),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show SESSION-ID",
	Short: "Show the current state of one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("HistoryShow")
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.Session(args[0])
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session not found: %s", args[0])
		}

		for _, item := range tidy.CurrentState(*session) {
			marker := ""
			if item.CurrentPath != "" && !a.PathExists(item.CurrentPath) {
				marker = "  [missing]"
			}
			fmt.Printf("%s  %-7s  %-8s  %s -> %s%s\n",
				item.ActionID, item.Type, item.Phase, item.OriginalPath, item.CurrentPath, marker)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete SESSION-ID",
	Short: "Delete one session from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("HistoryDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("Session %s deleted.\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all sessions from the history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			approved, err := confirm("Delete all recorded sessions?")
			if err != nil {
				return err
			}
			if !approved {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp("HistoryClear")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearHistory(); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func printScanResult(result model.ScanResult) {
	fmt.Printf("Scanned %s: %d entries", result.Root, len(result.Files))
	if result.Cancelled {
		fmt.Print(" (cancelled, partial)")
	}
	fmt.Println()
	for _, e := range result.Errors {
		fmt.Printf("  error: %s: %s\n", e.Path, e.Message)
	}
}

func printPlan(plan model.Plan) {
	if len(plan.Actions) == 0 {
		fmt.Println("No actions planned.")
		return
	}
	for _, a := range plan.Actions {
		switch a.Type {
		case model.ActionDelete:
			fmt.Printf("  %-7s %s  (%s)\n", a.Type, a.File.Path, a.Reason)
		case model.ActionSkip:
			fmt.Printf("  %-7s %s  (%s)\n", a.Type, a.File.Path, a.Reason)
		default:
			fmt.Printf("  %-7s %s -> %s  (%s)\n", a.Type, a.File.Path, a.Destination, a.Reason)
		}
	}
}

// confirm asks the user for approval on stdin. A non-interactive stdin
// counts as "no": batch callers must pass --yes explicitly.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("stdin is not a terminal; pass --yes to approve non-interactively")
		return false, nil
	}

	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// history subcommands
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolP("yes", "y", false, "Approve the plan without prompting")
	rootCmd.AddCommand(undoCmd)
	undoCmd.Flags().String("item", "", "Undo only the action with this ID")
	rootCmd.AddCommand(historyCmd)
}
