package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/msgraph"
	"github.com/Tiliavir/tick/internal/roster"
)

var rosterSyncDryRun bool

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the employee roster",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge employees from a CSV, XLSX, JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterImport,
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Args:  cobra.NoArgs,
	RunE:  runRosterList,
}

var rosterSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync employees from Microsoft Entra ID (Graph API)",
	Args:  cobra.NoArgs,
	RunE:  runRosterSync,
}

func init() {
	rosterSyncCmd.Flags().BoolVar(&rosterSyncDryRun, "dry-run", false, "Print planned changes without writing")
	rosterCmd.AddCommand(rosterImportCmd, rosterListCmd, rosterSyncCmd)
}

func runRosterImport(cmd *cobra.Command, args []string) error {
	incoming, err := roster.ImportFile(args[0])
	if err != nil {
		fail(exitUsage, err)
	}

	store := openStore()
	defer store.Close()

	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}
	r := roster.New(employees)
	res := r.Merge(incoming)
	if err := store.SaveRoster(ctx(cmd), r.All()); err != nil {
		fail(exitStorage, err)
	}

	fmt.Fprintf(out(cmd), "Imported %s: %d added, %d updated, %d unchanged\n", args[0], res.Added, res.Updated, res.Unchanged)
	return nil
}

func runRosterList(cmd *cobra.Command, args []string) error {
	store := openStore()
	defer store.Close()

	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}
	w := out(cmd)
	if len(employees) == 0 {
		fmt.Fprintln(w, "Roster is empty.")
		return nil
	}
	for _, e := range roster.New(employees).All() {
		fmt.Fprintf(w, "%-12s %-24s %-16s %s\n", e.ID, e.Name, e.Department, e.Source)
	}
	return nil
}

func runRosterSync(cmd *cobra.Command, args []string) error {
	w := out(cmd)
	dryTag := ""
	if rosterSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(w, "Syncing employees from the directory%s...\n\n", dryTag)

	auth := msgraph.Authenticator{
		Home:     cfg.Home,
		TenantID: cfg.Directory.TenantID,
		ClientID: cfg.Directory.ClientID,
		Out:      w,
	}
	ts, err := auth.Authenticate(ctx(cmd))
	if err != nil {
		fail(exitUsage, fmt.Errorf("authentication failed: %w", err))
	}

	users, err := msgraph.NewClient(ctx(cmd), ts).ListUsers(ctx(cmd))
	if err != nil {
		fail(exitUsage, fmt.Errorf("failed to fetch users: %w", err))
	}

	store := openStore()
	defer store.Close()

	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}
	r := roster.New(employees)
	result := msgraph.SyncUsers(users, r, msgraph.SyncOptions{DryRun: rosterSyncDryRun, Out: w})
	if !rosterSyncDryRun {
		if err := store.SaveRoster(ctx(cmd), r.All()); err != nil {
			fail(exitStorage, err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d imported\n", result.Imported)
	fmt.Fprintf(w, "  %d updated\n", result.Updated)
	fmt.Fprintf(w, "  %d unchanged\n", result.Unchanged)
	fmt.Fprintf(w, "  %d skipped\n", result.Skipped)
	return nil
}
