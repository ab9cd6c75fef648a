package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/kiosk"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run a full-screen punch terminal",
	Long: `kiosk turns the terminal into a shared punch clock: employees type their
id, press enter, then i (clock in), o (clock out), b (break start) or
e (break end). Press ctrl+c to quit.`,
	Args: cobra.NoArgs,
	RunE: runKiosk,
}

func runKiosk(cmd *cobra.Command, args []string) error {
	store := openStore()
	defer store.Close()

	m := kiosk.New(ctx(cmd), store, classifier())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
