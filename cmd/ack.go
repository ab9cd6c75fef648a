package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/model"
)

var (
	ackBy   string
	ackNote string
)

var ackCmd = &cobra.Command{
	Use:   "ack <key>",
	Short: "Acknowledge a finding so it no longer shows as open",
	Args:  cobra.ExactArgs(1),
	RunE:  runAck,
}

func init() {
	ackCmd.Flags().StringVar(&ackBy, "by", "", "Who acknowledged the finding")
	ackCmd.Flags().StringVar(&ackNote, "note", "", "Optional note")
}

func runAck(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(args[0])
	if key == "" {
		fail(exitUsage, fmt.Errorf("finding key is required"))
	}

	store := openStore()
	defer store.Close()

	ack := model.Acknowledgement{Key: key, AcknowledgedAt: nowFunc(), By: ackBy, Note: ackNote}
	if err := store.Acknowledge(ctx(cmd), ack); err != nil {
		fail(exitStorage, err)
	}
	fmt.Fprintf(out(cmd), "Acknowledged %s\n", key)
	return nil
}
