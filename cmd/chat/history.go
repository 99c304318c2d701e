package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/RichardoC/ai-doctor/internal/db"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyDelete bool
)

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "List saved conversations, print one transcript, or delete it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum messages to print")
	historyCmd.Flags().BoolVar(&historyDelete, "delete", false, "delete the named conversation and its messages")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if dbPath == "" {
		return errors.New("--db or CHAT_DB_PATH is required")
	}

	store, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open transcript database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if historyDelete {
		if len(args) == 0 {
			return errors.New("--delete needs a conversation id")
		}
		if err := store.DeleteConversation(args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation %s: %w", args[0], err)
		}
		fmt.Fprintf(out, "deleted %s\n", args[0])
		return nil
	}

	if len(args) == 0 {
		conversations, err := store.GetConversations()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tTITLE")
		for _, c := range conversations {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Title)
		}
		return w.Flush()
	}

	messages, err := store.GetConversationHistory(args[0], historyLimit)
	if err != nil {
		return err
	}
	for _, m := range messages {
		fmt.Fprintf(out, "%s> %s\n", m.Role, m.Content)
	}
	return nil
}

func newConversationID() string {
	return uuid.NewString()
}
