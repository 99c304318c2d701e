package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RichardoC/ai-doctor/internal/db"
	"github.com/RichardoC/ai-doctor/internal/session"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const disclaimer = "Important: This chatbot is for education only and is not a substitute for professional medical advice, diagnosis, or treatment. In emergencies, call your local emergency number."

var (
	gatewayURL string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Private symptom chat with an AI health assistant",
	Long: `Chat about symptoms with an AI health assistant.

Replies come from the gateway's configured model. When the gateway cannot be
reached or returns an error, local rule-based suggestions are used instead.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&gatewayURL, "gateway", "g",
		envOrDefault("GATEWAY_URL", "http://localhost:8080/functions/v1/ai-doctor"), "gateway chat URL")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", os.Getenv("CHAT_DB_PATH"), "SQLite transcript file (disabled when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(historyCmd)
}

func newLogger() *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	logger, _ := cfg.Build()
	return logger
}

func runChat(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	defer logger.Sync()

	out := cmd.OutOrStdout()
	opts := session.Options{
		Logger: logger,
		Notifier: session.NotifierFunc(func(msg string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "! %s\n", msg)
		}),
	}

	var store *db.Database
	if dbPath != "" {
		var err error
		store, err = db.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open transcript database: %w", err)
		}
		defer store.Close()

		conv, err := store.CreateConversation(newConversationID(), "New chat")
		if err != nil {
			return err
		}
		opts.ConversationID = conv.ID
		opts.Recorder = store
	}

	chat := session.New(session.NewHTTPGateway(gatewayURL, nil), opts)

	fmt.Fprintln(out, disclaimer)
	fmt.Fprintln(out)
	for _, m := range chat.History() {
		fmt.Fprintf(out, "assistant> %s\n", m.Content)
	}

	titled := false
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := scanner.Text()
		reply, err := chat.Submit(context.Background(), text)
		if errors.Is(err, session.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "assistant> %s\n", reply.Content)

		if store != nil && !titled {
			titled = true
			if err := store.UpdateConversationTitle(chat.ConversationID(), title(text)); err != nil {
				logger.Warn("failed to set conversation title", zap.Error(err))
			}
		}
	}
}

// title shortens the first symptom description for the history listing.
func title(text string) string {
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return text
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
