// Command deepresearch runs web research agents from the terminal, inspects
// persisted research history and reports prompt token costs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gisard/deepresearch"
	"github.com/gisard/deepresearch/config"
	"github.com/gisard/deepresearch/db"
	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/research"
)

func buildRunCommand() *cobra.Command {
	var (
		agentKind     string
		threadID      string
		promptVariant string
		configPath    string
		verbose       bool
	)

	runCommand := &cobra.Command{
		Use:   "run [prompt...]",
		Short: "run a research query through the selected agent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")

			cfg, err := config.Load(func(o *config.LoadOptions) {
				if configPath != "" {
					o.Path = configPath
				}
				o.Logger = logging.New(logging.DefaultConfig())
			})
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			app, err := deepresearch.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			result, err := app.Run(cmd.Context(), agentKind, threadID, prompt,
				func(o *research.AgentOptions) {
					if promptVariant != "" {
						o.Prompt = research.MemoryPrompt(promptVariant)
					}
				})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderAnswer(result.Answer))
			if result.QueryID != 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "saved as query %d\n", result.QueryID)
			}
			return nil
		},
	}
	runCommand.Flags().StringVar(&agentKind, "agent", deepresearch.AgentSimple,
		"agent kind: simple, memory, sequential or parallel")
	runCommand.Flags().StringVar(&threadID, "thread", "default",
		"conversation thread id, reuse to continue a conversation")
	runCommand.Flags().StringVar(&promptVariant, "prompt", "",
		"system prompt variant: minimal, balanced or detailed (default per agent)")
	runCommand.Flags().StringVar(&configPath, "config", "",
		"path to a YAML config file (defaults to $CONFIG_FILE)")
	runCommand.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return runCommand
}

// renderAnswer pretty-prints answers that happen to be JSON documents.
func renderAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return answer
	}
	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return answer
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return answer
	}
	return string(pretty)
}

// historyRepo connects to the research database for the history subcommands.
func historyRepo(ctx context.Context) (*db.ResearchRepo, func() error, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, nil, errors.New("history requires DATABASE_URL to be set")
	}
	database, err := db.Connect(ctx, db.Config{URL: url})
	if err != nil {
		return nil, nil, err
	}
	return db.NewResearchRepo(database), database.Close, nil
}

func buildHistoryCommand() *cobra.Command {
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "inspect persisted research queries",
	}

	var (
		status string
		limit  int
	)
	listCommand := &cobra.Command{
		Use:   "list",
		Short: "list recent research queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := historyRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			queries, err := repo.ListQueries(cmd.Context(), status, limit)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no research queries recorded")
				return nil
			}
			for _, q := range queries {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %-10s  %s  %s\n",
					q.ID, q.Status, q.CreatedAt.Format("2006-01-02 15:04"), truncate(q.Query, 70))
			}
			return nil
		},
	}
	listCommand.Flags().StringVar(&status, "status", "", "filter by status (pending, processing, completed, failed)")
	listCommand.Flags().IntVar(&limit, "limit", 20, "maximum number of queries to list")

	showCommand := &cobra.Command{
		Use:   "show <id>",
		Short: "show a research query with its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid query id %q", args[0])
			}

			repo, closeDB, err := historyRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			q, err := repo.GetQuery(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "query %d (%s)\n", q.ID, q.Status)
			fmt.Fprintf(out, "asked:   %s\n", q.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "prompt:  %s\n\n", q.Query)
			for i, r := range q.Results {
				fmt.Fprintf(out, "--- result %d: %s ---\n%s\n", i+1, r.Title, r.Content)
				if r.SourceURL != nil {
					fmt.Fprintf(out, "source: %s\n", *r.SourceURL)
				}
			}
			return nil
		},
	}

	historyCommand.AddCommand(listCommand, showCommand)
	return historyCommand
}

func buildPromptsCommand() *cobra.Command {
	var (
		queriesPerDay int
		accurate      bool
	)

	promptsCommand := &cobra.Command{
		Use:   "prompts",
		Short: "list prompt variants with a token cost comparison",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := research.DefaultCostOptions()
			if queriesPerDay > 0 {
				opts.QueriesPerDay = queriesPerDay
			}
			opts.AccurateCounting = accurate

			costs := research.ComparePromptCosts(opts)
			fmt.Fprintln(cmd.OutOrStdout(), research.FormatCostReport(costs))
			return nil
		},
	}
	promptsCommand.Flags().IntVar(&queriesPerDay, "queries-per-day", 0,
		"expected daily query volume for the cost projection")
	promptsCommand.Flags().BoolVar(&accurate, "accurate", false,
		"use BPE token counting instead of the length heuristic")
	return promptsCommand
}

func setupRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "deepresearch",
		Short:         "Web research agents with search, memory and persistence",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		buildRunCommand(),
		buildHistoryCommand(),
		buildPromptsCommand(),
	)
	return root
}

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := setupRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "deepresearch: %v\n", err)
		os.Exit(1)
	}
}

// truncate shortens s for single-line listings.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
