package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pbaille/taxon/internal/api"
	"github.com/pbaille/taxon/internal/belief"
	"github.com/pbaille/taxon/internal/classifier"
	"github.com/pbaille/taxon/internal/config"
	"github.com/pbaille/taxon/internal/domain"
	"github.com/pbaille/taxon/internal/embedding"
	"github.com/pbaille/taxon/internal/fetcher"
	"github.com/pbaille/taxon/internal/logger"
	"github.com/pbaille/taxon/internal/store"
)

var (
	dbPath  string
	verbose bool
	cfg     *config.Config
)

func main() {
	// Optional .env for API keys
	godotenv.Load()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "taxon",
		Short: "Knowledge-base classification into semantic domains",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(beliefsCmd())
	rootCmd.AddCommand(countCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

// readInput resolves the raw blob: a file argument, a URL, or stdin.
func readInput(args []string, rawURL string) (string, error) {
	if rawURL != "" {
		logger.Debug("fetching %s", rawURL)
		return fetcher.Fetch(rawURL)
	}
	if len(args) > 0 {
		if fetcher.IsURL(args[0]) {
			return fetcher.Fetch(args[0])
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func classifyCmd() *cobra.Command {
	var rawURL string
	var statsOnly bool

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify a knowledge base (file, --url, or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args, rawURL)
			if err != nil {
				return err
			}

			result := classifier.Classify(raw)

			if len(result.Entries) == 0 {
				fmt.Println("No entries recognized.")
				return nil
			}

			if !statsOnly {
				for _, e := range result.Entries {
					printEntry(e)
				}
				fmt.Println()
			}

			printStats(result.Stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "fetch the knowledge base from a URL")
	cmd.Flags().BoolVar(&statsOnly, "stats", false, "print only the category statistics")
	return cmd
}

func beliefsCmd() *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:   "beliefs [file]",
		Short: "List entries of a belief ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args, rawURL)
			if err != nil {
				return err
			}

			entries := belief.Parse(raw)
			if len(entries) == 0 {
				fmt.Println("No beliefs recognized.")
				return nil
			}

			for _, b := range entries {
				line := fmt.Sprintf("%-16s %s", b.ID, truncate(b.Description, 60))
				if b.CertaintyLabel != "" {
					line += fmt.Sprintf("  [%s]", b.CertaintyLabel)
				}
				fmt.Println(line)
			}
			fmt.Printf("\n%d beliefs\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "fetch the ledger from a URL")
	return cmd
}

func countCmd() *cobra.Command {
	var rawURL string

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Count top-level entries of a hash index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args, rawURL)
			if err != nil {
				return err
			}
			fmt.Println(belief.CountHashIndex(raw))
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "fetch the index from a URL")
	return cmd
}

func importCmd() *cobra.Command {
	var rawURL string
	var noEmbed bool

	cmd := &cobra.Command{
		Use:   "import [name] [file]",
		Short: "Classify a knowledge base and store the snapshot",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			raw, err := readInput(args[1:], rawURL)
			if err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			result := classifier.Classify(raw)
			kb, stored, err := s.AddKnowledgeBase(name, raw, result.Entries, result.Stats)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %s: %s (%d entries)\n", kb.ID[:8], kb.Name, len(result.Entries))
			printStats(result.Stats)

			// Embedding is optional enrichment, never a failure.
			if noEmbed || len(stored) == 0 {
				return nil
			}
			embSvc, err := embedding.New(cfg.EmbedModel)
			if err != nil {
				logger.Debug("embeddings skipped: %v", err)
				return nil
			}
			entries := make([]domain.KnowledgeEntry, len(stored))
			for i, se := range stored {
				entries[i] = se.Entry
			}
			fmt.Print("Embedding... ")
			vectors, err := embSvc.EmbedEntries(entries)
			if err != nil {
				fmt.Printf("failed: %v\n", err)
				return nil
			}
			for i, se := range stored {
				if err := s.SaveEmbedding(se.RowID, vectors[i], embSvc.Model()); err != nil {
					logger.Warn("save embedding: %v", err)
				}
			}
			fmt.Printf("done (%d vectors)\n", len(vectors))
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "fetch the knowledge base from a URL")
	cmd.Flags().BoolVar(&noEmbed, "no-embed", false, "skip embedding generation")
	return cmd
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored knowledge bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			kbs, err := s.ListKnowledgeBases(limit, 0)
			if err != nil {
				return err
			}

			if len(kbs) == 0 {
				fmt.Println("No knowledge bases yet. Use 'taxon import' to add one.")
				return nil
			}

			for _, kb := range kbs {
				fmt.Printf("%s  %s  %s\n", kb.ID[:8], kb.CreatedAt.Format("2006-01-02 15:04"), truncate(kb.Name, 50))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of knowledge bases to show")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a stored knowledge base with its stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			// Find by prefix
			kbs, err := s.ListKnowledgeBases(100, 0)
			if err != nil {
				return err
			}

			var found *string
			for _, kb := range kbs {
				if strings.HasPrefix(kb.ID, args[0]) {
					found = &kb.ID
					break
				}
			}

			if found == nil {
				return fmt.Errorf("knowledge base not found: %s", args[0])
			}

			kb, err := s.GetKnowledgeBase(*found)
			if err != nil {
				return err
			}

			entries, err := s.ListEntries(kb.ID)
			if err != nil {
				return err
			}

			stats, err := s.GetStats(kb.ID)
			if err != nil {
				return err
			}

			fmt.Printf("ID:       %s\n", kb.ID)
			fmt.Printf("Name:     %s\n", kb.Name)
			fmt.Printf("Imported: %s\n", kb.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Printf("Entries:  %d\n\n", len(entries))

			for _, se := range entries {
				printEntry(se.Entry)
			}
			fmt.Println()
			printStats(stats)

			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.SearchEntries(args[0])
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No matching entries found.")
				return nil
			}

			for _, se := range entries {
				printEntry(se.Entry)
			}

			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			server := api.New(s, addr, cfg.EmbedModel)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", cfg.Addr, "server address")
	return cmd
}

func printEntry(e domain.KnowledgeEntry) {
	line := fmt.Sprintf("%-14s %-12s %s", e.Label, e.ID, truncate(e.Name, 50))
	if len(e.Tags) > 0 {
		line += "  [" + strings.Join(e.Tags, ", ") + "]"
	}
	fmt.Println(line)
}

func printStats(stats []domain.CategoryStatistic) {
	for _, st := range stats {
		fmt.Printf("%-14s %4d  %5.1f%%  %s\n", st.Label, st.Count, st.Percentage, st.Description)
	}
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
