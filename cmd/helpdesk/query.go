package main

import (
	"context"
	"fmt"
	"strings"

	"helpengine/internal/domain"

	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var (
		category   string
		difficulty string
		priority   string
		tags       []string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the help catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := domain.NewSearchOptions().
				WithCategory(domain.Category(category)).
				WithDifficulty(domain.Difficulty(difficulty)).
				WithPriority(domain.Priority(priority)).
				WithMaxResults(limit)
			if len(tags) > 0 {
				opts = opts.WithTags(tags...)
			}

			return withSession(func(ctx context.Context, s *session) error {
				resp := s.engine.Search(strings.Join(args, " "), opts)
				if jsonOutput {
					return printJSON(resp)
				}
				if resp.Notice != "" {
					fmt.Printf("note: query %s\n", resp.Notice)
				}
				if len(resp.Results) == 0 {
					fmt.Printf("No help found for %q.\n", resp.Query)
					if sugg := s.engine.Suggest(resp.Query, 5); len(sugg) > 0 {
						fmt.Printf("Did you mean: %s\n", strings.Join(sugg, ", "))
					}
					return nil
				}
				for i, r := range resp.Results {
					fmt.Printf("%2d. %-22s %6.2f  %s [%s/%s] matched: %s\n",
						i+1, r.Entry.Key, r.Score, r.Entry.Title,
						r.Entry.Category, r.Entry.Difficulty, strings.Join(r.MatchedFields, ","))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only entries of this category")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "only entries of this difficulty")
	cmd.Flags().StringVar(&priority, "priority", "", "only entries of this priority")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "only entries carrying any of these tags")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default from config)")
	return cmd
}

func suggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest [prefix]",
		Short: "Complete a search term from indexed keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				sugg := s.engine.Suggest(args[0], limit)
				if jsonOutput {
					return printJSON(sugg)
				}
				for _, kw := range sugg {
					fmt.Println(kw)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum suggestions")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Show one help entry and its related topics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				e, ok := s.engine.Get(args[0])
				if !ok {
					return fmt.Errorf("no help entry %q", args[0])
				}
				related := s.engine.Related(args[0])
				if jsonOutput {
					return printJSON(map[string]any{"entry": e, "related": related})
				}
				printEntry(e)
				if len(related) > 0 {
					fmt.Println("\nRelated:")
					for _, r := range related {
						fmt.Printf("  - %s (%s)\n", r.Title, r.Key)
					}
				}
				return nil
			})
		},
	}
}

func printEntry(e domain.HelpEntry) {
	fmt.Printf("%s\n%s\n", e.Title, strings.Repeat("=", len(e.Title)))
	fmt.Printf("[%s | %s | %s]\n\n", e.Category, e.Priority, e.Difficulty)
	if e.Description != "" {
		fmt.Println(e.Description)
	}
	for i, st := range e.Steps {
		fmt.Printf("  %d. %s: %s\n", i+1, st.Title, st.Body)
	}
	for _, sec := range e.Sections {
		fmt.Printf("\n## %s\n%s\n", sec.Title, sec.Body)
	}
	for _, it := range e.Items {
		fmt.Printf("  [%s] %s: %s\n", it.Tag, it.Title, it.Body)
	}
	if tags := e.Tags(); len(tags) > 0 {
		fmt.Printf("\ntags: %s\n", strings.Join(tags, ", "))
	}
}

func browseCmd() *cobra.Command {
	var (
		category   string
		difficulty string
		priority   string
		index      int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List entries by category, difficulty or priority",
		Long: `Lists catalog entries through the secondary indexes. Exactly one of
--category, --difficulty or --priority is required. With --category and
--index, prints the index-th entry of that category.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, v := range []string{category, difficulty, priority} {
				if v != "" {
					set++
				}
			}
			if set != 1 {
				return fmt.Errorf("specify exactly one of --category, --difficulty, --priority")
			}

			return withSession(func(ctx context.Context, s *session) error {
				if category != "" && index >= 0 {
					e, ok := s.engine.ResolveContent(domain.Category(category), index)
					if !ok {
						return fmt.Errorf("no entry %d in category %q", index, category)
					}
					if jsonOutput {
						return printJSON(e)
					}
					printEntry(e)
					return nil
				}

				var entries []domain.HelpEntry
				switch {
				case category != "":
					entries = s.engine.GetByCategory(domain.Category(category))
				case difficulty != "":
					entries = s.engine.GetByDifficulty(domain.Difficulty(difficulty))
				default:
					entries = s.engine.GetByPriority(domain.Priority(priority))
				}
				if jsonOutput {
					return printJSON(entries)
				}
				for i, e := range entries {
					fmt.Printf("%2d. %-22s %s\n", i, e.Key, e.Title)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category to list")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty to list")
	cmd.Flags().StringVar(&priority, "priority", "", "priority to list")
	cmd.Flags().IntVar(&index, "index", -1, "with --category, show the entry at this position")
	return cmd
}
