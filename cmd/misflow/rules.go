package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgermill/misflow/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesEditCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesReviewCmd())
	cmd.AddCommand(rulesIgnoreCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List classification rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rules, err := store.ListRules(ctx)
			if err != nil {
				return err
			}
			model.SortRules(rules)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORIGIN\tPRIORITY\tKIND\tPATTERN\tCATEGORY\tUSED\tACTIVE")
			for _, rule := range rules {
				category := string(rule.Category)
				if rule.Subcategory != "" {
					category += "/" + rule.Subcategory
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%d\t%v\n",
					rule.ID, rule.Origin, rule.Priority, rule.Kind,
					rule.Pattern, category, rule.TimesUsed, rule.IsActive)
			}
			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Add a classification rule",
		Long: `Add a classification rule. User rules always win over system rules
regardless of priority; priority only orders rules within the same origin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			subcategory, _ := cmd.Flags().GetString("subcategory")
			kind, _ := cmd.Flags().GetString("kind")
			priority, _ := cmd.Flags().GetInt("priority")
			system, _ := cmd.Flags().GetBool("system")

			origin := model.RuleOriginUser
			if system {
				origin = model.RuleOriginSystem
			}

			rule := &model.Rule{
				Pattern:     args[0],
				Kind:        model.PatternKind(kind),
				Category:    model.CategoryID(category),
				Subcategory: subcategory,
				Origin:      origin,
				Confidence:  1,
				Priority:    priority,
				IsActive:    true,
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := store.CreateRule(ctx, rule); err != nil {
				return err
			}

			fmt.Printf("Created rule %d: %s %q -> %s\n", rule.ID, rule.Kind, rule.Pattern, rule.Category.DisplayLabel())
			return nil
		},
	}

	cmd.Flags().String("category", "", "Target category (required)")
	cmd.Flags().String("subcategory", "", "Optional subcategory")
	cmd.Flags().String("kind", string(model.PatternSubstring), "Match kind (exact, substring, regex)")
	cmd.Flags().Int("priority", 0, "Priority within origin (lower evaluates first)")
	cmd.Flags().Bool("system", false, "Create as a system rule instead of a user rule")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func rulesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a classification rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rules, err := store.ListRules(ctx)
			if err != nil {
				return err
			}
			var rule *model.Rule
			for i := range rules {
				if rules[i].ID == id {
					rule = &rules[i]
					break
				}
			}
			if rule == nil {
				return fmt.Errorf("rule %d not found", id)
			}

			if cmd.Flags().Changed("category") {
				category, _ := cmd.Flags().GetString("category")
				rule.Category = model.CategoryID(category)
			}
			if cmd.Flags().Changed("subcategory") {
				rule.Subcategory, _ = cmd.Flags().GetString("subcategory")
			}
			if cmd.Flags().Changed("pattern") {
				rule.Pattern, _ = cmd.Flags().GetString("pattern")
			}
			if cmd.Flags().Changed("priority") {
				rule.Priority, _ = cmd.Flags().GetInt("priority")
			}
			if cmd.Flags().Changed("active") {
				rule.IsActive, _ = cmd.Flags().GetBool("active")
			}

			if err := store.UpdateRule(ctx, rule); err != nil {
				return err
			}

			fmt.Printf("Updated rule %d\n", rule.ID)
			return nil
		},
	}

	cmd.Flags().String("category", "", "New target category")
	cmd.Flags().String("subcategory", "", "New subcategory")
	cmd.Flags().String("pattern", "", "New match pattern")
	cmd.Flags().Int("priority", 0, "New priority within origin")
	cmd.Flags().Bool("active", true, "Activate or deactivate the rule")
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a classification rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := store.DeleteRule(ctx, id); err != nil {
				return err
			}

			fmt.Printf("Deleted rule %d\n", id)
			return nil
		},
	}
}

func rulesReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <period>",
		Short: "List entries awaiting manual review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePeriodKey(args[0]); err != nil {
				return err
			}

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			entries, err := store.GetNeedsReview(ctx, args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Nothing awaiting review.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tACCOUNT\tDEBIT\tCREDIT\tREASON")
			for i := range entries {
				e := &entries[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Date.Format("2006-01-02"), e.AccountName,
					e.Debit.StringFixed(2), e.Credit.StringFixed(2),
					e.Classification.Reason)
			}
			return w.Flush()
		},
	}
}

func rulesIgnoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage auto-ignore keywords",
	}

	add := &cobra.Command{
		Use:   "add <keyword>",
		Short: "Add an auto-ignore keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")

			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rule := &model.AutoIgnoreRule{Keyword: args[0], Reason: reason}
			if err := store.CreateAutoIgnoreRule(ctx, rule); err != nil {
				return err
			}

			fmt.Printf("Created auto-ignore rule %d: %q\n", rule.ID, rule.Keyword)
			return nil
		},
	}
	add.Flags().String("reason", "", "Why matching entries are excluded (required)")
	_ = add.MarkFlagRequired("reason")

	list := &cobra.Command{
		Use:   "list",
		Short: "List auto-ignore keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rules, err := store.ListAutoIgnoreRules(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKEYWORD\tREASON")
			for _, rule := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\n", rule.ID, rule.Keyword, rule.Reason)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add)
	cmd.AddCommand(list)
	return cmd
}
