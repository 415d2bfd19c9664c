package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mjholloway/coinsort/internal/common"
	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/normalize"
	"github.com/mjholloway/coinsort/internal/rules"
	"github.com/mjholloway/coinsort/internal/storage"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage keyword categorization rules",
		Long: `Rules map a keyword to a category. During an import, rules are evaluated
newest first and the first match decides the category, ahead of every other
signal source.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ruleset, err := store.Rules(ctx)
			if err != nil {
				return err
			}
			if len(ruleset) == 0 {
				fmt.Println("No rules yet - add one with 'coinsort rules add'")
				return nil
			}
			rules.SortNewestFirst(ruleset)

			categoryNames, err := categoryNamesByID(ctx, store)
			if err != nil {
				return err
			}

			fmt.Println(titleStyle.Render("Rules"))
			for _, r := range ruleset {
				categoryName := r.CategoryID
				if name, ok := categoryNames[r.CategoryID]; ok {
					categoryName = name
				}
				fmt.Printf("  %-20s %s %q -> %s %s\n",
					r.Name, r.Mode, r.Keyword, categoryName,
					sourceStyle.Render("("+string(r.AppliesTo)+")"))
			}
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a rule mapping a keyword to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyword, _ := cmd.Flags().GetString("keyword")
			categoryName, _ := cmd.Flags().GetString("category")
			modeFlag, _ := cmd.Flags().GetString("mode")
			scopeFlag, _ := cmd.Flags().GetString("applies-to")

			mode, err := parseMatchMode(modeFlag)
			if err != nil {
				return err
			}
			scope, err := parseRuleScope(scopeFlag)
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			category, err := findCategoryByName(ctx, store, categoryName)
			if err != nil {
				return err
			}

			ruleset, err := store.Rules(ctx)
			if err != nil {
				return err
			}

			ruleset = append(ruleset, model.CategoryRule{
				Name:       args[0],
				Keyword:    keyword,
				CategoryID: category.ID,
				Mode:       mode,
				AppliesTo:  scope,
			})
			if err := store.SaveRules(ctx, ruleset); err != nil {
				return err
			}

			fmt.Printf("Rule %q: %s %q -> %s\n", args[0], mode, keyword, category.Name)
			return nil
		},
	}

	cmd.Flags().StringP("keyword", "k", "", "keyword to match against descriptions (required)")
	cmd.Flags().StringP("category", "c", "", "target category name (required)")
	cmd.Flags().StringP("mode", "m", "contains", "match mode (contains, startsWith, endsWith)")
	cmd.Flags().String("applies-to", "ALL", "transaction types the rule covers (ALL, EXPENSE, INCOME)")
	_ = cmd.MarkFlagRequired("keyword")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a rule by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			ruleset, err := store.Rules(ctx)
			if err != nil {
				return err
			}

			kept := ruleset[:0]
			removed := 0
			for _, r := range ruleset {
				if r.Name == args[0] {
					removed++
					continue
				}
				kept = append(kept, r)
			}
			if removed == 0 {
				return common.NewUserError(fmt.Sprintf("no rule named %q", args[0]), common.ErrNotFound)
			}

			if err := store.SaveRules(ctx, kept); err != nil {
				return err
			}

			fmt.Printf("Deleted %d rule(s) named %q\n", removed, args[0])
			return nil
		},
	}
}

// findCategoryByName matches by normalized name so "cafe madrid" finds
// "Café Madrid".
func findCategoryByName(ctx context.Context, store *storage.SQLiteStorage, name string) (*model.Category, error) {
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, err
	}

	key := normalize.Key(name)
	for i := range categories {
		if normalize.Key(categories[i].Name) == key {
			return &categories[i], nil
		}
	}
	return nil, common.NewUserError(fmt.Sprintf("no category named %q", name), common.ErrNotFound)
}

func categoryNamesByID(ctx context.Context, store *storage.SQLiteStorage) (map[string]string, error) {
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

func parseMatchMode(s string) (model.MatchMode, error) {
	switch s {
	case string(model.MatchContains):
		return model.MatchContains, nil
	case string(model.MatchStartsWith):
		return model.MatchStartsWith, nil
	case string(model.MatchEndsWith):
		return model.MatchEndsWith, nil
	}
	return "", fmt.Errorf("invalid match mode %q: expected contains, startsWith, or endsWith", s)
}

func parseRuleScope(s string) (model.RuleScope, error) {
	switch model.RuleScope(strings.ToUpper(s)) {
	case model.ScopeAll:
		return model.ScopeAll, nil
	case model.ScopeExpense:
		return model.ScopeExpense, nil
	case model.ScopeIncome:
		return model.ScopeIncome, nil
	}
	return "", fmt.Errorf("invalid scope %q: expected ALL, EXPENSE, or INCOME", s)
}
