package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mjholloway/coinsort/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.Categories(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Println("No categories yet - they are created on import, or with 'coinsort categories add'")
				return nil
			}

			fmt.Println(titleStyle.Render("Categories"))
			for _, cat := range categories {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
				fmt.Printf("  %s %-30s %s\n", swatch, cat.Name, sourceStyle.Render(string(cat.Type)))
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typeFlag, _ := cmd.Flags().GetString("type")

			txType, err := parseTransactionType(typeFlag)
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := store.CreateCategory(ctx, args[0], txType)
			if err != nil {
				return err
			}

			fmt.Printf("Category %q (%s)\n", cat.Name, cat.Type)
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "expense", "category type (expense, income)")

	return cmd
}

func parseTransactionType(s string) (model.TransactionType, error) {
	switch strings.ToLower(s) {
	case "expense":
		return model.TypeExpense, nil
	case "income":
		return model.TypeIncome, nil
	}
	return "", fmt.Errorf("invalid type %q: expected expense or income", s)
}
