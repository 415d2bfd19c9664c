package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mjholloway/coinsort/internal/engine"
	"github.com/mjholloway/coinsort/internal/model"
	"github.com/mjholloway/coinsort/internal/preview"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	duplicateMark = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("dup")
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	incomeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	expenseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement into the ledger",
		Long: `Parse a statement export, categorize every transaction, and commit the
selection to the ledger.

Categories are resolved per transaction from, in priority order: your keyword
rules, your own categorization history, the statement's category hints, and
name matching against existing categories. Remaining gaps are closed by
creating the missing categories, unless --no-autocreate is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("account", "a", "", "account the statement belongs to (required)")
	cmd.Flags().String("format", "", "statement format (csv, ofx); detected from the file name when omitted")
	cmd.Flags().Bool("no-autocreate", false, "do not create missing categories")
	cmd.Flags().BoolP("dry-run", "d", false, "show the categorized preview without committing")
	cmd.Flags().BoolP("verbose", "v", false, "list every previewed transaction")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accountID, _ := cmd.Flags().GetString("account")
	formatFlag, _ := cmd.Flags().GetString("format")
	noAutocreate, _ := cmd.Flags().GetBool("no-autocreate")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	format := preview.Format(formatFlag)
	if formatFlag == "" {
		detected, err := preview.DetectFormat(args[0])
		if err != nil {
			return err
		}
		format = detected
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer f.Close()

	prev, err := preview.NewPreviewer(store).Preview(ctx, f, format, accountID)
	if err != nil {
		return err
	}

	session := engine.NewSession(store, store, accountID)
	if err := session.Load(ctx, prev); err != nil {
		return err
	}

	if !noAutocreate {
		session.AutocreateCategories(ctx)
	}

	if verbose {
		printPreviewTable(session)
	}
	printPreviewSummary(session)

	if dryRun {
		fmt.Println("Dry run complete - nothing committed")
		return nil
	}

	chunkCount := (session.SelectedCount() + engine.ChunkSize - 1) / engine.ChunkSize
	bar := progressbar.NewOptions(chunkCount,
		progressbar.OptionSetDescription("Committing"),
		progressbar.OptionClearOnFinish(),
	)

	result, err := session.Commit(ctx, func(p engine.Progress) {
		_ = bar.Set(p.Current)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || result.Imported == 0 {
			return err
		}
		// Chunks already committed stay committed; a retry is safe because
		// their rows will come back flagged as duplicates.
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"Import failed partway: %d transactions were already committed. Re-run the import to finish; committed rows will be skipped as duplicates.",
			result.Imported)))
		return err
	}

	printResult(result)
	return nil
}

func printPreviewTable(session *engine.Session) {
	categories := make(map[string]model.Category)
	for _, cat := range session.Categories() {
		categories[cat.ID] = cat
	}

	for _, txn := range session.Transactions() {
		sel, _ := session.Selection(txn.Hash)

		mark := " "
		if txn.IsDuplicate {
			mark = duplicateMark
		}

		categoryName := "-"
		if cat, ok := categories[sel.CategoryID]; ok {
			categoryName = cat.Name
		}
		if src, ok := session.Source(txn.Hash); ok {
			categoryName += " " + sourceStyle.Render("("+string(src)+")")
		}

		amount := txn.Amount.StringFixed(2)
		if txn.Type == model.TypeExpense {
			amount = expenseStyle.Render("-" + amount)
		} else {
			amount = incomeStyle.Render("+" + amount)
		}

		fmt.Printf("%s  %s  %10s  %-40.40s  %s\n",
			mark, txn.Date.Format("2006-01-02"), amount, txn.Description, categoryName)
	}
}

func printPreviewSummary(session *engine.Session) {
	prev := session.Preview()
	fmt.Println(titleStyle.Render("Statement preview"))
	fmt.Printf("  transactions: %d  duplicates: %d  selected: %d  uncategorized: %d\n",
		prev.TotalTransactions, prev.DuplicatesFound, session.SelectedCount(), session.UncategorizedCount())
	fmt.Printf("  income: %s  expenses: %s  range: %s to %s\n",
		incomeStyle.Render(session.SelectedIncomeTotal().StringFixed(2)),
		expenseStyle.Render(session.SelectedExpenseTotal().StringFixed(2)),
		prev.DateRange.Start.Format("2006-01-02"),
		prev.DateRange.End.Format("2006-01-02"))
}

func printResult(result engine.Result) {
	fmt.Println(titleStyle.Render("Import complete"))
	fmt.Printf("  imported: %d  skipped: %d  duplicates: %d\n",
		result.Imported, result.Skipped, result.Duplicates)
}
