package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/id"
	"github.com/tillbook-dev/tillbook/internal/ledger"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/money"
	"github.com/tillbook-dev/tillbook/internal/posting"
	"github.com/tillbook-dev/tillbook/internal/store"
)

func newEntryCommand() *cobra.Command {
	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Journal entry operations",
	}
	entryCmd.AddCommand(newEntryDraftCommand())
	entryCmd.AddCommand(newEntryEditCommand())
	entryCmd.AddCommand(newEntryImportCommand())
	entryCmd.AddCommand(newEntrySubmitCommand())
	entryCmd.AddCommand(newEntryPostCommand())
	entryCmd.AddCommand(newEntryVoidCommand())
	entryCmd.AddCommand(newEntryDiscardCommand())
	entryCmd.AddCommand(newEntryListCommand())
	entryCmd.AddCommand(newEntryShowCommand())
	return entryCmd
}

// parseLineFlag parses one --line value: CODE:DEBIT:CREDIT[:DESCRIPTION].
// Exactly one of debit and credit may be non-empty.
func parseLineFlag(b *store.Books, s string) (model.JournalLine, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return model.JournalLine{}, fmt.Errorf("invalid line %q (want CODE:DEBIT:CREDIT[:DESCRIPTION])", s)
	}
	a, err := b.Registry.ResolveByCode(parts[0])
	if err != nil {
		return model.JournalLine{}, err
	}
	line := model.JournalLine{AccountID: a.ID}
	if parts[1] != "" {
		if line.Debit, err = money.Parse(parts[1]); err != nil {
			return model.JournalLine{}, fmt.Errorf("line %q: debit: %w", s, err)
		}
	}
	if parts[2] != "" {
		if line.Credit, err = money.Parse(parts[2]); err != nil {
			return model.JournalLine{}, fmt.Errorf("line %q: credit: %w", s, err)
		}
	}
	if len(parts) == 4 {
		line.Description = parts[3]
	}
	return line, nil
}

func newEntryDraftCommand() *cobra.Command {
	var (
		date      string
		reference string
		memo      string
		txnType   string
		lines     []string
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Create a draft journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}

			d, err := parseDate(date)
			if err != nil {
				return err
			}
			p := posting.DraftParams{
				Date:            d,
				Reference:       reference,
				Memo:            memo,
				TransactionType: model.TransactionType(txnType),
			}
			for _, l := range lines {
				line, err := parseLineFlag(b, l)
				if err != nil {
					return err
				}
				p.Lines = append(p.Lines, line)
			}

			e, err := b.Engine.CreateDraft(p)
			if err != nil {
				return err
			}
			if err := saveAndRecord(b, "entry.draft", e.ID.String(), e.Memo); err != nil {
				return err
			}
			cmd.Printf("Created draft %s (%d lines)\n", e.ID, len(e.Lines))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reference, "ref", "", "reference, e.g. an invoice number")
	cmd.Flags().StringVar(&memo, "memo", "", "entry memo")
	cmd.Flags().StringVar(&txnType, "type", "", "transaction type (general, sales, purchase, payment, receipt, adjustment)")
	cmd.Flags().StringSliceVar(&lines, "line", nil, "entry line as CODE:DEBIT:CREDIT[:DESCRIPTION], repeatable")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEntryEditCommand() *cobra.Command {
	var (
		date      string
		reference string
		memo      string
		txnType   string
		lines     []string
	)

	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Replace a draft entry's fields and lines",
		Long: `Edit replaces the reference, memo and lines of a draft or pending
entry with the given flags; omitted --line flags leave the entry with no
lines. Posted and voided entries cannot be edited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}

			p := posting.DraftParams{
				Reference:       reference,
				Memo:            memo,
				TransactionType: model.TransactionType(txnType),
			}
			if date != "" {
				if p.Date, err = parseDate(date); err != nil {
					return err
				}
			}
			for _, l := range lines {
				line, err := parseLineFlag(b, l)
				if err != nil {
					return err
				}
				p.Lines = append(p.Lines, line)
			}

			e, err = b.Engine.UpdateDraft(e.ID, p)
			if err != nil {
				return err
			}
			if err := saveAndRecord(b, "entry.edit", e.ID.String(), e.Memo); err != nil {
				return err
			}
			cmd.Printf("Updated draft %s (%d lines)\n", e.ID, len(e.Lines))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reference, "ref", "", "reference, e.g. an invoice number")
	cmd.Flags().StringVar(&memo, "memo", "", "entry memo")
	cmd.Flags().StringVar(&txnType, "type", "", "transaction type")
	cmd.Flags().StringSliceVar(&lines, "line", nil, "replacement line as CODE:DEBIT:CREDIT[:DESCRIPTION], repeatable")
	return cmd
}

func newEntryImportCommand() *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import journal entries from a CSV file as drafts",
		Long: `Import reads entries in the journal CSV format (one row per line,
rows sharing an entry_id forming one entry) and loads them as drafts.
With --post, each imported entry is validated and posted immediately;
the import stops at the first entry that fails validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			entries, err := store.ReadEntries(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			posted := 0
			for _, e := range entries {
				d, err := b.Engine.CreateDraft(posting.DraftParams{
					Date:            e.Date,
					Reference:       e.Reference,
					Memo:            e.Memo,
					TransactionType: e.TransactionType,
					Lines:           e.Lines,
				})
				if err != nil {
					return fmt.Errorf("importing entry %s: %w", e.Reference, err)
				}
				if post {
					stored, err := b.Engine.Post(d.ID)
					if err != nil {
						return fmt.Errorf("posting imported entry %s: %w", e.Reference, err)
					}
					posted++
					cmd.Printf("Posted %s %s\n", id.FormatJournalNumber(stored.JournalNumber), stored.Memo)
				}
			}
			detail := fmt.Sprintf("%d entries from %s", len(entries), args[0])
			if err := saveAndRecord(b, "entry.import", args[0], detail); err != nil {
				return err
			}
			if post {
				cmd.Printf("Imported and posted %d entries\n", posted)
			} else {
				cmd.Printf("Imported %d entries as drafts\n", len(entries))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "post each imported entry immediately")
	return cmd
}

func newEntrySubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <entry-id>",
		Short: "Move a draft entry to pending review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}
			e, err = b.Engine.Submit(e.ID)
			if err != nil {
				return err
			}
			if err := saveAndRecord(b, "entry.submit", e.ID.String(), e.Memo); err != nil {
				return err
			}
			cmd.Printf("Submitted %s for review\n", e.ID)
			return nil
		},
	}
}

func newEntryPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post <entry-id>",
		Short: "Validate and post an entry to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}
			stored, err := b.Engine.Post(e.ID)
			if err != nil {
				var verrs posting.ValidationErrors
				if errors.As(err, &verrs) {
					for _, v := range verrs {
						cmd.PrintErrf("  rule %d: %s\n", v.Rule, v.Description)
					}
				}
				return err
			}
			num := id.FormatJournalNumber(stored.JournalNumber)
			if err := saveAndRecord(b, "entry.post", num, stored.Memo); err != nil {
				return err
			}
			cmd.Printf("Posted %s (%s %s)\n", num, stored.Date.Format(dateFormat), stored.Memo)
			return nil
		},
	}
}

func newEntryVoidCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "void <entry-id>",
		Short: "Void a posted entry with a reversal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}
			reversal, err := b.Engine.Void(e.ID, reason)
			if err != nil {
				return err
			}
			num := id.FormatJournalNumber(e.JournalNumber)
			if err := saveAndRecord(b, "entry.void", num, reason); err != nil {
				return err
			}
			cmd.Printf("Voided %s; reversal posted as %s\n",
				num, id.FormatJournalNumber(reversal.JournalNumber))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the entry is being voided")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newEntryDiscardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <entry-id>",
		Short: "Delete a draft or pending entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}
			if err := b.Engine.Discard(e.ID); err != nil {
				return err
			}
			if err := saveAndRecord(b, "entry.discard", e.ID.String(), e.Memo); err != nil {
				return err
			}
			cmd.Printf("Discarded %s\n", e.ID)
			return nil
		},
	}
}

func newEntryListCommand() *cobra.Command {
	var (
		from    string
		to      string
		account string
		status  string
		txnType string
		drafts  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}

			if drafts {
				for _, e := range b.Engine.Drafts() {
					cmd.Printf("%s %-10s %-8s %-12s %s\n",
						e.Date.Format(dateFormat), e.Reference, e.Status, e.TransactionType, e.Memo)
				}
				return nil
			}

			var fromT, toT time.Time
			if from != "" {
				if fromT, err = parseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if toT, err = parseDate(to); err != nil {
					return err
				}
			}
			f := ledger.Filter{
				Status:          model.EntryStatus(status),
				TransactionType: model.TransactionType(txnType),
			}
			if account != "" {
				a, err := b.Registry.ResolveByCode(account)
				if err != nil {
					return err
				}
				f.AccountID = a.ID
			}

			var totalDebit, totalCredit int64
			for e := range b.Journal.Range(fromT, toT, f) {
				cmd.Printf("%s %s %-8s %14s  %s\n",
					id.FormatJournalNumber(e.JournalNumber), e.Date.Format(dateFormat),
					e.Status, money.Format(e.TotalDebit()), e.Memo)
				totalDebit += e.TotalDebit()
				totalCredit += e.TotalCredit()
			}
			cmd.Printf("%32s %14s / %s credits\n", "total debits",
				money.Format(totalDebit), money.Format(totalCredit))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&account, "account", "", "only entries touching this account code")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (posted, void)")
	cmd.Flags().StringVar(&txnType, "type", "", "filter by transaction type")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "list draft and pending entries instead")
	return cmd
}

func newEntryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show one entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			e, err := resolveEntry(b, args[0])
			if err != nil {
				return err
			}

			if e.JournalNumber > 0 {
				cmd.Printf("%s  ", id.FormatJournalNumber(e.JournalNumber))
			}
			cmd.Printf("%s  %s  %s\n", e.ID, e.Status, e.Date.Format(dateFormat))
			if e.Reference != "" {
				cmd.Printf("Reference: %s\n", e.Reference)
			}
			if e.Memo != "" {
				cmd.Printf("Memo:      %s\n", e.Memo)
			}
			if e.VoidReason != "" {
				cmd.Printf("Voided:    %s\n", e.VoidReason)
			}
			cmd.Println()
			for _, l := range e.Lines {
				a, err := b.Registry.Resolve(l.AccountID)
				code := l.AccountID.String()
				if err == nil {
					code = a.Code + " " + a.Name
				}
				debit, credit := "", ""
				if l.Debit > 0 {
					debit = money.Format(l.Debit)
				}
				if l.Credit > 0 {
					credit = money.Format(l.Credit)
				}
				cmd.Printf("  %-36s %14s %14s  %s\n", code, debit, credit, l.Description)
			}
			cmd.Printf("  %-36s %14s %14s\n", "",
				money.Format(e.TotalDebit()), money.Format(e.TotalCredit()))
			return nil
		},
	}
}
