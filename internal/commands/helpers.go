package commands

import (
	"fmt"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/audit"
	"github.com/tillbook-dev/tillbook/internal/gitops"
	"github.com/tillbook-dev/tillbook/internal/id"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/store"
)

const dateFormat = "2006-01-02"

// openBooks resolves the --dir flag and loads the books directory.
func openBooks(cmd *cobra.Command) (*store.Books, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return store.Open(absDir)
}

// saveAndRecord persists the books, appends the audit row, and commits
// the books dir when auto-commit is on. The commit hash, if any, ends
// up on the audit row.
func saveAndRecord(b *store.Books, action, subject, detail string) error {
	if err := b.SaveAll(); err != nil {
		return err
	}

	hash := ""
	if b.Config.Git.AutoCommit && gitops.IsRepo(b.Dir) {
		h, err := gitops.CommitAll(b.Dir, action+": "+detail,
			b.Config.Git.AuthorName, b.Config.Git.AuthorEmail)
		if err != nil {
			return fmt.Errorf("committing books: %w", err)
		}
		hash = h
	}

	return audit.Append(b.Dir, []audit.Entry{{
		Timestamp:  time.Now().UTC(),
		Actor:      currentActor(),
		Action:     action,
		Subject:    subject,
		Detail:     detail,
		CommitHash: hash,
	}})
}

func currentActor() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}

// resolveEntry accepts either an entry UUID or a journal number in
// "JRN-000042" (or bare digit) form.
func resolveEntry(b *store.Books, s string) (model.JournalEntry, error) {
	if eid, err := uuid.Parse(s); err == nil {
		return b.Engine.Get(eid)
	}
	n, err := id.ParseJournalNumber(s)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("%q is neither an entry ID nor a journal number", s)
	}
	return b.Journal.ByNumber(n)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// parseMonth parses "2025-06" into that month's first day.
func parseMonth(s string) (time.Time, error) {
	d, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return d, nil
}
