// Package store maps a books directory (YAML config plus CSV chart,
// journal and drafts) onto a fully wired accounting core. Opening a
// directory replays every posted entry through the posting engine, so
// balances and posting history are rebuilt rather than trusted from
// disk; corrupt books (duplicate journal numbers, unbalanced rows)
// fail the load instead of being silently repaired.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tillbook-dev/tillbook/internal/config"
	"github.com/tillbook-dev/tillbook/internal/ledger"
	"github.com/tillbook-dev/tillbook/internal/posting"
	"github.com/tillbook-dev/tillbook/internal/registry"
	"github.com/tillbook-dev/tillbook/internal/report"
)

const (
	ConfigFile  = "tillbook.yaml"
	AccountsDir = "accounts"
	ChartFile   = "accounts/chart-of-accounts.csv"
	JournalDir  = "journal"
	JournalFile = "journal/journal.csv"
	DraftsFile  = "journal/drafts.csv"
	LogsDir     = "logs"
)

// Books is an open books directory: the core wired together plus the
// config it was opened with.
type Books struct {
	Dir      string
	Config   *config.Config
	Registry *registry.Registry
	Journal  *ledger.Journal
	Engine   *posting.Engine
	Reports  *report.Service
}

// Open loads the books directory at dir into a wired core.
func Open(dir string) (*Books, error) {
	cfg, err := config.Load(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("opening books at %s: %w", dir, err)
	}

	reg := registry.New()
	jrn := ledger.New()
	engine := posting.NewEngine(reg, jrn)

	accounts, err := readCSVFile(filepath.Join(dir, ChartFile), ReadAccounts)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		a.Balance = 0 // replayed below
		if err := reg.Restore(a); err != nil {
			return nil, fmt.Errorf("loading chart of accounts: %w", err)
		}
	}
	if err := reg.VerifyLinks(); err != nil {
		return nil, fmt.Errorf("loading chart of accounts: %w", err)
	}

	posted, err := readCSVFile(filepath.Join(dir, JournalFile), ReadEntries)
	if err != nil {
		return nil, err
	}
	// Replay in journal-number order so the sequence check sees the
	// same order posting produced.
	sort.Slice(posted, func(i, j int) bool {
		return posted[i].JournalNumber < posted[j].JournalNumber
	})
	for _, e := range posted {
		if err := engine.Restore(e); err != nil {
			return nil, fmt.Errorf("loading journal: %w", err)
		}
	}

	drafts, err := readCSVFile(filepath.Join(dir, DraftsFile), ReadEntries)
	if err != nil {
		return nil, err
	}
	for _, e := range drafts {
		if err := engine.RestoreDraft(e); err != nil {
			return nil, fmt.Errorf("loading drafts: %w", err)
		}
	}

	return &Books{
		Dir:      dir,
		Config:   cfg,
		Registry: reg,
		Journal:  jrn,
		Engine:   engine,
		Reports:  report.NewService(reg, jrn, cfg.Reports.COGSAccounts),
	}, nil
}

// SaveAll writes the chart, journal and drafts back to disk.
func (b *Books) SaveAll() error {
	if err := os.MkdirAll(filepath.Join(b.Dir, AccountsDir), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(b.Dir, JournalDir), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	if err := writeCSVFile(filepath.Join(b.Dir, ChartFile), b.Registry.All(), WriteAccounts); err != nil {
		return err
	}
	if err := writeCSVFile(filepath.Join(b.Dir, JournalFile), b.Journal.All(), WriteEntries); err != nil {
		return err
	}
	return writeCSVFile(filepath.Join(b.Dir, DraftsFile), b.Engine.Drafts(), WriteEntries)
}

// Init scaffolds a new books directory with the default retail chart
// and returns it opened.
func Init(dir, businessName, currency string) (*Books, error) {
	for _, d := range []string{AccountsDir, JournalDir, LogsDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(businessName, currency)
	if err := config.Save(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	reg := registry.New()
	if err := seedChart(reg, DefaultChart()); err != nil {
		return nil, fmt.Errorf("seeding chart of accounts: %w", err)
	}

	jrn := ledger.New()
	b := &Books{
		Dir:      dir,
		Config:   cfg,
		Registry: reg,
		Journal:  jrn,
		Engine:   posting.NewEngine(reg, jrn),
		Reports:  report.NewService(reg, jrn, cfg.Reports.COGSAccounts),
	}
	if err := b.SaveAll(); err != nil {
		return nil, err
	}
	return b, nil
}

// seedChart adds seed accounts in order, resolving parent codes as it
// goes; seeds list parents before their children.
func seedChart(reg *registry.Registry, seeds []ChartSeed) error {
	for _, s := range seeds {
		p := registry.AddParams{
			Code:        s.Code,
			Name:        s.Name,
			Type:        s.Type,
			Description: s.Description,
		}
		if s.ParentCode != "" {
			parent, err := reg.ResolveByCode(s.ParentCode)
			if err != nil {
				return fmt.Errorf("seed %q: %w", s.Code, err)
			}
			p.ParentID = parent.ID
		}
		if _, err := reg.Add(p); err != nil {
			return fmt.Errorf("seed %q: %w", s.Code, err)
		}
	}
	return nil
}

// readCSVFile opens path and decodes it with read; a missing file is
// an empty result, matching a freshly initialized books dir.
func readCSVFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

func writeCSVFile[T any](path string, items []T, write func(io.Writer, []T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f, items); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
