package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/money"
)

// One CSV row per journal line; the entry context repeats on each of
// its rows and consecutive rows with the same entry_id form one entry.
const (
	jrnNumFields  = 13
	jrnDateFormat = "2006-01-02"
	jrnColEntryID = 0
	jrnColNumber  = 1
	jrnColDate    = 2
	jrnColRef     = 3
	jrnColMemo    = 4
	jrnColTxnType = 5
	jrnColStatus  = 6
	jrnColVoidRsn = 7
	jrnColRevOf   = 8
	jrnColAcctID  = 9
	jrnColDesc    = 10
	jrnColDebit   = 11
	jrnColCredit  = 12
)

var jrnHeader = []string{
	"entry_id", "journal_number", "date", "reference", "memo",
	"transaction_type", "status", "void_reason", "reverses",
	"account_id", "line_description", "debit", "credit",
}

// ReadEntries reads a journal CSV, regrouping rows into entries.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = jrnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.JournalEntry
	var cur *model.JournalEntry
	for i, rec := range records[1:] {
		e, line, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if cur == nil || cur.ID != e.ID {
			entries = append(entries, e)
			cur = &entries[len(entries)-1]
		}
		cur.Lines = append(cur.Lines, line)
	}
	return entries, nil
}

// WriteEntries writes entries to a journal CSV, one row per line.
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(jrnHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		for _, l := range e.Lines {
			if err := cw.Write(marshalRow(e, l)); err != nil {
				return fmt.Errorf("writing entry %s: %w", e.ID, err)
			}
		}
	}
	return cw.Error()
}

func marshalRow(e model.JournalEntry, l model.JournalLine) []string {
	row := make([]string, jrnNumFields)
	row[jrnColEntryID] = e.ID.String()
	if e.JournalNumber > 0 {
		row[jrnColNumber] = strconv.FormatInt(e.JournalNumber, 10)
	}
	row[jrnColDate] = e.Date.Format(jrnDateFormat)
	row[jrnColRef] = e.Reference
	row[jrnColMemo] = e.Memo
	row[jrnColTxnType] = string(e.TransactionType)
	row[jrnColStatus] = string(e.Status)
	row[jrnColVoidRsn] = e.VoidReason
	if e.Reverses != uuid.Nil {
		row[jrnColRevOf] = e.Reverses.String()
	}
	row[jrnColAcctID] = l.AccountID.String()
	row[jrnColDesc] = l.Description
	if l.Debit != 0 {
		row[jrnColDebit] = money.Format(l.Debit)
	}
	if l.Credit != 0 {
		row[jrnColCredit] = money.Format(l.Credit)
	}
	return row
}

func unmarshalRow(record []string) (model.JournalEntry, model.JournalLine, error) {
	var e model.JournalEntry
	var l model.JournalLine

	entryID, err := uuid.Parse(record[jrnColEntryID])
	if err != nil {
		return e, l, fmt.Errorf("parsing entry_id %q: %w", record[jrnColEntryID], err)
	}
	e.ID = entryID

	if record[jrnColNumber] != "" {
		n, err := strconv.ParseInt(record[jrnColNumber], 10, 64)
		if err != nil {
			return e, l, fmt.Errorf("parsing journal_number %q: %w", record[jrnColNumber], err)
		}
		e.JournalNumber = n
	}

	e.Date, err = time.Parse(jrnDateFormat, record[jrnColDate])
	if err != nil {
		return e, l, fmt.Errorf("parsing date %q: %w", record[jrnColDate], err)
	}

	e.Reference = record[jrnColRef]
	e.Memo = record[jrnColMemo]
	e.TransactionType = model.TransactionType(record[jrnColTxnType])
	e.Status = model.EntryStatus(record[jrnColStatus])
	e.VoidReason = record[jrnColVoidRsn]

	if record[jrnColRevOf] != "" {
		e.Reverses, err = uuid.Parse(record[jrnColRevOf])
		if err != nil {
			return e, l, fmt.Errorf("parsing reverses %q: %w", record[jrnColRevOf], err)
		}
	}

	l.AccountID, err = uuid.Parse(record[jrnColAcctID])
	if err != nil {
		return e, l, fmt.Errorf("parsing account_id %q: %w", record[jrnColAcctID], err)
	}
	l.Description = record[jrnColDesc]

	if record[jrnColDebit] != "" {
		l.Debit, err = money.Parse(record[jrnColDebit])
		if err != nil {
			return e, l, fmt.Errorf("parsing debit: %w", err)
		}
	}
	if record[jrnColCredit] != "" {
		l.Credit, err = money.Parse(record[jrnColCredit])
		if err != nil {
			return e, l, fmt.Errorf("parsing credit: %w", err)
		}
	}
	return e, l, nil
}
