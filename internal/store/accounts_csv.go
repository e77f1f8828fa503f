package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"

	"github.com/tillbook-dev/tillbook/internal/model"
)

const (
	acctNumFields = 7
	acctColID     = 0
	acctColCode   = 1
	acctColName   = 2
	acctColType   = 3
	acctColParent = 4
	acctColActive = 5
	acctColDesc   = 6
)

var acctHeader = []string{"account_id", "code", "name", "type", "parent_id", "active", "description"}

// ReadAccounts reads chart-of-accounts.csv. Balances are not stored;
// they are replayed from the journal on load.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(acctHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, acctNumFields)
	row[acctColID] = acct.ID.String()
	row[acctColCode] = acct.Code
	row[acctColName] = acct.Name
	row[acctColType] = string(acct.Type)
	if acct.ParentID != uuid.Nil {
		row[acctColParent] = acct.ParentID.String()
	}
	row[acctColActive] = strconv.FormatBool(acct.Active)
	row[acctColDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}

	id, err := uuid.Parse(record[acctColID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[acctColID], err)
	}

	parentID := uuid.Nil
	if record[acctColParent] != "" {
		parentID, err = uuid.Parse(record[acctColParent])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", record[acctColParent], err)
		}
	}

	active, err := strconv.ParseBool(record[acctColActive])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing active %q: %w", record[acctColActive], err)
	}

	typ := model.AccountType(record[acctColType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[acctColType])
	}

	return model.Account{
		ID:          id,
		Code:        record[acctColCode],
		Name:        record[acctColName],
		Type:        typ,
		ParentID:    parentID,
		Active:      active,
		Description: record[acctColDesc],
	}, nil
}
