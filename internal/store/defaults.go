package store

import "github.com/tillbook-dev/tillbook/internal/model"

// ChartSeed describes one account in a seed chart. ParentCode refers
// to an earlier seed in the same list.
type ChartSeed struct {
	Code        string
	Name        string
	Type        model.AccountType
	ParentCode  string
	Description string
}

// DefaultChart returns the starter chart of accounts for a retail
// business, codes in the usual 1xxx-5xxx ranges.
func DefaultChart() []ChartSeed {
	return []ChartSeed{
		{Code: "1100", Name: "Cash & Bank", Type: model.AccountTypeAsset, Description: "Cash and bank balances"},
		{Code: "1110", Name: "Cash in Hand", Type: model.AccountTypeAsset, ParentCode: "1100", Description: "Till and safe cash"},
		{Code: "1120", Name: "Petty Cash", Type: model.AccountTypeAsset, ParentCode: "1100"},
		{Code: "1130", Name: "Bank Current Account", Type: model.AccountTypeAsset, ParentCode: "1100"},
		{Code: "1200", Name: "Inventory", Type: model.AccountTypeAsset, Description: "Stock on hand at cost"},
		{Code: "1300", Name: "Accounts Receivable", Type: model.AccountTypeAsset, Description: "Amounts owed by credit customers"},
		{Code: "2100", Name: "Accounts Payable", Type: model.AccountTypeLiability, Description: "Amounts owed to suppliers"},
		{Code: "2200", Name: "Sales Tax Payable", Type: model.AccountTypeLiability, Description: "Tax collected pending remittance"},
		{Code: "3100", Name: "Owner's Equity", Type: model.AccountTypeEquity},
		{Code: "4100", Name: "Sales Revenue", Type: model.AccountTypeIncome, Description: "Counter and invoice sales"},
		{Code: "4200", Name: "Service Revenue", Type: model.AccountTypeIncome, Description: "Repairs, delivery and other services"},
		{Code: "5000", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense, Description: "Cost of stock sold"},
		{Code: "5100", Name: "Shop Rent", Type: model.AccountTypeExpense},
		{Code: "5200", Name: "Wages", Type: model.AccountTypeExpense, Description: "Staff wages and overtime"},
		{Code: "5300", Name: "Utilities", Type: model.AccountTypeExpense, Description: "Electricity, water, connectivity"},
		{Code: "5400", Name: "Advertising", Type: model.AccountTypeExpense},
	}
}
