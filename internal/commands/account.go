package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/money"
	"github.com/tillbook-dev/tillbook/internal/registry"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts operations",
	}
	accountCmd.AddCommand(newAccountAddCommand())
	accountCmd.AddCommand(newAccountListCommand())
	accountCmd.AddCommand(newAccountTreeCommand())
	accountCmd.AddCommand(newAccountDeactivateCommand())
	accountCmd.AddCommand(newAccountRemoveCommand())
	return accountCmd
}

func newAccountAddCommand() *cobra.Command {
	var parentCode string
	var desc string

	cmd := &cobra.Command{
		Use:   "add <code> <name> <type>",
		Short: "Add an account to the chart",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}

			p := registry.AddParams{
				Code:        args[0],
				Name:        args[1],
				Type:        model.AccountType(strings.ToLower(args[2])),
				Description: desc,
			}
			if parentCode != "" {
				parent, err := b.Registry.ResolveByCode(parentCode)
				if err != nil {
					return err
				}
				p.ParentID = parent.ID
			}

			a, err := b.Registry.Add(p)
			if err != nil {
				return err
			}
			if err := saveAndRecord(b, "account.add", a.Code, a.Name); err != nil {
				return err
			}
			cmd.Printf("Added %s %s (%s)\n", a.Code, a.Name, a.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentCode, "parent", "", "parent account code")
	cmd.Flags().StringVar(&desc, "desc", "", "account description")
	return cmd
}

func newAccountListCommand() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}

			accounts := b.Registry.All()
			if typeFilter != "" {
				accounts = b.Registry.ByType(model.AccountType(strings.ToLower(typeFilter)))
			}
			for _, a := range accounts {
				status := ""
				if !a.Active {
					status = " (inactive)"
				}
				cmd.Printf("%-6s %-30s %-10s %14s%s\n",
					a.Code, a.Name, a.Type, money.Format(a.Balance), status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "filter by account type")
	return cmd
}

func newAccountTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the chart of accounts as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			for n := range b.Registry.Tree() {
				indent := strings.Repeat("  ", n.Depth)
				cmd.Printf("%s%s %s %14s\n",
					indent, n.Account.Code, n.Account.Name, money.Format(n.Account.Balance))
			}
			return nil
		},
	}
}

func newAccountDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <code>",
		Short: "Mark an account inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			a, err := b.Registry.ResolveByCode(args[0])
			if err != nil {
				return err
			}
			if err := b.Registry.Deactivate(a.ID); err != nil {
				return err
			}
			if err := saveAndRecord(b, "account.deactivate", a.Code, a.Name); err != nil {
				return err
			}
			cmd.Printf("Deactivated %s %s\n", a.Code, a.Name)
			return nil
		},
	}
}

func newAccountRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code>",
		Short: "Remove an empty, never-posted account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBooks(cmd)
			if err != nil {
				return err
			}
			a, err := b.Registry.ResolveByCode(args[0])
			if err != nil {
				return err
			}
			if err := b.Registry.Remove(a.ID); err != nil {
				return fmt.Errorf("removing %s: %w", a.Code, err)
			}
			if err := saveAndRecord(b, "account.remove", a.Code, a.Name); err != nil {
				return err
			}
			cmd.Printf("Removed %s %s\n", a.Code, a.Name)
			return nil
		},
	}
}
