package main

import (
	"strings"

	"github.com/aretw0/pipedeck/pkg/action"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet balances, usage and transfers",
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the SOL balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, domain.ActionCheckSOL, nil)
	},
}

var walletTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the PIPE token balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, domain.ActionCheckToken, nil)
	},
}

var walletUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the token usage report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		return runAction(cmd, domain.ActionTokenUsage, map[string]any{"period": period})
	},
}

var walletSwapCmd = &cobra.Command{
	Use:   "swap <amount>",
	Short: "Swap SOL for PIPE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, domain.ActionSwapSOL, map[string]any{"amount": args[0]})
	},
}

var walletWithdrawSOLCmd = &cobra.Command{
	Use:   "withdraw-sol <amount> <to-pubkey>",
	Short: "Withdraw SOL to another wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, domain.ActionWithdrawSOL, map[string]any{"amount": args[0], "to": args[1]})
	},
}

var walletWithdrawTokenCmd = &cobra.Command{
	Use:   "withdraw-token <amount> <to-pubkey>",
	Short: "Withdraw a token (PIPE by default) to another wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mint, _ := cmd.Flags().GetString("mint")
		params := map[string]any{"amount": args[0], "to": args[1]}
		setIf(params, "mint", mint)
		return runAction(cmd, domain.ActionWithdrawToken, params)
	},
}

func init() {
	walletUsageCmd.Flags().StringP("period", "p", action.DefaultPeriod, "Report period: "+strings.Join(action.Periods, ", "))
	walletWithdrawTokenCmd.Flags().String("mint", "", "Token mint address (default PIPE)")

	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletBalanceCmd, walletTokenCmd, walletUsageCmd,
		walletSwapCmd, walletWithdrawSOLCmd, walletWithdrawTokenCmd)
}
