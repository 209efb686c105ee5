// SPDX-FileCopyrightText: 2024-2025 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

// cardos-tool is a small maintenance utility for CardOS v5 smart
// cards: it lists readers, reports card information and drives the
// lifecycle phase.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	cardos "cunicu.li/go-cardos"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardos-tool",
		Short:         "maintenance tool for CardOS v5 smart cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("reader", "r", "", "name of the PC/SC reader (default: first with a CardOS card)")

	root.AddCommand(
		newReadersCmd(),
		newInfoCmd(),
		newSelectCmd(),
		newVerifyCmd(),
		newLifecycleCmd(),
		newInitCardCmd(),
	)
	root.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	return root
}

func newReadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "readers",
		Short: "list available PC/SC readers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			readers, err := cardos.Cards()
			if err != nil {
				return err
			}

			for _, r := range readers {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}

			return nil
		},
	}
}

// openCard connects to the reader given by the --reader flag, or to the
// first reader holding a CardOS card when the flag is empty.
func openCard(cmd *cobra.Command) (*cardos.Card, error) {
	reader := cmd.Flag("reader").Value.String()
	if reader != "" {
		return cardos.Open(reader)
	}

	readers, err := cardos.Cards()
	if err != nil {
		return nil, err
	}

	for _, r := range readers {
		card, err := cardos.Open(r)
		if err == nil {
			return card, nil
		}
	}

	return nil, fmt.Errorf("no CardOS card found in any reader")
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "show card variant and lifecycle phase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			card, err := openCard(cmd)
			if err != nil {
				return err
			}
			defer card.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "variant:   %s\n", card.Type())

			var phase byte
			if err := card.Control(cardos.CtlLifecycleGet, &phase); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lifecycle: %#02x\n", phase)

			return nil
		},
	}
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <hex-path>",
		Short: "select an absolute file path and print its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			card, err := openCard(cmd)
			if err != nil {
				return err
			}
			defer card.Close()

			f, err := card.SelectFile(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id:   %04x\n", f.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "type: %d\n", f.Type)
			if f.Size > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "size: %d\n", f.Size)
			}
			if len(f.Name) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "name: %x\n", f.Name)
			}
			for op, e := range f.ACL {
				fmt.Fprintf(cmd.OutOrStdout(), "acl:  %-12s %s\n", op, e.Method)
			}

			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a PIN",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := cmd.Flags().GetUint8("ref")
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), "PIN: ")
			pin, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			card, err := openCard(cmd)
			if err != nil {
				return err
			}
			defer card.Close()

			return card.VerifyPIN(ref, pin)
		},
	}
	cmd.Flags().Uint8("ref", 1, "PIN reference")

	return cmd
}

func newLifecycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifecycle [operational|administration]",
		Short: "get or set the lifecycle phase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := openCard(cmd)
			if err != nil {
				return err
			}
			defer card.Close()

			if len(args) == 0 {
				var phase byte
				if err := card.Control(cardos.CtlLifecycleGet, &phase); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%#02x\n", phase)

				return nil
			}

			var phase byte
			switch args[0] {
			case "operational":
				phase = cardos.LifecycleOperational
			case "administration":
				phase = cardos.LifecycleAdministration
			default:
				return fmt.Errorf("unknown lifecycle phase %q", args[0])
			}

			return card.Control(cardos.CtlLifecycleSet, phase)
		},
	}

	return cmd
}

func newInitCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-card",
		Short: "persist the extended data field length (takes effect after reset)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			card, err := openCard(cmd)
			if err != nil {
				return err
			}
			defer card.Close()

			return card.Control(cardos.CtlInitCard, nil)
		},
	}
}
