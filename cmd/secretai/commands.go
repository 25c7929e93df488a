package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"secretai/internal/mcp"
	"secretai/internal/tool"
	"secretai/internal/tool/builtin"
	"secretai/pkg/secretai"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models registered on the worker contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			secret, err := a.secret()
			if err != nil {
				return err
			}

			models, err := secret.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			a.logResult("models", models)

			return printLines(cmd.OutOrStdout(), models)
		},
	}
}

func newURLsCommand() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "urls",
		Short: "List worker endpoints, optionally for a single model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			secret, err := a.secret()
			if err != nil {
				return err
			}

			urls, err := secret.ListURLs(cmd.Context(), model)
			if err != nil {
				return err
			}
			a.logResult("urls", urls)

			return printLines(cmd.OutOrStdout(), urls)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Only list endpoints serving this model")
	return cmd
}

func newKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key [mnemonic]",
		Short: "Derive the private key and address of a mnemonic",
		Long:  "Derive the private key and address of a mnemonic. Reads the mnemonic from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			mnemonic := ""
			if len(args) == 1 {
				mnemonic = args[0]
			} else {
				mnemonic, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			// derivation is offline; the Secret client only resolves settings
			secret, err := a.secret()
			if err != nil {
				return err
			}

			privateKey, err := secret.PrivateKeyFromMnemonic(mnemonic)
			if err != nil {
				return err
			}
			address, err := secret.AddressFromMnemonic(mnemonic)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "private key: %s\n", privateKey)
			fmt.Fprintf(out, "address:     %s\n", address)
			return nil
		},
	}
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve model and endpoint discovery as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			secret, err := a.secret()
			if err != nil {
				return err
			}

			registry := tool.NewRegistry()
			if err := builtin.Register(registry, secret); err != nil {
				return err
			}
			a.log.Debug("Serving %d tools over stdio", len(registry.List()))

			return mcp.NewServer(registry, secretai.Version, a.log).Run(cmd.Context())
		},
	}
}

func (a *app) logResult(op string, items []string) {
	raw, err := json.Marshal(map[string][]string{op: items})
	if err != nil {
		return
	}
	a.log.QueryResult(op, string(raw))
}

func printLines(w io.Writer, items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(os.Stderr, "Mnemonic: ")
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read mnemonic: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", secretai.ErrInvalidMnemonic
	}
	return line, nil
}
