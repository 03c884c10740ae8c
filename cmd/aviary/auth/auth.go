// Package authcmder provides the auth command for storing backend bearer
// tokens.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/aviary/pkg/backend"
	"github.com/papercomputeco/aviary/pkg/cliui"
	"github.com/papercomputeco/aviary/pkg/credentials"
)

const authLongDesc string = `Store bearer tokens for the aviary backends.

Tokens are stored in credentials.toml in the .aviary/ directory and sent as
"Authorization: Bearer <token>" by "aviary stream". When no token is stored
the AVIARY_TOKEN (primary) or ENDPOINTS_TOKEN (alternate) environment
variable is used instead.

Backends: primary (alias aviary), alternate (alias endpoints)

Examples:
  aviary auth primary               Prompt for the primary backend token
  aviary auth --list                List stored tokens
  aviary auth --remove alternate    Remove the alternate backend token
  echo $TOKEN | aviary auth endpoints`

const authShortDesc string = "Store bearer tokens for the aviary backends"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [backend]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			out := cmd.OutOrStdout()

			switch {
			case listFlag:
				return runList(out, configDir)
			case removeFlag != "":
				return runRemove(out, removeFlag, configDir)
			default:
				if len(args) == 0 {
					return fmt.Errorf("backend argument required\n\nSupported backends: %s",
						strings.Join(credentials.SupportedBackends(), ", "))
				}
				return runAuth(cmd.InOrStdin(), out, args[0], configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedBackends(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored tokens")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove the stored token for a backend")

	return cmd
}

func runAuth(in io.Reader, out io.Writer, name, configDir string) error {
	sel, err := backend.ParseSelector(name)
	if err != nil {
		return err
	}

	token, err := readToken(in, out, sel)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(sel.String(), token); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Stored %s token %s\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(sel.String()),
		cliui.DimStyle.Render("(overrides "+credentials.EnvVarForBackend(sel.String())+")"),
	)

	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		fmt.Fprintf(out, "%s Token already carries a \"Bearer \" prefix; it will be sent as-is.\n",
			cliui.WarnStyle.Render("!"))
	}

	return nil
}

func runList(out io.Writer, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	names, err := mgr.ListBackends()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintf(out, "%s No stored tokens.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(out, "Use 'aviary auth <backend>' to store one. Supported backends: %s\n",
			strings.Join(credentials.SupportedBackends(), ", "))
		return nil
	}

	fmt.Fprintf(out, "%s\n", cliui.HeaderStyle.Render("Stored tokens"))
	for _, name := range names {
		fmt.Fprintf(out, "%s  %s  %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(name),
			cliui.DimStyle.Render("overrides "+credentials.EnvVarForBackend(name)),
		)
	}

	return nil
}

func runRemove(out io.Writer, name, configDir string) error {
	sel, err := backend.ParseSelector(name)
	if err != nil {
		return err
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(sel.String()); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Removed %s token.\n", cliui.SuccessMark, cliui.NameStyle.Render(sel.String()))

	return nil
}

// readToken reads the token from in. A terminal is prompted with hidden
// input; anything else contributes its first line.
func readToken(in io.Reader, out io.Writer, sel backend.Selector) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(out, "Enter token for %s backend: ", sel)

		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
