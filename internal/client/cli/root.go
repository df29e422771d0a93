package cli

import (
	"context"
	"io"
	"strings"

	"github.com/dmitrijs2005/msgrelay/internal/buildinfo"
	"github.com/dmitrijs2005/msgrelay/internal/client/config"
	"github.com/spf13/cobra"
)

// Execute runs the msgrelay command tree against args with in and out as
// the terminal streams, and releases the profile whether or not the
// command succeeded.
func Execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	root, closeApp := newRoot(in, out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if cerr := closeApp(); err == nil {
		err = cerr
	}
	return err
}

func newRoot(in io.Reader, out io.Writer) (*cobra.Command, func() error) {
	var (
		app        *App
		passphrase string
	)

	root := &cobra.Command{
		Use:           "msgrelay",
		Short:         "Store-and-forward messaging client",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	flags := config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&passphrase, "passphrase", "", "passphrase protecting the private key")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Load()
		if err != nil {
			return err
		}
		app, err = NewApp(cmd.Context(), cfg, in, out)
		if err != nil {
			return err
		}
		if passphrase != "" {
			app.passphrase = []byte(passphrase)
		}
		return nil
	}
	current := func() *App { return app }
	root.AddCommand(
		signupCmd(current),
		usersCmd(current),
		keyCmd(current),
		sendCmd(current),
		recvCmd(current),
		statusCmd(current),
		shellCmd(current),
	)
	closeApp := func() error {
		if app == nil {
			return nil
		}
		a := app
		app = nil
		return a.Close()
	}
	return root, closeApp
}

func signupCmd(app func() *App) *cobra.Command {
	var protect bool
	cmd := &cobra.Command{
		Use:   "signup <name>",
		Short: "Register a new identity and store it in the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Signup(cmd.Context(), args[0], protect)
		},
	}
	cmd.Flags().BoolVar(&protect, "protect", false, "encrypt the private key with a passphrase")
	return cmd
}

func usersCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the other registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Users(cmd.Context())
		},
	}
}

func keyCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "key <peer>",
		Short: "Fetch and show the public key of a peer (name or id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Key(cmd.Context(), args[0])
		},
	}
}

func sendCmd(app func() *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "send <peer> [text...]",
		Short: "Send a text message; reads stdin when no text is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			text := []byte(strings.Join(args[1:], " "))
			if len(args) == 1 {
				var err error
				if text, err = a.readBody(); err != nil {
					return err
				}
			}
			return a.Send(cmd.Context(), args[0], text, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "send unencrypted")
	return cmd
}

func recvCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recv",
		Short: "Fetch and open queued messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Recv(cmd.Context())
		},
	}
}

func statusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Query the server health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Status(cmd.Context())
		},
	}
}

func shellCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			runREPL(cmd.Context(), a, a.reader, a.out)
			return nil
		},
	}
}
