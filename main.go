package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/msomdec/proconnect/internal/app"
	"github.com/msomdec/proconnect/internal/config"
	"github.com/msomdec/proconnect/internal/domain"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand for one invocation.
type cli struct {
	configPath string
	app        *app.App
	cleanup    func()
}

// run executes one command line and releases everything it opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	defer c.close()
	root := c.rootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "proconnect",
		Short: "A professional network that lives in a local database file",
		Long: `proconnect keeps a professional network (people, connections, a feed,
a jobs board, direct messages and notifications) in a local SQLite file.

Each invocation acts as the signed-in user, if any. Sign in with
'proconnect login' and the session persists between invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context(), stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("PROCONNECT_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		c.registerCmd(), c.loginCmd(), c.logoutCmd(), c.whoamiCmd(), c.profileCmd(),
		c.peopleCmd(), c.connectCmd(), c.acceptCmd(), c.invitationsCmd(),
		c.postCmd(), c.feedCmd(), c.likeCmd(), c.commentCmd(), c.voteCmd(),
		c.jobsCmd(), c.applyCmd(),
		c.messageCmd(), c.inboxCmd(),
		c.notificationsCmd(), c.readCmd(),
		c.statsCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, logOpts)))

	a, cleanup, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	c.app = a
	c.cleanup = cleanup
	return nil
}

func (c *cli) close() {
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
}

// describe turns store errors into messages fit for a terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "not signed in; run 'proconnect login' first"
	case errors.Is(err, domain.ErrRateLimited):
		return "too many login attempts; try again later"
	default:
		return err.Error()
	}
}
