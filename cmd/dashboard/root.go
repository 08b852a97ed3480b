package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notesboard/cmd/internal/dashboard"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

type options struct {
	server      string
	sessionPath string
	timeout     time.Duration
	verbose     bool
}

func (o *options) client() *dashboard.Client {
	return dashboard.NewClient(o.server, o.timeout)
}

// authedClient restores the saved session, failing when nobody logged in yet.
func (o *options) authedClient() (*dashboard.Client, *session, error) {
	sess, err := loadSession(o.sessionPath)
	if err != nil {
		return nil, nil, err
	}

	client := o.client()
	client.SetToken(sess.Token)
	return client, sess, nil
}

// newRootCmd represents the base command when called without any subcommands
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Manage your notes from the terminal",
		Long: `Dashboard signs you up, verifies your account and manages
your notes through the notesboard HTTP API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(log.WARN)
			if opts.verbose {
				log.SetLevel(log.DEBUG)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.server, "server", "s", envOr("NOTESBOARD_URL", "http://localhost:7070"), "Base URL of the notes API")
	root.PersistentFlags().StringVar(&opts.sessionPath, "session", defaultSessionPath(), "File holding the saved session")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newSignUpCmd(opts),
		newVerifyCmd(opts),
		newLoginCmd(opts),
		newLinkCmd(opts),
		newNotesCmd(opts),
	)
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printNotice(cmd *cobra.Command) func(dashboard.Notice) {
	return func(n dashboard.Notice) {
		log.Debugf("notice: %s: %s", n.Level, n.Message)
		if n.Level == dashboard.NoticeError {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", n.Message)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), n.Message)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".notesboard-session.json"
	}
	return filepath.Join(dir, "notesboard", "session.json")
}
