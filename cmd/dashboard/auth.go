package main

import (
	"fmt"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/dashboard"

	"github.com/spf13/cobra"
)

func newSignUpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "signup [username] [email] [password]",
		Short: "Create an account and receive a verification code",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().SignUp(commandContext(cmd), &contract.SignUpRequest{
				Username: args[0],
				Email:    args[1],
				Password: args[2],
			})
			if err != nil {
				return fmt.Errorf("sign-up failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [username] [code]",
		Short: "Verify an account with the emailed code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().VerifyCode(commandContext(cmd), &contract.VerifyCodeRequest{
				Username: args[0],
				Code:     args[1],
			})
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username or email] [password]",
		Short: "Sign in and save the session locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			resp, err := client.SignIn(commandContext(cmd), &contract.SignInRequest{
				Identifier: args[0],
				Password:   args[1],
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			sess := &session{Username: resp.Username, Token: resp.Token, Server: opts.server}
			if err = saveSession(opts.sessionPath, sess); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", resp.Username)
			return nil
		},
	}
}

func newLinkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Print your shareable profile link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dashboard.ProfileURL(opts.server, sess.Username))
			return nil
		},
	}
}
