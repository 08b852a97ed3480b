package main

import (
	"fmt"
	"text/tabwriter"

	"notesboard/cmd/internal/dashboard"

	"github.com/spf13/cobra"
)

func newNotesCmd(opts *options) *cobra.Command {
	notes := &cobra.Command{
		Use:   "notes",
		Short: "List, add and delete your notes",
	}

	notes.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List your notes in the order they were added",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := openDashboard(cmd, opts)
				if err != nil {
					return err
				}
				return printNotes(cmd, d)
			},
		},
		&cobra.Command{
			Use:   "add [title] [content]",
			Short: "Add a note to your collection",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := openDashboard(cmd, opts)
				if err != nil {
					return err
				}

				if err = d.Add(commandContext(cmd), args[0], args[1]); err != nil {
					return err
				}
				return printNotes(cmd, d)
			},
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Delete a note from your collection",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := openDashboard(cmd, opts)
				if err != nil {
					return err
				}
				return d.Delete(commandContext(cmd), args[0])
			},
		},
	)
	return notes
}

// openDashboard restores the session and loads the collection once.
func openDashboard(cmd *cobra.Command, opts *options) (*dashboard.Dashboard, error) {
	client, sess, err := opts.authedClient()
	if err != nil {
		return nil, err
	}

	d := dashboard.New(client, sess.Username, printNotice(cmd))
	if err = d.Load(commandContext(cmd)); err != nil {
		return nil, err
	}
	return d, nil
}

func printNotes(cmd *cobra.Command, d *dashboard.Dashboard) error {
	notes := d.Visible()
	if len(notes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No notes yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED")
	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Title, n.CreatedAt)
	}
	return w.Flush()
}
