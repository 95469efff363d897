package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/mytravellog/internal/domain/model"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the location store and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("MYTRAVELLOG_PASSWORD")
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			return withApp(cmd.Context(), func(a *app) error {
				if err := a.guard.Login(cmd.Context(), username, password); err != nil {
					return errors.New(driven.UserMessage(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged in as", username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "store account name")
	cmd.Flags().StringVar(&password, "password", "", "store password (or MYTRAVELLOG_PASSWORD)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.guard.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				state := "not logged in"
				if a.guard.IsAuthenticated(cmd.Context()) {
					state = "logged in"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "store:   %s\nsession: %s\n", a.cfg.StoreURL, state)
				return nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and print every location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.cache.Refresh(cmd.Context()); err != nil {
					return errors.New(driven.UserMessage(err))
				}
				return printLocations(cmd, a.cache.Current())
			})
		},
	}
}

func printLocations(cmd *cobra.Command, locs []model.Location) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPLACE\tLON\tLAT\tVISITED")
	for _, loc := range locs {
		visited := "-"
		if loc.VisitedAt != nil {
			visited = loc.VisitedAt.Format(model.DateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.5f\t%.5f\t%s\n",
			loc.ID, loc.Title, loc.Place(), loc.X, loc.Y, visited)
	}
	return tw.Flush()
}

func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
