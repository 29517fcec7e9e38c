package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"cilicili/internal/bilibili"
	"cilicili/internal/session"
)

const (
	loginPollInterval = 2 * time.Second
	loginTimeout      = 3 * time.Minute
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in by scanning a QR code with the bilibili app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}
			client := a.client()
			out := cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()

			qr, err := client.QRCode(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Open this link in the bilibili app (or render it as a QR code and scan it):")
			fmt.Fprintf(out, "\n  %s\n\n", qr.URL)

			res, err := client.WaitForLogin(ctx, qr.Key, loginPollInterval, func(s bilibili.PollStatus) {
				fmt.Fprintf(out, "status: %s\n", s)
			})
			if err != nil {
				return err
			}

			d := session.Data{Cookies: res.Cookies}
			if p, err := client.Profile(ctx, res.Cookies); err == nil {
				d.Profile = &p
			} else {
				slog.Warn("could not fetch profile", "err", err)
			}
			if err := st.Save(d); err != nil {
				return err
			}
			if d.Profile != nil {
				fmt.Fprintf(out, "Logged in as %s (uid %d)\n", d.Profile.Name, d.Profile.MID)
			} else {
				fmt.Fprintln(out, "Logged in")
			}
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}
			if err := st.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}
			d, err := st.Load()
			if errors.Is(err, session.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			p, err := a.client().Profile(cmd.Context(), d.Cookies)
			if errors.Is(err, bilibili.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Stored login has expired, run 'cilicili login'")
				return nil
			}
			if err != nil {
				return err
			}
			vip := "no"
			if p.VIPType > 0 {
				vip = "yes"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (uid %d, vip: %s, logged in %s)\n",
				p.Name, p.MID, vip, d.LoggedInAt().Format(time.DateTime))
			return nil
		},
	}
}
