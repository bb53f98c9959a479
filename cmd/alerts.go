package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/importer-intel/internal/model"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <company>",
	Short: "Subscribe an email address to alerts for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		email, _ := cmd.Flags().GetString("email")

		env, err := initEnv(ctx, "alerts")
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Alerts.Subscribe(ctx, args[0], email)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(os.Stdout, n.Message)
		return nil
	},
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List alert subscriptions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "alerts")
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := env.Alerts.Subscriptions(ctx)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Fprintln(os.Stderr, "No subscriptions.")
			return nil
		}
		formatSubscriptions(os.Stdout, subs)
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show the notification feed, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		clearFeed, _ := cmd.Flags().GetBool("clear")

		env, err := initEnv(ctx, "alerts")
		if err != nil {
			return err
		}
		defer env.Close()

		if clearFeed {
			if err := env.Alerts.ClearNotifications(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Notifications cleared.")
			return nil
		}

		list, err := env.Alerts.Notifications(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No new notifications")
			return nil
		}
		formatNotifications(os.Stdout, list)
		return nil
	},
}

func init() {
	subscribeCmd.Flags().String("email", "", "address that receives the alerts")
	_ = subscribeCmd.MarkFlagRequired("email")
	notificationsCmd.Flags().Bool("clear", false, "clear the feed instead of listing it")

	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(subscriptionsCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func formatSubscriptions(out io.Writer, subs []model.Subscription) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY\tEMAIL")
	_, _ = fmt.Fprintln(w, "-------\t-----")
	for _, s := range subs {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", s.CompanyName, s.Email)
	}
	_ = w.Flush()
}

func formatNotifications(out io.Writer, list []model.Notification) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, n := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", time.UnixMilli(n.Timestamp).UTC().Format("2006-01-02 15:04"), n.Message)
	}
	_ = w.Flush()
}
