// Command showerctl is a small CLI for poking the shower tracker API from
// the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type clientOpts struct {
	server string
	user   string
	apiKey string
}

func main() {
	opts := &clientOpts{}

	root := &cobra.Command{
		Use:           "showerctl",
		Short:         "Interact with a shower tracker server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the shower tracker API")
	root.PersistentFlags().StringVarP(&opts.user, "user", "u", os.Getenv("SHOWER_USER"), "acting household member")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("SHOWER_API_KEY"), "API key, if the server requires one")

	root.AddCommand(
		statusCmd(opts),
		startCmd(opts),
		stopCmd(opts),
		claimCmd(opts),
		slotsCmd(opts),
		deleteCmd(opts),
		extendCmd(opts),
		logCmd(opts),
		analyticsCmd(opts),
		sweepCmd(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *clientOpts) client() *resty.Client {
	c := resty.New().
		SetBaseURL(o.server).
		SetTimeout(15 * time.Second)
	if o.apiKey != "" {
		c.SetHeader("X-Api-Key", o.apiKey)
	}
	return c
}

func (o *clientOpts) requireUser() error {
	if o.user == "" {
		return fmt.Errorf("--user is required (or set SHOWER_USER)")
	}
	return nil
}

// call issues the request and prints the JSON response body indented.
func call(c *resty.Client, method, path string, body any) error {
	req := c.R()
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	printJSON(resp.Body())
	if resp.IsError() {
		return fmt.Errorf("server returned %s", resp.Status())
	}
	return nil
}

func printJSON(body []byte) {
	if len(body) == 0 {
		return
	}
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(string(out))
}

func statusCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is in the shower",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/status"
			if opts.user != "" {
				path += "?user=" + opts.user
			}
			return call(opts.client(), "GET", path, nil)
		},
	}
}

func startCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Claim the shower",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			return call(opts.client(), "POST", "/status/start", map[string]string{"user": opts.user})
		},
	}
}

func stopCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Release the shower and log the entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			return call(opts.client(), "POST", "/status/stop", map[string]string{"user": opts.user})
		},
	}
}

func claimCmd(opts *clientOpts) *cobra.Command {
	var (
		date      string
		start     string
		duration  int
		recurring bool
	)
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Reserve a shower slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			return call(opts.client(), "POST", "/slots", map[string]any{
				"user":            opts.user,
				"date":            date,
				"startTime":       start,
				"durationMinutes": duration,
				"recurring":       recurring,
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "calendar day (2006-01-02)")
	cmd.Flags().StringVar(&start, "start", "", "start time (15:04)")
	cmd.Flags().IntVar(&duration, "duration", 20, "length in minutes")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "repeat daily")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func slotsCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List today's and upcoming slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(opts.client(), "GET", "/slots", nil)
		},
	}
}

func deleteCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slot-id>",
		Short: "Remove one of your slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			return call(opts.client(), "DELETE", "/slots/"+args[0]+"?user="+opts.user, nil)
		},
	}
}

func extendCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "extend <slot-id>",
		Short: "Lengthen one of your slots by five minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireUser(); err != nil {
				return err
			}
			return call(opts.client(), "POST", "/slots/"+args[0]+"/extend", map[string]string{"user": opts.user})
		},
	}
}

func logCmd(opts *clientOpts) *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent showers",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/log"
			if history {
				path = "/log/history"
			}
			return call(opts.client(), "GET", path, nil)
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "show the long-retention log")
	return cmd
}

func analyticsCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show household shower statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(opts.client(), "GET", "/analytics", nil)
		},
	}
}

func sweepCmd(opts *clientOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a retention sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(opts.client(), "POST", "/cleanup", nil)
		},
	}
}
