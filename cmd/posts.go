package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linanwx/autobot/cron"
	"github.com/linanwx/autobot/logger"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage scheduled posts",
	Long:  "List and remove the posts waiting in the post store (integrations.posts.store_path).",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled posts",
	RunE:  runPostsList,
}

var postsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a scheduled post by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsRemove,
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsRemoveCmd)
}

// openPostStore loads the store without publishers; nothing fires from here.
func openPostStore() (*cron.Scheduler, *logger.Logger, error) {
	file, lcfg, err := loadFile()
	if err != nil {
		return nil, nil, err
	}
	if file.Integrations.Posts == nil {
		return nil, nil, errors.New("posts integration is not configured")
	}
	lg, err := logger.New(lcfg)
	if err != nil {
		return nil, nil, err
	}
	noop := func(cron.Post) error { return nil }
	sched := cron.NewScheduler(file.ResolvePath(file.Integrations.Posts.StorePath), noop, lg.With(slog.String("component", "posts")))
	if err := sched.Load(); err != nil {
		_ = lg.Close()
		return nil, nil, fmt.Errorf("failed to load post store: %w", err)
	}
	return sched, lg, nil
}

func runPostsList(cmd *cobra.Command, args []string) error {
	sched, lg, err := openPostStore()
	if err != nil {
		return err
	}
	defer lg.Close()
	defer sched.Stop()

	posts := sched.List()
	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts scheduled.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tENABLED\tSCHEDULE\tCONTENT")
	fmt.Fprintln(w, "--\t--------\t-------\t--------\t-------")
	for _, p := range posts {
		schedule := p.Expr
		if p.Kind == cron.PostKindAt {
			schedule = "at " + p.AtTime.Local().Format("2006-01-02 15:04")
		}
		content := p.Content
		if len(content) > 40 {
			content = content[:40] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n", p.ID, p.Platform, p.Enabled, schedule, content)
	}
	return w.Flush()
}

func runPostsRemove(cmd *cobra.Command, args []string) error {
	sched, lg, err := openPostStore()
	if err != nil {
		return err
	}
	defer lg.Close()
	defer sched.Stop()

	if err := sched.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Post '%s' removed.\n", args[0])
	return nil
}
