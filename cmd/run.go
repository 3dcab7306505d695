package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/linanwx/autobot/bot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every task once and print the results",
	Long: `Run the email, post and file tasks once with the default arguments:
smart replies on, AI posts for LinkedIn, AI categorization on.`,
	RunE: runTasks,
}

var runPlatform string

func init() {
	runCmd.Flags().StringVar(&runPlatform, "platform", "linkedin", "Platform to schedule posts for")
	rootCmd.AddCommand(runCmd)
}

func runTasks(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	platform := runPlatform
	if platform == "" {
		platform = "linkedin"
	}
	return runOnce(cmd.Context(), rt.bot, platform, cmd.OutOrStdout())
}

func runOnce(ctx context.Context, b *bot.Bot, platform string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	emails, err := b.AutomateEmails(ctx, true)
	if err != nil {
		return err
	}
	posts, err := b.SchedulePosts(ctx, platform, true)
	if err != nil {
		return err
	}
	files, err := b.OrganizeFiles(ctx, true)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "AI Automation Bot - Task Results:")
	for _, line := range []struct {
		label string
		value any
	}{
		{"Emails", emails},
		{"Posts", posts},
		{"Files", files},
	} {
		data, err := json.Marshal(line.value)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", line.label, data)
	}
	return nil
}
