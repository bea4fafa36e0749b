/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meanly/wordtrack/internal/app"
	"github.com/meanly/wordtrack/internal/entity"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive practice session over due words",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		userID := container.Config.User.ID

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = container.Config.Practice.QueueSize
		}

		items, err := container.Progress.PracticeQueue(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("build practice queue: %w", err)
		}

		session, err := container.Sessions.StartSession(ctx, userID, items)
		if errors.Is(err, entity.ErrEmptySession) {
			cmd.Println("nothing due for practice, come back later")
			return nil
		}
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for !session.Ended() {
			item := session.Current()
			pos, total := session.Progress()

			cmd.Printf("\n[%d/%d] %s", pos, total, item.Word)
			if item.Definition != "" {
				cmd.Printf(" — %s", item.Definition)
			}
			cmd.Println()
			cmd.Print("write a sentence (blank to skip, /quit to stop): ")

			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "/quit" {
				break
			}
			if text == "" {
				if err := session.Skip(ctx); err != nil {
					return err
				}
				continue
			}

			eval, err := session.Submit(ctx, text)
			if err != nil {
				return err
			}
			cmd.Printf("score: %d (%s)\n", eval.Score, eval.Verdict())
			if eval.Feedback != "" {
				cmd.Println(eval.Feedback)
			}
			for _, suggestion := range eval.Suggestions {
				cmd.Printf("  - %s\n", suggestion)
			}
			if eval.Fallback {
				cmd.Println("(scored locally, evaluator unreachable)")
			}

			if err := session.Advance(ctx); err != nil {
				return err
			}
		}

		printSummary(cmd, session.Summary())
		return nil
	},
}

func printSummary(cmd *cobra.Command, summary entity.SessionSummary) {
	cmd.Printf("\nsession done: %d/%d items\n", summary.Completed, summary.TotalItems)
	cmd.Printf("  excellent: %d  good: %d  partial: %d  needs work: %d  skipped: %d\n",
		summary.Excellent, summary.Good, summary.Partial, summary.NeedsWork, summary.Skipped)

	switch summary.SuggestedNextAction {
	case entity.NextReviewWeak:
		cmd.Println("suggestion: review the words you struggled with")
	case entity.NextRest:
		cmd.Println("suggestion: take a break")
	default:
		cmd.Println("suggestion: keep going, you're on a roll")
	}
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().IntP("limit", "n", 0, "maximum number of words in the session")
}
