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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meanly/wordtrack/internal/app"
	"github.com/meanly/wordtrack/internal/entity"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning progress and sync queue status",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		stats, err := container.Progress.Stats(cmd.Context(), container.Config.User.ID)
		if err != nil {
			return fmt.Errorf("collect stats: %w", err)
		}

		cmd.Printf("saved words: %d (%d due now, %d favorites)\n", stats.Total, stats.DueNow, stats.Favorites)
		for _, strength := range entity.Strengths() {
			cmd.Printf("  %-9s %d\n", strength, stats.ByStrength[strength])
		}
		cmd.Printf("pending sync: %d\n", stats.Pending)
		if stats.DeadLetters > 0 {
			cmd.Printf("dead letters: %d (inspect with the sync log)\n", stats.DeadLetters)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
