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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meanly/wordtrack/internal/app"
	"github.com/meanly/wordtrack/internal/entity"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending local changes to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			container.Scheduler.Start()
			defer container.Scheduler.Stop()
			cmd.Printf("watching, syncing every %s (ctrl-c to stop)\n", container.Config.Sync.Interval)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			cmd.Printf("received signal: %s, shutting down\n", sig)
			return nil
		}

		report, err := container.Sync.Sync(cmd.Context(), container.Config.User.ID)
		if errors.Is(err, entity.ErrOffline) {
			cmd.Println("backend unreachable, changes stay queued locally")
			return nil
		}
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}

		cmd.Printf("applied %d, conflicts %d, failed %d in %s\n",
			report.Applied, report.Conflicts, report.Failed,
			report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
		for _, letter := range report.DeadLetters {
			cmd.Printf("dead-lettered %s for %s: %s\n",
				letter.Mutation.Type, letter.Mutation.ItemID, letter.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolP("watch", "w", false, "keep running and sync periodically")
}
