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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meanly/wordtrack/internal/app"
	"github.com/meanly/wordtrack/internal/entity"
	"github.com/meanly/wordtrack/internal/usecase"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Manage the saved word list",
}

var wordsSaveCmd = &cobra.Command{
	Use:   "save <item-id>",
	Short: "Save a word for practice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := container.Progress.SaveItem(cmd.Context(), container.Config.User.ID, args[0])
		if err != nil {
			return fmt.Errorf("save word: %w", err)
		}
		cmd.Printf("saved %s (strength: %s)\n", rec.ItemID, rec.Strength)
		return nil
	},
}

var wordsUnsaveCmd = &cobra.Command{
	Use:   "unsave <item-id>",
	Short: "Remove a word from the saved list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := container.Progress.UnsaveItem(cmd.Context(), container.Config.User.ID, args[0]); err != nil {
			return fmt.Errorf("unsave word: %w", err)
		}
		cmd.Printf("removed %s\n", args[0])
		return nil
	},
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved words with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		strength, _ := cmd.Flags().GetString("strength")
		favorites, _ := cmd.Flags().GetBool("favorites")
		search, _ := cmd.Flags().GetString("search")
		sortOrder, _ := cmd.Flags().GetString("sort")

		records, err := container.Progress.ListSaved(cmd.Context(), usecase.ListSavedQuery{
			UserID:       container.Config.User.ID,
			Strength:     entity.Strength(strength),
			FavoriteOnly: favorites,
			Search:       search,
			Sort:         usecase.SavedSort(sortOrder),
		})
		if err != nil {
			return fmt.Errorf("list words: %w", err)
		}

		if len(records) == 0 {
			cmd.Println("no saved words")
			return nil
		}
		for _, rec := range records {
			line := fmt.Sprintf("%s  %-9s  %d/%d correct", rec.ItemID, rec.Strength, rec.CorrectCount, rec.PracticeCount)
			if rec.IsFavorite {
				line += "  *"
			}
			if rec.SyncState != entity.SyncStateSynced {
				line += "  [" + string(rec.SyncState) + "]"
			}
			cmd.Println(line)
		}
		return nil
	},
}

var wordsNoteCmd = &cobra.Command{
	Use:   "note <item-id> <text>",
	Short: "Attach a note to a saved word",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := container.Progress.UpdateNotes(cmd.Context(), container.Config.User.ID, args[0], args[1]); err != nil {
			return fmt.Errorf("update note: %w", err)
		}
		cmd.Printf("note saved for %s\n", args[0])
		return nil
	},
}

var wordsFavoriteCmd = &cobra.Command{
	Use:   "favorite <item-id> [true|false]",
	Short: "Mark or unmark a saved word as favorite",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		favorite := true
		if len(args) == 2 {
			favorite, err = strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("parse favorite flag: %w", err)
			}
		}

		if _, err := container.Progress.SetFavorite(cmd.Context(), container.Config.User.ID, args[0], favorite); err != nil {
			return fmt.Errorf("set favorite: %w", err)
		}
		cmd.Printf("favorite=%t for %s\n", favorite, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wordsCmd)
	wordsCmd.AddCommand(wordsSaveCmd)
	wordsCmd.AddCommand(wordsUnsaveCmd)
	wordsCmd.AddCommand(wordsListCmd)
	wordsCmd.AddCommand(wordsNoteCmd)
	wordsCmd.AddCommand(wordsFavoriteCmd)

	wordsListCmd.Flags().String("strength", "", "filter by strength (new, learning, familiar, mastered)")
	wordsListCmd.Flags().Bool("favorites", false, "show only favorites")
	wordsListCmd.Flags().String("search", "", "search in word, definition and notes")
	wordsListCmd.Flags().String("sort", "", "sort order (saved_at_desc, saved_at_asc, strength, last_practiced)")
}
