package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// bulkLimit caps concurrent requests for multi-id commands.
const bulkLimit = 4

func newListCmd(app *App) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    argsExactly(0, "tada ls [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return err
			}
			items, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), listPanel(app.tr, c.Tenant(), items, group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group output by pending/done")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a new item (name can be multiple words)",
		Args:  argsAtLeast(1, "tada add <name...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if !model.ValidName(name) {
				return usageErr("add: empty name")
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			it, err := c.Create(cmd.Context(), strings.TrimSpace(name))
			if err != nil {
				return err
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("added #%d %s", it.ID, it.Name))
			return nil
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item; the memo is rendered as markdown",
		Args:  argsExactly(1, "tada show <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("show", args)
			if err != nil {
				return err
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			it, err := c.Get(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			fmt.Fprintln(cmd.OutOrStdout(), itemPanel(app.tr, it))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var (
		name, memo, image string
		done, undone      bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit name, memo, completion or image of an item",
		Example: strings.TrimSpace(`
  tada edit 12 --name "Buy oat milk"
  tada edit 12 --memo "## shop\n- 2L" --done
  tada edit 12 --image ./receipt.png
`),
		Args: argsExactly(1, "tada edit <id> [--name] [--memo] [--image PATH] [--done|--undone]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("edit", args)
			if err != nil {
				return err
			}
			if done && undone {
				return usageErr("edit: --done and --undone are exclusive")
			}

			var patch model.ItemPatch
			if cmd.Flags().Changed("name") {
				if !model.ValidName(name) {
					return usageErr("edit: empty name")
				}
				patch.Name = model.Ptr(strings.TrimSpace(name))
			}
			if cmd.Flags().Changed("memo") {
				patch.Memo = model.Ptr(memo)
			}
			if done || undone {
				patch.IsCompleted = model.Ptr(done)
			}

			var (
				fileName string
				file     []byte
			)
			if image != "" {
				if fileName, file, err = model.ReadImage(image); err != nil {
					return err
				}
			}
			if patch.Empty() && file == nil {
				return usageErr("edit: nothing to change")
			}

			c, err := app.client()
			if err != nil {
				return err
			}
			// Upload first; a failed upload leaves the item untouched.
			if file != nil {
				url, err := c.UploadImage(cmd.Context(), fileName, file)
				if err != nil {
					return err
				}
				app.logger.Debug("image uploaded", "url", url)
				patch.ImageURL = &url
			}
			it, err := c.Update(cmd.Context(), ids[0], patch)
			if err != nil {
				return err
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), it)
			}
			fmt.Fprintln(cmd.OutOrStdout(), itemPanel(app.tr, it))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&memo, "memo", "", "New memo (markdown)")
	cmd.Flags().StringVar(&image, "image", "", "Image file to upload and attach")
	cmd.Flags().BoolVar(&done, "done", false, "Mark completed")
	cmd.Flags().BoolVar(&undone, "undone", false, "Mark not completed")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>...",
		Short: "Toggle completion of one or more items",
		Args:  argsAtLeast(1, "tada done <id>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("done", args)
			if err != nil {
				return err
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			results := make([]model.Item, len(ids))
			errs := bulk(cmd.Context(), ids, func(ctx context.Context, i, id int) error {
				it, err := c.Get(ctx, id)
				if err != nil {
					return err
				}
				it, err = c.Update(ctx, id, model.ItemPatch{
					Name:        model.Ptr(it.Name),
					IsCompleted: model.Ptr(!it.IsCompleted),
				})
				results[i] = it
				return err
			})
			return app.report(cmd, ids, errs, results, func(it model.Item) string {
				state := "pending"
				if it.IsCompleted {
					state = "done"
				}
				return fmt.Sprintf("#%d %s → %s", it.ID, it.Name, state)
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete one or more items",
		Args:    argsAtLeast(1, "tada rm <id>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("rm", args)
			if err != nil {
				return err
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			results := make([]model.Item, len(ids))
			errs := bulk(cmd.Context(), ids, func(ctx context.Context, i, id int) error {
				results[i] = model.Item{ID: id}
				return c.Delete(ctx, id)
			})
			return app.report(cmd, ids, errs, results, func(it model.Item) string {
				return fmt.Sprintf("removed #%d", it.ID)
			})
		},
	}
}

// bulk runs fn for every id with bounded concurrency. Each id gets one
// attempt; a failure does not cancel the others.
func bulk(ctx context.Context, ids []int, fn func(ctx context.Context, i, id int) error) []error {
	if ctx == nil {
		ctx = context.Background()
	}
	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(bulkLimit)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = fn(ctx, i, id)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// report prints one line per id in argument order and returns an error
// if any id failed.
func (app *App) report(cmd *cobra.Command, ids []int, errs []error, results []model.Item, line func(model.Item) string) error {
	var failed []error
	if app.Format == "json" {
		type row struct {
			ID    int         `json:"id"`
			Item  *model.Item `json:"item,omitempty"`
			Error string      `json:"error,omitempty"`
		}
		rows := make([]row, len(ids))
		for i, id := range ids {
			rows[i].ID = id
			if errs[i] != nil {
				rows[i].Error = errs[i].Error()
				failed = append(failed, errs[i])
				continue
			}
			rows[i].Item = &results[i]
		}
		if err := writeJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	} else {
		for i, id := range ids {
			if errs[i] != nil {
				ui.Fail(cmd.ErrOrStderr(), fmt.Sprintf("#%d: %s", id, app.message(errs[i])))
				failed = append(failed, errs[i])
				continue
			}
			ui.OK(cmd.OutOrStdout(), line(results[i]))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return reportedError{err: fmt.Errorf("%d of %d failed: %w", len(failed), len(ids), errors.Join(failed...))}
}
