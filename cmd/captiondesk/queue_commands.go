package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/moderation"
	"captiondesk/internal/queue"
	"captiondesk/internal/textutil"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Review and moderate queued captions",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueActionCommand(ctx, queue.ActionApprove, "Approve a pending item"))
	queueCmd.AddCommand(newQueueActionCommand(ctx, queue.ActionReject, "Reject a pending item"))
	queueCmd.AddCommand(newQueueActionCommand(ctx, queue.ActionPost, "Publish a pending or approved item now"))
	queueCmd.AddCommand(newQueueEditCommand(ctx))
	queueCmd.AddCommand(newQueueActionCommand(ctx, queue.ActionDelete, "Delete an item"))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var viewFlag string
	var jsonMode bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queue items in a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, ok := queue.ParseView(strings.ToLower(strings.TrimSpace(viewFlag)))
			if !ok {
				return fmt.Errorf("unknown view %q (valid: %s)", viewFlag, joinViews())
			}
			return ctx.withClient(cmd, func(s *session) error {
				board := moderation.NewBoard(s.client, s.logger)
				partition, err := board.Refresh(commandCtx(cmd))
				if err != nil {
					return err
				}
				items := partition.View(view)
				if jsonMode {
					return writeJSON(cmd, itemsJSON(items))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderViewTabs(partition, view))
				if len(items) == 0 {
					fmt.Fprintf(out, "No %s items.\n", view)
					return nil
				}
				fmt.Fprintln(out, renderItemTable(items, colorize))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&viewFlag, "view", "v", string(queue.ViewPending), "View to show ("+joinViews()+")")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := queue.ParseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				item, err := s.client.GetItem(commandCtx(cmd), id)
				if err != nil {
					return err
				}
				if jsonMode {
					return writeJSON(cmd, itemJSON(item))
				}
				renderItemDetail(cmd.OutOrStdout(), item, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output as JSON")
	return cmd
}

func newQueueActionCommand(ctx *commandContext, action queue.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				board := moderation.NewBoard(s.client, s.logger)
				if _, err := board.Refresh(commandCtx(cmd)); err != nil {
					return err
				}
				var failed []error
				for _, id := range ids {
					message, err := runBoardAction(cmd, board, action, id)
					if err != nil && !errors.Is(err, moderation.ErrStale) {
						failed = append(failed, fmt.Errorf("%s %s: %w", action, id, err))
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), message)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
					}
				}
				return errors.Join(failed...)
			})
		},
	}
}

func runBoardAction(cmd *cobra.Command, board *moderation.Board, action queue.Action, id queue.ID) (string, error) {
	reqCtx := commandCtx(cmd)
	var (
		result api.MutationResult
		err    error
	)
	switch action {
	case queue.ActionApprove:
		result, err = board.Approve(reqCtx, id)
	case queue.ActionReject:
		result, err = board.Reject(reqCtx, id)
	case queue.ActionPost:
		result, err = board.Post(reqCtx, id)
	case queue.ActionDelete:
		err = board.Delete(reqCtx, id)
	default:
		return "", fmt.Errorf("unsupported action %q", action)
	}
	if err != nil && !errors.Is(err, moderation.ErrStale) {
		return "", err
	}
	return actionMessage(action, id, result), err
}

func actionMessage(action queue.Action, id queue.ID, result api.MutationResult) string {
	if msg := strings.TrimSpace(result.Message); msg != "" {
		if result.TweetURL != "" {
			return fmt.Sprintf("%s (%s)", msg, result.TweetURL)
		}
		return msg
	}
	switch action {
	case queue.ActionApprove:
		return fmt.Sprintf("Item %s approved", id)
	case queue.ActionReject:
		return fmt.Sprintf("Item %s rejected", id)
	case queue.ActionPost:
		if result.TweetURL != "" {
			return fmt.Sprintf("Item %s posted (%s)", id, result.TweetURL)
		}
		return fmt.Sprintf("Item %s posted", id)
	case queue.ActionDelete:
		return fmt.Sprintf("Item %s deleted", id)
	default:
		return fmt.Sprintf("Item %s updated", id)
	}
}

func newQueueEditCommand(ctx *commandContext) *cobra.Command {
	var caption string
	cmd := &cobra.Command{
		Use:   "edit ID --caption TEXT",
		Short: "Replace an item's caption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := queue.ParseID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("caption") {
				return errors.New("--caption is required")
			}
			if err := textutil.ValidateCaption(caption); err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				reqCtx := commandCtx(cmd)
				board := moderation.NewBoard(s.client, s.logger)
				if _, err := board.Refresh(reqCtx); err != nil {
					return err
				}
				edit, err := board.BeginEdit(id)
				if err != nil {
					return err
				}
				if _, err := board.SetEditCaption(id, caption); err != nil {
					return err
				}
				_, err = board.SaveEdit(reqCtx, id)
				if err != nil && !errors.Is(err, moderation.ErrStale) {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Caption for item %s updated (%s)\n", id, textutil.CaptionCounter(caption))
				fmt.Fprintf(out, "  was: %s\n", textutil.Truncate(textutil.SingleLine(edit.OriginalCaption), 120))
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&caption, "caption", "", "New caption text (max 280 characters)")
	return cmd
}

func parseIDs(args []string) ([]queue.ID, error) {
	ids := make([]queue.ID, 0, len(args))
	for _, arg := range args {
		id, err := queue.ParseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinViews() string {
	views := queue.AllViews()
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}
