package chatcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbridge/pkg/chat"
)

type startCommander struct {
	root *rootCommander
	hint string
}

func newStartCmd(root *rootCommander) *cobra.Command {
	cmder := &startCommander{root: root}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new conversation",
		Long: `Start a new conversation and print its identifier.

Whether repeating a hint returns the same conversation is up to the host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.hint, "hint", "", "Hint passed to the host (omitted when not set)")

	return cmd
}

func (c *startCommander) run(cmd *cobra.Command) error {
	var hint *string
	if cmd.Flags().Changed("hint") {
		hint = &c.hint
	}

	return c.root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
		id, err := client.StartConversation(ctx, hint)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	})
}

func newListCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
				summaries, err := client.Conversations(ctx)
				if err != nil {
					return err
				}
				return printRawList(cmd, summaries)
			})
		},
	}
}

func newShowCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
				record, err := client.Conversation(ctx, chat.ParseConversationID(args[0]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			})
		},
	}
}

// printRawList prints a list of raw host values as one JSON array.
func printRawList(cmd *cobra.Command, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("could not encode list: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), data)
}
