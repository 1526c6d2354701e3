package chatcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbridge/pkg/chat"
)

func newTitleCmd(root *rootCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "title",
		Short: "Get, set or suggest conversation titles",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <conversation-id>",
			Short: "Print the title of a conversation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
					title, err := client.Title(ctx, chat.ParseConversationID(args[0]))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), title)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "set <conversation-id> <title>",
			Short: "Set the title of a conversation",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
					ack, err := client.SetTitle(ctx, chat.ParseConversationID(args[0]), args[1])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), ack)
				})
			},
		},
		&cobra.Command{
			Use:   "suggest <conversation-id>",
			Short: "Ask the host to suggest a title",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
					title, err := client.SuggestTitle(ctx, chat.ParseConversationID(args[0]))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), title)
					return err
				})
			},
		},
	)

	return cmd
}
