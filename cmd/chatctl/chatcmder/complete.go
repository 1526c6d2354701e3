package chatcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbridge/pkg/chat"
)

const completeLongDesc string = `Request the next reply in a conversation.

Messages are read from --messages (a JSON array of {"role","content"}
objects, "-" for stdin); any trailing text arguments are appended as one
more message with --role. The reply is rendered as markdown on terminals.

Examples:
  chatctl complete c1 "What is a Merkle DAG?"
  chatctl complete --messages history.json c1
  cat history.json | chatctl complete --messages - --raw c1`

const completeShortDesc string = "Request a completion"

type completeCommander struct {
	root         *rootCommander
	messagesPath string
	role         string
	raw          bool
}

func newCompleteCmd(root *rootCommander) *cobra.Command {
	cmder := &completeCommander{root: root}

	cmd := &cobra.Command{
		Use:   "complete <conversation-id> [text...]",
		Short: completeShortDesc,
		Long:  completeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&cmder.messagesPath, "messages", "m", "", "JSON file with the conversation messages")
	cmd.Flags().StringVar(&cmder.role, "role", chat.RoleUser, "Role of the message built from text arguments")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the reply without markdown rendering")

	return cmd
}

func (c *completeCommander) run(cmd *cobra.Command, id string, text []string) error {
	var messages []chat.Message
	if c.messagesPath != "" {
		data, err := readInput(cmd.InOrStdin(), c.messagesPath)
		if err != nil {
			return fmt.Errorf("could not read messages: %w", err)
		}
		if err := json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("could not parse messages: %w", err)
		}
	}
	if len(text) > 0 {
		messages = append(messages, chat.Message{Role: c.role, Content: strings.Join(text, " ")})
	}
	if len(messages) == 0 {
		return fmt.Errorf("no messages: pass text arguments or --messages")
	}

	return c.root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
		reply, err := client.Completion(ctx, chat.ParseConversationID(id), messages)
		if err != nil {
			return err
		}
		return printMarkdown(cmd.OutOrStdout(), reply.Content, c.raw)
	})
}
