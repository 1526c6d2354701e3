package chatcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbridge/pkg/chat"
)

func newPromptsCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List the prompts bundled with the host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
				prompts, err := client.BundledPrompts(ctx)
				if err != nil {
					return err
				}
				return printRawList(cmd, prompts)
			})
		},
	}
}

const imageLongDesc string = `Forward an image request to the host and print its result.

The request is any JSON document the host's image generator accepts; it
is read from a file, or from stdin when the argument is "-".

Examples:
  chatctl image request.json
  echo '{"prompt":"a lighthouse at dusk"}' | chatctl image -`

func newImageCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "image <request.json|->",
		Short: "Generate an image",
		Long:  imageLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return fmt.Errorf("could not read image request: %w", err)
			}
			if !json.Valid(req) {
				return fmt.Errorf("image request is not valid JSON")
			}

			return root.withClient(cmd, func(ctx context.Context, client *chat.Client) error {
				result, err := client.GenerateImage(ctx, json.RawMessage(req))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}
