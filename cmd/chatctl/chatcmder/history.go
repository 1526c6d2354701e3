package chatcmder

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbridge/pkg/journal"
)

const historyLongDesc string = `List invocations recorded in the local journal, oldest first.

Each line shows the node hash, start time, procedure, duration and
outcome. With --verify, every node's hash is recomputed and its parent
link checked; a broken chain makes the command fail.

Examples:
  chatctl history --journal ~/.chatbridge/journal.db
  chatctl history --limit 20 --verify`

const historyShortDesc string = "Show the invocation journal"

type historyCommander struct {
	root   *rootCommander
	limit  int
	verify bool
}

func newHistoryCmd(root *rootCommander) *cobra.Command {
	cmder := &historyCommander{root: root}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 0, "Show only the most recent N invocations")
	cmd.Flags().BoolVar(&cmder.verify, "verify", false, "Verify node hashes and parent links")

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command) error {
	cfg, err := c.root.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return errors.New("no journal configured: pass --journal or set CHATBRIDGE_JOURNAL")
	}

	storer, err := journal.NewSQLiteStorer(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("could not open journal %s: %w", cfg.Journal.Path, err)
	}
	defer storer.Close()

	nodes, err := storer.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list journal: %w", err)
	}

	total := len(nodes)
	if c.verify {
		if err := verifyChain(nodes); err != nil {
			return err
		}
	}

	if c.limit > 0 && len(nodes) > c.limit {
		nodes = nodes[len(nodes)-c.limit:]
	}

	out := cmd.OutOrStdout()
	if len(nodes) == 0 {
		fmt.Fprintln(out, "No invocations recorded.")
		return nil
	}

	style := newStyler(out)
	for _, n := range nodes {
		outcome := style.muted("ok")
		if n.Entry.Failed() {
			outcome = style.failure(fmt.Sprintf("%s error: %s", n.Entry.ErrorKind, truncate(n.Entry.Error, 60)))
		}

		fmt.Fprintf(out, "%s  %s  %s  %dms  %s\n",
			style.muted(shortHash(n.Hash)),
			n.Entry.StartedAt.Local().Format(time.DateTime),
			style.label(n.Entry.Procedure),
			n.Entry.DurationMS,
			outcome,
		)
	}

	if c.verify {
		fmt.Fprintf(out, "Verified %d nodes.\n", total)
	}

	return nil
}

// verifyChain checks that every node hashes to its content and points at a
// node recorded before it.
func verifyChain(nodes []*journal.Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !n.Verify() {
			return fmt.Errorf("journal node %s does not match its content", n.Hash)
		}
		if n.ParentHash != nil && !seen[*n.ParentHash] {
			return fmt.Errorf("journal node %s points at unknown parent %s", n.Hash, *n.ParentHash)
		}
		seen[n.Hash] = true
	}
	return nil
}
