package journal_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbridge/pkg/journal"
)

// describeStorer runs the shared Storer behavior against newStorer.
func describeStorer(name string, newStorer func() journal.Storer) {
	Describe(name, func() {
		var (
			storer journal.Storer
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			storer = newStorer()
		})

		AfterEach(func() {
			if storer != nil {
				storer.Close()
			}
		})

		Describe("Put and Get", func() {
			It("stores and retrieves a node", func() {
				node := journal.NewNode(entry("get_title", `{"id":"c1"}`), nil)

				Expect(storer.Put(ctx, node)).To(Succeed())

				retrieved, err := storer.Get(ctx, node.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(retrieved.Hash).To(Equal(node.Hash))
				Expect(retrieved.ParentHash).To(BeNil())
				Expect(retrieved.Entry.Procedure).To(Equal("get_title"))
				Expect(retrieved.Entry.Args).To(MatchJSON(`{"id":"c1"}`))
				Expect(retrieved.Verify()).To(BeTrue())
			})

			It("stores and retrieves a node with parent", func() {
				parent := journal.NewNode(entry("start_conversation", `{}`), nil)
				child := journal.NewNode(entry("get_title", `{"id":"c1"}`), parent)

				Expect(storer.Put(ctx, parent)).To(Succeed())
				Expect(storer.Put(ctx, child)).To(Succeed())

				retrieved, err := storer.Get(ctx, child.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(retrieved.ParentHash).NotTo(BeNil())
				Expect(*retrieved.ParentHash).To(Equal(parent.Hash))
			})

			It("returns ErrNotFound for non-existent hash", func() {
				_, err := storer.Get(ctx, "nonexistent")

				var notFoundErr journal.ErrNotFound
				Expect(err).To(BeAssignableToTypeOf(notFoundErr))
			})

			It("is idempotent for duplicate puts", func() {
				node := journal.NewNode(entry("get_title", `{"id":"c1"}`), nil)

				Expect(storer.Put(ctx, node)).To(Succeed())
				Expect(storer.Put(ctx, node)).To(Succeed())

				nodes, err := storer.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(nodes).To(HaveLen(1))
			})

			It("rejects nil nodes", func() {
				err := storer.Put(ctx, nil)
				Expect(err).To(MatchError(ContainSubstring("nil node")))
			})
		})

		Describe("Has", func() {
			It("reports stored and missing nodes", func() {
				node := journal.NewNode(entry("get_title", `{"id":"c1"}`), nil)
				Expect(storer.Put(ctx, node)).To(Succeed())

				exists, err := storer.Has(ctx, node.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(exists).To(BeTrue())

				exists, err = storer.Has(ctx, "nonexistent")
				Expect(err).NotTo(HaveOccurred())
				Expect(exists).To(BeFalse())
			})
		})

		Describe("List, Leaves and Ancestry", func() {
			var first, second, third *journal.Node

			BeforeEach(func() {
				first = journal.NewNode(entry("start_conversation", `{}`), nil)
				second = journal.NewNode(entry("completion", `{"id":"c1","messages":[]}`), first)
				third = journal.NewNode(entry("suggest_title", `{"id":"c1"}`), second)

				Expect(storer.Put(ctx, first)).To(Succeed())
				Expect(storer.Put(ctx, second)).To(Succeed())
				Expect(storer.Put(ctx, third)).To(Succeed())
			})

			It("lists nodes in insertion order", func() {
				nodes, err := storer.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(nodes).To(HaveLen(3))
				Expect(nodes[0].Hash).To(Equal(first.Hash))
				Expect(nodes[2].Hash).To(Equal(third.Hash))
			})

			It("returns the chain head as the only leaf", func() {
				leaves, err := storer.Leaves(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(leaves).To(HaveLen(1))
				Expect(leaves[0].Hash).To(Equal(third.Hash))
			})

			It("walks back to the first record", func() {
				path, err := storer.Ancestry(ctx, third.Hash)
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(HaveLen(3))
				Expect(path[0].Entry.Procedure).To(Equal("suggest_title"))
				Expect(path[1].Entry.Procedure).To(Equal("completion"))
				Expect(path[2].Entry.Procedure).To(Equal("start_conversation"))
			})

			It("fails the walk for unknown hashes", func() {
				_, err := storer.Ancestry(ctx, "nonexistent")
				Expect(err).To(BeAssignableToTypeOf(journal.ErrNotFound{}))
			})
		})
	})
}

var _ = Describe("Storers", func() {
	describeStorer("MemoryStorer", func() journal.Storer {
		return journal.NewMemoryStorer()
	})

	describeStorer("SQLiteStorer", func() journal.Storer {
		s, err := journal.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("creates a SQLite file database", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "journal.db")

		s, err := journal.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})
})
