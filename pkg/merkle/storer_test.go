package merkle_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/math2python/pkg/merkle"
)

// storerBehaviors runs the shared Storer contract against a fresh store.
func storerBehaviors(newStorer func() merkle.Storer) {
	var (
		storer merkle.Storer
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = newStorer()
	})

	AfterEach(func() {
		Expect(storer.Close()).To(Succeed())
	})

	put := func(nodes ...*merkle.Node) {
		for _, n := range nodes {
			_, err := storer.Put(ctx, n)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	Describe("Put and Get", func() {
		It("stores and retrieves a node", func() {
			node := merkle.NewNode(equation("min x"), nil)

			isNew, err := storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			retrieved, err := storer.Get(ctx, node.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Hash).To(Equal(node.Hash))
			Expect(retrieved.Content).To(Equal(node.Content))
			Expect(retrieved.ParentHash).To(BeNil())
		})

		It("stores and retrieves a node with parent", func() {
			parent := merkle.NewNode(equation("min x"), nil)
			child := merkle.NewNode(converted("x"), parent)
			put(parent, child)

			retrieved, err := storer.Get(ctx, child.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.ParentHash).NotTo(BeNil())
			Expect(*retrieved.ParentHash).To(Equal(parent.Hash))
			Expect(retrieved.Content).To(Equal(child.Content))
		})

		It("returns ErrNotFound for non-existent hash", func() {
			_, err := storer.Get(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFoundErr merkle.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})

		It("is idempotent for duplicate puts", func() {
			node := merkle.NewNode(equation("min x"), nil)

			isNew, err := storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			isNew, err = storer.Put(ctx, node)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			nodes, _ := storer.List(ctx)
			Expect(nodes).To(HaveLen(1))
		})

		It("rejects nil nodes", func() {
			_, err := storer.Put(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil node"))
		})
	})

	Describe("Has", func() {
		It("returns true for existing node", func() {
			node := merkle.NewNode(equation("min x"), nil)
			put(node)

			exists, err := storer.Has(ctx, node.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("returns false for non-existent hash", func() {
			exists, err := storer.Has(ctx, "nonexistent")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("returns all nodes in insertion order", func() {
			node1 := merkle.NewNode(equation("a"), nil)
			node2 := merkle.NewNode(converted("b"), node1)
			node3 := merkle.NewNode(equation("c"), nil)
			put(node1, node2, node3)

			nodes, err := storer.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(HaveLen(3))
			Expect(nodes[0].Hash).To(Equal(node1.Hash))
			Expect(nodes[2].Hash).To(Equal(node3.Hash))
		})

		It("returns empty slice for empty store", func() {
			nodes, err := storer.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(BeEmpty())
		})
	})

	Describe("Roots and Leaves", func() {
		It("separates equations from their conversions", func() {
			root1 := merkle.NewNode(equation("a"), nil)
			root2 := merkle.NewNode(equation("b"), nil)
			child := merkle.NewNode(converted("x"), root1)
			put(root1, root2, child)

			roots, err := storer.Roots(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roots).To(HaveLen(2))

			leaves, err := storer.Leaves(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(leaves).To(HaveLen(2))
			Expect([]string{leaves[0].Hash, leaves[1].Hash}).To(ConsistOf(root2.Hash, child.Hash))
		})
	})

	Describe("Ancestry", func() {
		It("returns path from node to root", func() {
			root := merkle.NewNode(equation("root"), nil)
			child := merkle.NewNode(converted("child"), root)
			grandchild := merkle.NewNode(converted("grandchild"), child)
			put(root, child, grandchild)

			ancestry, err := storer.Ancestry(ctx, grandchild.Hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(ancestry).To(HaveLen(3))
			Expect(ancestry[0].Content.Sympy).To(Equal("grandchild"))
			Expect(ancestry[1].Content.Sympy).To(Equal("child"))
			Expect(ancestry[2].Content.Equation).To(Equal("root"))
		})

		It("returns ErrNotFound for an unknown hash", func() {
			_, err := storer.Ancestry(ctx, "nonexistent")
			Expect(err).To(BeAssignableToTypeOf(merkle.ErrNotFound{}))
		})
	})

	Describe("Content-addressable deduplication", func() {
		It("deduplicates identical conversions", func() {
			root := merkle.NewNode(equation("min x"), nil)
			put(root, merkle.NewNode(converted("x"), root), merkle.NewNode(converted("x"), root))

			nodes, _ := storer.List(ctx)
			Expect(nodes).To(HaveLen(2))
		})

		It("creates branches for different conversions of the same equation", func() {
			root := merkle.NewNode(equation("min x"), nil)
			put(root, merkle.NewNode(converted("x"), root), merkle.NewNode(converted("x**1"), root))

			leaves, _ := storer.Leaves(ctx)
			Expect(leaves).To(HaveLen(2))

			roots, _ := storer.Roots(ctx)
			Expect(roots).To(HaveLen(1))
		})
	})
}

var _ = Describe("MemoryStorer", func() {
	storerBehaviors(func() merkle.Storer {
		return merkle.NewMemoryStorer()
	})
})

var _ = Describe("SQLiteStorer", func() {
	storerBehaviors(func() merkle.Storer {
		s, err := merkle.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("creates a storer with file database", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

		s, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("persists nodes across reopen", func() {
		ctx := context.Background()
		dbPath := filepath.Join(GinkgoT().TempDir(), "tape.db")
		node := merkle.NewNode(equation("min x"), nil)

		s, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Put(ctx, node)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Close()).To(Succeed())

		reopened, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		exists, err := reopened.Has(ctx, node.Hash)
		Expect(err).NotTo(HaveOccurred())
		Expect(exists).To(BeTrue())
	})
})
