package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/math2python/pkg/merkle"
)

func equation(text string) merkle.Bucket {
	return merkle.Bucket{Type: merkle.BucketEquation, Equation: text, Framework: "numpy"}
}

func converted(sympy string) merkle.Bucket {
	return merkle.Bucket{
		Type:        merkle.BucketConversion,
		Sympy:       sympy,
		Numpy:       "def objective(x): return x",
		Explanation: "* identity",
		Complexity:  "N/A",
		Source:      "llm",
		Model:       "test-model",
	}
}

var _ = Describe("Node", func() {
	Describe("NewNode", func() {
		Context("when creating a root node (no parent)", func() {
			It("creates a node with the given content", func() {
				content := equation("min x")
				node := merkle.NewNode(content, nil)

				Expect(node.Content).To(Equal(content))
			})

			It("sets ParentHash to nil for root nodes", func() {
				node := merkle.NewNode(equation("min x"), nil)

				Expect(node.ParentHash).To(BeNil())
				Expect(node.IsRoot()).To(BeTrue())
			})

			It("produces consistent hashes for the same content", func() {
				node1 := merkle.NewNode(equation("same"), nil)
				node2 := merkle.NewNode(equation("same"), nil)

				Expect(node1.Hash).To(Equal(node2.Hash))
			})

			It("produces different hashes for different content", func() {
				node1 := merkle.NewNode(equation("content A"), nil)
				node2 := merkle.NewNode(equation("content B"), nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})

			It("distinguishes frameworks for the same equation", func() {
				numpy := equation("min x")
				torch := equation("min x")
				torch.Framework = "pytorch"

				Expect(merkle.NewNode(numpy, nil).Hash).NotTo(Equal(merkle.NewNode(torch, nil).Hash))
			})
		})

		Context("when creating a child node (with parent)", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode(equation("min x"), nil)
			})

			It("links the child to the parent via ParentHash", func() {
				child := merkle.NewNode(converted("x"), parent)

				Expect(child.ParentHash).NotTo(BeNil())
				Expect(*child.ParentHash).To(Equal(parent.Hash))
				Expect(child.IsRoot()).To(BeFalse())
			})

			It("produces different hashes for same content with different parents", func() {
				parent2 := merkle.NewNode(equation("max y"), nil)
				child1 := merkle.NewNode(converted("x"), parent)
				child2 := merkle.NewNode(converted("x"), parent2)

				Expect(child1.Hash).NotTo(Equal(child2.Hash))
			})

			It("does not alias the parent's hash", func() {
				child := merkle.NewNode(converted("x"), parent)
				parent.Hash = "mutated"

				Expect(*child.ParentHash).NotTo(Equal("mutated"))
			})
		})
	})

	Describe("Hash computation", func() {
		It("produces a valid SHA-256 hex string (64 characters)", func() {
			node := merkle.NewNode(equation("test"), nil)

			Expect(node.Hash).To(HaveLen(64))
			Expect(node.Hash).To(MatchRegexp("^[a-f0-9]{64}$"))
		})
	})
})
