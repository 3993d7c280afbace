package historycmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/math2python/pkg/merkle"
)

var _ = Describe("History Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "math2python-history-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "tape.db")
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	seed := func(equation, sympy, source string) *merkle.Node {
		storer, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer storer.Close()

		root := merkle.NewNode(merkle.Bucket{
			Type:      merkle.BucketEquation,
			Equation:  equation,
			Framework: "numpy",
		}, nil)
		child := merkle.NewNode(merkle.Bucket{
			Type:   merkle.BucketConversion,
			Sympy:  sympy,
			Source: source,
			Model:  "test-model",
		}, root)

		_, err = storer.Put(ctx, root)
		Expect(err).NotTo(HaveOccurred())
		_, err = storer.Put(ctx, child)
		Expect(err).NotTo(HaveOccurred())
		return child
	}

	execute := func(args ...string) (string, error) {
		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("lists recorded conversions with their equations", func() {
		first := seed("x^2 + 2x", "x**2 + 2*x", "llm")
		second := seed("max margin\nwith C", "w", "demo")

		out, err := execute("--db", dbPath)
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(ContainSubstring(first.Hash[:12]))
		Expect(out).To(ContainSubstring(second.Hash[:12]))
		Expect(out).NotTo(ContainSubstring(first.Hash))
		Expect(out).To(ContainSubstring("x^2 + 2x"))
		Expect(out).To(ContainSubstring("max margin with C"))
		Expect(out).To(ContainSubstring("demo"))
		Expect(out).To(ContainSubstring("test-model"))
		Expect(out).To(ContainSubstring("2 conversions in " + dbPath))
	})

	It("prints full hashes with --full", func() {
		node := seed("min x", "x", "llm")

		out, err := execute("--db", dbPath, "--full")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(node.Hash))
	})

	It("reports an empty tape", func() {
		storer, err := merkle.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(storer.Close()).To(Succeed())

		out, err := execute("--db", dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("0 conversions"))
	})

	It("reads the database path from the config file", func() {
		seed("min x", "x", "llm")
		configPath := filepath.Join(tmpDir, "math2python.toml")
		Expect(os.WriteFile(configPath, []byte("[record]\ndb = \""+dbPath+"\"\n"), 0o600)).To(Succeed())

		out, err := execute("--config", configPath, "--env-file", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("1 conversions"))
	})

	It("fails without a database path", func() {
		_, err := execute("--env-file", "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no tape database"))
	})
})
