package convertcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/math2python/pkg/conversion"
	"github.com/papercomputeco/math2python/pkg/llm"
)

const upstreamReply = `{"sympy": "x**2 + 2*x", "numpy": "def objective(x): return x**2 + 2*x", "explanation": "* Simple quadratic."}`

var _ = Describe("Convert Command", func() {
	var (
		ctx      context.Context
		upstream *httptest.Server
		status   int
		calls    atomic.Int32
		lastReq  llm.ChatRequest
	)

	setenv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		calls.Store(0)
		lastReq = llm.ChatRequest{}

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &lastReq)

			w.Header().Set("Content-Type", "application/json")
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "code": 429}}`))
				return
			}
			_ = json.NewEncoder(w).Encode(llm.ChatResponse{
				Model: lastReq.Model,
				Choices: []llm.Choice{{
					Message: llm.Message{Role: "assistant", Content: upstreamReply},
				}},
			})
		}))
		DeferCleanup(upstream.Close)

		setenv("OPENROUTER_BASE_URL", upstream.URL)
		setenv("OPENROUTER_API_KEY", "test-key")
		setenv("OPENROUTER_MODEL", "test-model")
	})

	execute := func(args ...string) (string, string, error) {
		cmd := NewConvertCmd()
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(append([]string{"--env-file", ""}, args...))
		err := cmd.ExecuteContext(ctx)
		return stdout.String(), stderr.String(), err
	}

	It("prints the upstream conversion as JSON", func() {
		out, _, err := execute("--json", "x^2", "+", "2x")
		Expect(err).NotTo(HaveOccurred())

		var resp conversion.Response
		Expect(json.Unmarshal([]byte(out), &resp)).To(Succeed())
		Expect(resp.Sympy).To(Equal("x**2 + 2*x"))
		Expect(resp.Numpy).To(Equal("def objective(x): return x**2 + 2*x"))
		Expect(resp.Complexity).To(Equal(conversion.ComplexityPlaceholder))

		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(lastReq.Model).To(Equal("test-model"))
		Expect(lastReq.Messages).To(HaveLen(2))
		Expect(lastReq.Messages[1].Content).To(Equal("Convert this equation: x^2 + 2x"))
	})

	It("renders plain markdown when stdout is not a terminal", func() {
		out, _, err := execute("x^2 + 2x")
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(ContainSubstring("x^2 + 2x"))
		Expect(out).To(ContainSubstring("SymPy"))
		Expect(out).To(ContainSubstring("x**2 + 2*x"))
		Expect(out).To(ContainSubstring("Simple quadratic."))
	})

	It("falls back to the demo payload when the upstream is rate limited", func() {
		status = http.StatusTooManyRequests

		out, errOut, err := execute("--json", "max margin with C")
		Expect(err).NotTo(HaveOccurred())

		var resp conversion.Response
		Expect(json.Unmarshal([]byte(out), &resp)).To(Succeed())
		Expect(resp).To(Equal(*conversion.SVMDemo()))
		Expect(errOut).To(ContainSubstring("showing demo response"))
	})

	It("rejects an empty equation without calling the upstream", func() {
		_, _, err := execute("   ")
		Expect(err).To(MatchError(conversion.ErrInvalidInput))
		Expect(calls.Load()).To(BeZero())
	})

	It("requires an equation argument", func() {
		_, _, err := execute()
		Expect(err).To(HaveOccurred())
	})
})
