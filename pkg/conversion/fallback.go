package conversion

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/papercomputeco/math2python/pkg/llm"
)

// DemoSelector picks a demonstration response for an equation when the
// upstream is unavailable. Implementations must always return a response.
type DemoSelector interface {
	Select(equation string) *Response
}

// KeywordSelector chooses between the SVM and Lasso demos by looking for
// max-margin markers ("max" or "C") in the equation text. Matching is
// case-sensitive.
type KeywordSelector struct{}

func (KeywordSelector) Select(equation string) *Response {
	if strings.Contains(equation, "max") || strings.Contains(equation, "C") {
		return SVMDemo()
	}
	return LassoDemo()
}

// demoStatuses are the upstream failures that get a demonstration payload
// instead of an error payload: privacy-filtered models (404), rate limits
// (429) and rejected requests (400).
var demoStatuses = []int{
	http.StatusNotFound,
	http.StatusTooManyRequests,
	http.StatusBadRequest,
}

// IsDemoEligible reports whether err looks like a 400, 404 or 429 failure,
// either as a typed llm.StatusError or by its text. Failures to decode the
// model's reply never qualify.
func IsDemoEligible(err error) bool {
	if err == nil || isReplyError(err) {
		return false
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		for _, code := range demoStatuses {
			if statusErr.StatusCode == code {
				return true
			}
		}
	}

	msg := err.Error()
	for _, code := range demoStatuses {
		if strings.Contains(msg, fmt.Sprint(code)) {
			return true
		}
	}
	return false
}

func isReplyError(err error) bool {
	return errors.Is(err, ErrEmptyReply) ||
		errors.Is(err, ErrMalformedReply) ||
		errors.Is(err, ErrInvalidReply)
}

// ErrorResponse is returned for failures that do not qualify for a demo.
func ErrorResponse(err error) *Response {
	return &Response{
		Sympy:       "# Error converting",
		Numpy:       "# Error converting",
		Explanation: fmt.Sprintf("Failed to process equation. Error: %v", err),
		Complexity:  ComplexityPlaceholder,
	}
}

// SVMDemo is the primal soft-margin SVM demonstration payload.
func SVMDemo() *Response {
	return &Response{
		Sympy:       "import sympy as sp\nw = sp.MatrixSymbol('w', n, 1)\nb = sp.Symbol('b')\nC = sp.Symbol('C')\nx = sp.MatrixSymbol('x', n, 1)\ny = sp.Symbol('y')\n# Hinge Loss Term\nhinge = sp.Max(0, 1 - y * (w.T * x + b))\nobjective = 0.5 * (w.T * w)[0,0] + C * hinge",
		Numpy:       "import numpy as np\n\ndef objective(w, b, X, y, C):\n    # w: weights (n,), b: bias (scalar)\n    # X: data (m, n), y: labels (m,)\n    # L2 Regularization term\n    reg = 0.5 * np.sum(w**2)\n    # Hinge Loss term\n    margins = y * (X @ w + b)\n    hinge = np.maximum(0, 1 - margins)\n    loss = C * np.sum(hinge)\n    return reg + loss",
		Explanation: "*   **Support Vector Machine (PRIMAL)**: This is the classic SVM objective function.\n*   **Regularization**: `0.5 * ||w||^2` maximizes the margin between classes.\n*   **Hinge Loss**: `C * sum(max(0, 1 - ...))` penalizes misclassifications. ",
		Complexity:  ComplexityPlaceholder,
	}
}

// LassoDemo is the L1 + L2 regularized regression demonstration payload.
func LassoDemo() *Response {
	return &Response{
		Sympy:       "import sympy\nx = sympy.MatrixSymbol('x', n, 1)\nA = sympy.MatrixSymbol('A', m, n)\nb = sympy.MatrixSymbol('b', m, 1)\nlambda_ = sympy.Symbol('lambda')\nobjective = 0.5 * (A*x - b).T * (A*x - b) + lambda_ * sympy.Abs(x).sum()",
		Numpy:       "import numpy as np\n\ndef objective(x, A, b, lambda_):\n    # L2 term: 0.5 * ||Ax - b||^2\n    residual = A @ x - b\n    l2_term = 0.5 * np.sum(residual**2)\n    # L1 term: lambda * ||x||_1\n    l1_term = lambda_ * np.sum(np.abs(x))\n    return l2_term + l1_term",
		Explanation: "*   **Lasso Regression**: Combines Least Squares with L1 Regularization.\n*   **Data Fidelity**: Minimizes squared error between `Ax` and `b`.\n*   **Sparsity**: The `lambda * ||x||_1` term forces many coefficients to zero, performing feature selection.",
		Complexity:  ComplexityPlaceholder,
	}
}
