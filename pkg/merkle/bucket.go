package merkle

const (
	BucketEquation   = "equation"
	BucketConversion = "conversion"
)

// Bucket is the content stored in a node. Equation buckets carry the request;
// conversion buckets carry the response and how it was produced.
type Bucket struct {
	Type string `json:"type"`

	// Equation buckets
	Equation  string `json:"equation,omitempty"`
	Framework string `json:"framework,omitempty"`

	// Conversion buckets
	Sympy       string   `json:"sympy,omitempty"`
	Numpy       string   `json:"numpy,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Complexity  string   `json:"complexity,omitempty"`
	Source      string   `json:"source,omitempty"`
	Model       string   `json:"model,omitempty"`
	Flags       []string `json:"flags,omitempty"`
}
