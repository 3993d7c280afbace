package conversion

import "regexp"

// unsafeImport matches import statements for modules that reach the
// operating system or spawn processes.
var unsafeImport = regexp.MustCompile(`(?m)^\s*(?:import|from)\s+(os|sys|subprocess)\b`)

// ScanCode returns the unsafe modules imported by a generated snippet. The
// scan is advisory: nothing is executed or sandboxed and callers must not
// treat an empty result as proof the code is safe.
func ScanCode(code string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, m := range unsafeImport.FindAllStringSubmatch(code, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			found = append(found, m[1])
		}
	}
	return found
}

// scanResponse flags unsafe imports in the code fields of a response.
func scanResponse(resp *Response) []string {
	var flags []string
	for _, mod := range ScanCode(resp.Sympy) {
		flags = append(flags, "sympy:"+mod)
	}
	for _, mod := range ScanCode(resp.Numpy) {
		flags = append(flags, "numpy:"+mod)
	}
	return flags
}
