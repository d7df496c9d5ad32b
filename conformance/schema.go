// Package conformance runs the YAML-driven end-to-end script suite in
// testdata/. Each case is a complete Ore program with expectations on
// its result, its print output, or the exception it throws.
package conformance

// TestSuite is one YAML file of test cases
type TestSuite struct {
	Name  string     `yaml:"name"`
	Tests []TestCase `yaml:"tests"`
}

// TestCase is a single script with its expectations. Result is the
// literal (Inspect) form of the program's value; an empty Result means
// the value is not checked. Throws names the expected exception kind.
type TestCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Result string `yaml:"result"`
	Output string `yaml:"output"`
	Throws string `yaml:"throws"`
}
