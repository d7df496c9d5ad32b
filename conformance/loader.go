package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadedTest is a test case with its source file path
type LoadedTest struct {
	File  string
	Suite string
	Test  TestCase
}

// LoadDir walks a directory and loads every .yaml test suite
func LoadDir(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		var suite TestSuite
		if err := yaml.Unmarshal(data, &suite); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for _, test := range suite.Tests {
			loaded = append(loaded, LoadedTest{
				File:  filepath.Base(path),
				Suite: suite.Name,
				Test:  test,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}
