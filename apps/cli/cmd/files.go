package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
)

// collectFiles expands args into scenario files. Directories are walked
// recursively; explicitly named files are kept only when they have a
// scenario extension.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && path != arg && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				if !info.IsDir() && parser.IsScenarioFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if parser.IsScenarioFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

func noFilesError() error {
	return withExitCode(ExitUsageError,
		fmt.Errorf("no scenario files found (extensions: %s)", strings.Join(parser.Extensions, ", ")))
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
