// Command sqllint verifies that every SQL string constant in the tree starts
// with a --sql <uuid> audit marker and that queries only live in the
// sqlinline package. Run it with no arguments from the repository root.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlPattern    = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	markerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

func main() {
	flag.Parse()
	roots := flag.Args()
	if len(roots) == 0 {
		roots = []string{"internal"}
	}

	var problems []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			found, err := checkFile(path)
			if err != nil {
				return err
			}
			problems = append(problems, found...)
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(problems) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: unaudited SQL constants")
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, "  "+p)
		}
		os.Exit(1)
	}
}

// checkFile reports string constants that look like SQL but either live
// outside package sqlinline or lack the audit marker on their first line.
func checkFile(path string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}
	inSQLPackage := file.Name.Name == "sqlinline"

	var problems []string
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for _, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw := rawString(lit.Value)
			if !sqlPattern.MatchString(raw) {
				continue
			}
			pos := fset.Position(lit.Pos())
			switch {
			case !inSQLPackage:
				problems = append(problems, fmt.Sprintf("%s:%d SQL constant outside package sqlinline", path, pos.Line))
			case !markerPattern.MatchString(firstLine(raw)):
				problems = append(problems, fmt.Sprintf("%s:%d missing --sql <uuid> marker", path, pos.Line))
			}
		}
		return true
	})
	return problems, nil
}

func rawString(quoted string) string {
	if strings.HasPrefix(quoted, "`") {
		return strings.Trim(quoted, "`")
	}
	s, err := strconv.Unquote(quoted)
	if err != nil {
		return ""
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
