package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"
)

// allowedGlobalPrefixes lists name prefixes for which package-level vars
// are treated as constant-like.
var allowedGlobalPrefixes = map[string][]string{
	// payload: lipgloss colors and styles of the summary renderer.
	"payload": {"style", "color"},
}

// TestNoMutableGlobalState scans internal packages for package-level var
// declarations and flags any that are not one of:
//   - error sentinels (errors.New / fmt.Errorf)
//   - compile-time interface checks (var _ T = ...)
//   - regexp.MustCompile
//   - simple or composite literals
//   - names matching an allowed prefix
//
// Loggers, recorders and registries are passed explicitly, never stored
// in package state.
func TestNoMutableGlobalState(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			prefixes := allowedGlobalPrefixes[pkg]
			fset := token.NewFileSet()
			for _, filePath := range goFilesIn(t, filepath.Join(dir, pkg)) {
				node, err := parser.ParseFile(fset, filePath, nil, 0)
				if err != nil {
					t.Fatalf("parsing %s: %v", filePath, err)
				}
				for _, decl := range node.Decls {
					gd, ok := decl.(*ast.GenDecl)
					if !ok || gd.Tok != token.VAR {
						continue
					}
					for _, spec := range gd.Specs {
						if vs, ok := spec.(*ast.ValueSpec); ok {
							checkVarSpec(t, vs, prefixes, filePath)
						}
					}
				}
			}
		})
	}
}

// checkVarSpec checks a single var spec against the allowed patterns.
func checkVarSpec(t *testing.T, vs *ast.ValueSpec, prefixes []string, filePath string) {
	t.Helper()

	for i, name := range vs.Names {
		if name.Name == "_" || hasAllowedPrefix(name.Name, prefixes) {
			continue
		}
		var val ast.Expr
		if i < len(vs.Values) {
			val = vs.Values[i]
		}
		if isErrorSentinel(vs.Type, val) || isPkgCall(val, "regexp", "MustCompile") {
			continue
		}
		switch val.(type) {
		case *ast.BasicLit, *ast.CompositeLit:
			continue
		}
		t.Errorf("mutable global state in %s: var %s; use dependency injection or move to a function",
			filepath.Base(filePath), name.Name)
	}
}

// hasAllowedPrefix returns true if varName starts with any of the given prefixes.
func hasAllowedPrefix(varName string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(varName, p) {
			return true
		}
	}
	return false
}

// isErrorSentinel returns true if the var is typed error or initialized
// with errors.New or fmt.Errorf.
func isErrorSentinel(typeExpr ast.Expr, val ast.Expr) bool {
	if ident, ok := typeExpr.(*ast.Ident); ok && ident.Name == "error" {
		return true
	}
	return isPkgCall(val, "errors", "New") || isPkgCall(val, "fmt", "Errorf")
}

// isPkgCall reports whether val is a call of pkg.fn(...).
func isPkgCall(val ast.Expr, pkg, fn string) bool {
	call, ok := val.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	return ok && pkgIdent.Name == pkg && sel.Sel.Name == fn
}
