package arch_test

import (
	"path/filepath"
	"strings"
	"testing"
)

// layers assigns each internal package to a numeric layer. Lower layers are
// more foundational; higher layers may depend on lower ones but not vice versa.
// A package at layer N may only import packages at layer N or below.
var layers = map[string]int{
	"metrics":   0,
	"roster":    0,
	"telemetry": 0,

	"graph":  1,
	"source": 1,

	"payload": 2,

	"centrality": 3,

	"config":   4,
	"pipeline": 4,
}

// corePackages must stay free of I/O: no network, database or file-system
// imports. Acquisition lives in source, output in cmd.
var corePackages = []string{"roster", "graph", "centrality"}

var ioImports = []string{
	"database/sql",
	"net/http",
	"os",
	"modernc.org/sqlite",
	"github.com/spf13/viper",
}

// TestDependencyLayering verifies that no internal package imports a package
// from a higher layer, enforcing the project's dependency DAG.
func TestDependencyLayering(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		importerLayer, ok := layers[pkg]
		if !ok {
			continue
		}
		internal, _ := importsOf(t, filepath.Join(dir, pkg))
		for _, imp := range internal {
			importedLayer, ok := layers[imp]
			if !ok || importerLayer >= importedLayer {
				continue
			}
			t.Errorf("layer violation: %s (layer %d) imports %s (layer %d)",
				pkg, importerLayer, imp, importedLayer)
		}
	}
}

// TestNoUnknownPackages verifies that every internal package has an
// assigned layer.
func TestNoUnknownPackages(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer assignment; add it to the layers map", pkg)
		}
	}
}

// TestCorePackagesAvoidIO verifies that the normalizer, builder and scorer
// never reach for files, sockets or databases.
func TestCorePackagesAvoidIO(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range corePackages {
		_, external := importsOf(t, filepath.Join(dir, pkg))
		for _, imp := range external {
			for _, banned := range ioImports {
				if imp == banned || strings.HasPrefix(imp, banned+"/") {
					t.Errorf("core package %s imports %s", pkg, imp)
				}
			}
		}
	}
}
