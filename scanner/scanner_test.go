package scanner

import (
	"testing"

	"github.com/TheVeryDarkness/umake/extmap"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/modindex"
	"github.com/TheVeryDarkness/umake/model"
)

func testMapper() *extmap.Mapper {
	return extmap.New(extmap.DefaultModuleExts(), nil, nil, extmap.DefaultHeaderSourcePairs())
}

func scanString(t *testing.T, files map[string]string, path string) (*model.Record, *modindex.Index, error) {
	t.Helper()
	fsys := platform.NewMapFileSystem(files)
	idx := modindex.New()
	rec, err := Scan(fsys, idx, testMapper(), path)
	return rec, idx, err
}

func TestScanIncludes(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": `#include <vector>
#include "local.h"
`,
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.HeadersLibrary.Has("vector") {
		t.Errorf("expected <vector> in HeadersLibrary, got %v", rec.HeadersLibrary.Slice())
	}
	if !rec.HeadersLocal.Has("local.h") {
		t.Errorf("expected local.h in HeadersLocal, got %v", rec.HeadersLocal.Slice())
	}
}

func TestScanImportVariants(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": `import <cstdio>;
import "local.hpp";
import foo.bar;
`,
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ModulesLibrary.Has("cstdio") {
		t.Errorf("expected cstdio in ModulesLibrary, got %v", rec.ModulesLibrary.Slice())
	}
	if !rec.ModulesLocal.Has("local.hpp") {
		t.Errorf("expected local.hpp in ModulesLocal, got %v", rec.ModulesLocal.Slice())
	}
	if !rec.ModulesModule.Has("foo.bar") {
		t.Errorf("expected foo.bar in ModulesModule, got %v", rec.ModulesModule.Slice())
	}
}

func TestScanExportModule(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.ixx": `export module a;
import <vector>;
`,
	}, "a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Provide != "a" {
		t.Errorf("got Provide=%q, want a", rec.Provide)
	}
}

func TestScanBareModuleImplementation(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": `module a;
`,
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Implement != "a" {
		t.Errorf("got Implement=%q, want a", rec.Implement)
	}
}

func TestScanGlobalModuleFragmentIgnored(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.ixx": `module;
#include <cstdio>
export module a;
`,
	}, "a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Provide != "a" {
		t.Errorf("got Provide=%q, want a", rec.Provide)
	}
	if rec.Implement != "" {
		t.Errorf("global module fragment should not set Implement, got %q", rec.Implement)
	}
}

func TestScanPartitionImport(t *testing.T) {
	rec, idx, err := scanString(t, map[string]string{
		"a.ixx": `export module a;
import :p;
`,
	}, "a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ModulesModule.Has("a:p") {
		t.Errorf("expected a:p in ModulesModule, got %v", rec.ModulesModule.Slice())
	}
	if !idx.HasPartitions("a") {
		t.Error("expected partitions registered under a")
	}
	parts := idx.Partitions("a")
	if len(parts) != 1 || parts[0] != ":p" {
		t.Errorf("got partitions %v, want [:p]", parts)
	}
}

func TestScanExportImportPartition(t *testing.T) {
	rec, idx, err := scanString(t, map[string]string{
		"a.ixx": `export module a;
export import :p;
`,
	}, "a.ixx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.ModulesModule.Has("a:p") {
		t.Errorf("expected a:p in ModulesModule, got %v", rec.ModulesModule.Slice())
	}
	if !idx.HasPartitions("a") {
		t.Error("expected partitions registered under a")
	}
}

// TestStringLiteralHidesDirective verifies a fake import spelled
// inside a regular string literal is not mistaken for a directive
// (§4.A, P2).
func TestStringLiteralHidesDirective(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": `const char *s = "import evil;";
`,
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ModulesModule.Has("evil") {
		t.Errorf("string-literal text should not be scanned as an import, got %v", rec.ModulesModule.Slice())
	}
}

// TestRawStringLiteralHidesDirective mirrors the above for raw string
// literals, whose delimiter scheme could otherwise confuse a naive
// lexer.
func TestRawStringLiteralHidesDirective(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": "const char *s = R\"delim(import evil;)delim\";\n",
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ModulesModule.Has("evil") {
		t.Errorf("raw string literal text should not be scanned as an import, got %v", rec.ModulesModule.Slice())
	}
}

func TestLineCommentHidesDirective(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": "// import evil;\nimport real;\n",
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ModulesModule.Has("evil") {
		t.Error("commented-out import should be ignored")
	}
	if !rec.ModulesModule.Has("real") {
		t.Error("expected real import to still be scanned")
	}
}

func TestBlockCommentHidesDirective(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"a.cpp": "/* import evil; */\nimport real;\n",
	}, "a.cpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ModulesModule.Has("evil") {
		t.Error("block-commented import should be ignored")
	}
	if !rec.ModulesModule.Has("real") {
		t.Error("expected real import to still be scanned")
	}
}

func TestScanIsIdempotent(t *testing.T) {
	files := map[string]string{
		"a.cpp": `#include <vector>
import foo;
export module a;
`,
	}
	rec1, _, err := scanString(t, files, "a.cpp")
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	rec2, _, err := scanString(t, files, "a.cpp")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if rec1.Provide != rec2.Provide {
		t.Errorf("got Provide=%q then %q", rec1.Provide, rec2.Provide)
	}
	if rec1.ModulesModule.String() != rec2.ModulesModule.String() {
		t.Errorf("non-deterministic ModulesModule across scans")
	}
}

func TestScanMalformedIncludeErrors(t *testing.T) {
	_, _, err := scanString(t, map[string]string{
		"a.cpp": "#include vector\n",
	}, "a.cpp")
	if !model.Is(err, model.KindMalformedInclude) {
		t.Fatalf("expected KindMalformedInclude, got %v", err)
	}
}

func TestScanUnterminatedLiteralErrors(t *testing.T) {
	_, _, err := scanString(t, map[string]string{
		"a.cpp": `const char *s = "unterminated`,
	}, "a.cpp")
	if !model.Is(err, model.KindUnterminatedLiteral) {
		t.Fatalf("expected KindUnterminatedLiteral, got %v", err)
	}
}

func TestScanMultilineLiteralErrors(t *testing.T) {
	_, _, err := scanString(t, map[string]string{
		"a.cpp": "const char *s = \"broken\nliteral\";\n",
	}, "a.cpp")
	if !model.Is(err, model.KindMultilineLiteral) {
		t.Fatalf("expected KindMultilineLiteral, got %v", err)
	}
}

func TestScanSeedsSiblingSource(t *testing.T) {
	rec, _, err := scanString(t, map[string]string{
		"foo.hpp": `export module foo;`,
		"foo.cpp": ``,
	}, "foo.hpp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.Sources.Has("foo.cpp") {
		t.Errorf("expected foo.cpp seeded into Sources, got %v", rec.Sources.Slice())
	}
}

func TestScanMissingFile(t *testing.T) {
	_, _, err := scanString(t, map[string]string{}, "missing.cpp")
	if !model.Is(err, model.KindFileMissing) {
		t.Fatalf("expected KindFileMissing, got %v", err)
	}
}
