package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/model"
)

func testConfig(folders []string, targets []Target) *Config {
	cfg := Default()
	cfg.Folders = folders
	cfg.Sources = targets
	cfg.NoCache = true
	return cfg
}

func TestRunScenarioS2(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"main.cpp": "#include \"h.hpp\"\nimport m;\n",
		"h.hpp":    "",
		"m.ixx":    "export module m;\n",
	})
	cfg := testConfig(nil, []Target{{Name: "app", Source: "main.cpp"}})

	res, err := Run(context.Background(), fsys, platform.NewFixedClock(time.Unix(0, 0)), cfg, logging.New(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "MODULE m SOURCE m.ixx;\nTARGET app SOURCE main.cpp REFERENCE m"
	if res.Formatted != want {
		t.Errorf("got %q, want %q", res.Formatted, want)
	}
}

func TestRunScenarioS3CyclicImports(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"a.ixx": "export module a;\nimport b;\n",
		"b.ixx": "export module b;\nimport a;\n",
	})
	cfg := testConfig(nil, nil)

	_, err := Run(context.Background(), fsys, platform.NewFixedClock(time.Unix(0, 0)), cfg, logging.New(0))
	if !model.Is(err, model.KindCyclicImports) {
		t.Fatalf("expected KindCyclicImports, got %v", err)
	}
}

// TestRunPureHeaderIncludeCycleIsCyclicDependency covers a cycle formed
// entirely of #include directives, with no module import anywhere: a.hpp
// and b.hpp include each other, and main.cpp (the target root) includes
// a.hpp. The build-order gate only looks at modules.module/implement, so
// main.cpp is eligible on the first pass; the resolver's closure walk
// must still surface the cycle as a fatal CyclicDependency error rather
// than letting Run silently report success (§4.F, P6).
func TestRunPureHeaderIncludeCycleIsCyclicDependency(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"main.cpp": "#include \"a.hpp\"\n",
		"a.hpp":    "#include \"b.hpp\"\n",
		"b.hpp":    "#include \"a.hpp\"\n",
	})
	cfg := testConfig(nil, []Target{{Name: "app", Source: "main.cpp"}})

	_, err := Run(context.Background(), fsys, platform.NewFixedClock(time.Unix(0, 0)), cfg, logging.New(0))
	if !model.Is(err, model.KindCyclicDependency) {
		t.Fatalf("expected KindCyclicDependency, got %v", err)
	}
}

func TestRunScenarioS6ImplementationUnit(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"m.ixx":    "export module m;\n",
		"impl.cpp": "module m;\n",
	})
	cfg := testConfig(nil, nil)

	res, err := Run(context.Background(), fsys, platform.NewFixedClock(time.Unix(0, 0)), cfg, logging.New(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Formatted, "IMPLEMENT m SOURCE impl.cpp") {
		t.Errorf("expected an IMPLEMENT record, got %q", res.Formatted)
	}
	if strings.Index(res.Formatted, "MODULE m SOURCE m.ixx") > strings.Index(res.Formatted, "IMPLEMENT m SOURCE impl.cpp") {
		t.Errorf("expected MODULE m before IMPLEMENT m, got %q", res.Formatted)
	}
}

func TestRunStringLiteralDoesNotImportEvil(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{
		"x.cpp": `const char* s = "import evil;";`,
	})
	cfg := testConfig(nil, []Target{{Name: "app", Source: "x.cpp"}})

	res, err := Run(context.Background(), fsys, platform.NewFixedClock(time.Unix(0, 0)), cfg, logging.New(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Formatted, "evil") {
		t.Errorf("string-literal text leaked into manifest: %q", res.Formatted)
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	fsys := platform.NewMapFileSystem(map[string]string{})
	cfg := Default()
	cfg.Root = "/project"
	cfg.Folders = []string{"src"}

	if err := SaveConfig(fsys, ConfigFileName, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(fsys, ConfigFileName)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Root != "/project" || len(loaded.Folders) != 1 || loaded.Folders[0] != "src" {
		t.Errorf("got %+v, want Root=/project Folders=[src]", loaded)
	}
}
