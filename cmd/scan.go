package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/TheVeryDarkness/umake/internal/platform"
	"github.com/TheVeryDarkness/umake/pipeline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var scanCmd = &cobra.Command{
	Use:   "scan [targetName sourcePath]...",
	Short: "Scan sources and emit a build manifest",
	RunE:  runScan,
}

func init() {
	flags := scanCmd.Flags()
	flags.StringSliceP("folders", "f", nil, "folders to walk (default: root)")
	flags.StringP("target", "t", "info-only", "output mode: info-only, cmake, cmake-store")
	flags.StringSliceP("module", "M", nil, "module interface extensions (default .ixx .mpp .cppm)")
	flags.StringP("encoding", "e", "utf-8", "source text encoding")
	flags.StringSlice("Ed", nil, "exclude a directory (root-relative path)")
	flags.StringSlice("Ef", nil, "exclude a file (root-relative path)")
	flags.StringSlice("eh", nil, "declare a header-only extension")
	flags.StringSlice("es", nil, "declare a source-only extension")
	flags.StringSlice("ehs", nil, "declare a header:source extension pair, e.g. .hpp:.cpp")
	flags.Bool("no-auto-obj", false, "disable auto-object inference from header-to-source pairs")
	flags.Bool("no-cache", false, "disable the cache store")
	flags.Bool("log-update", false, "append cache-refresh reasons to umakeLog.txt")
	flags.Bool("save-config", false, "persist the effective argument set as umakeConfig.json")
	flags.Bool("load-config", false, "load the argument set from umakeConfig.json before applying flags")

	for _, name := range []string{"folders", "target", "module", "encoding", "Ed", "Ef", "eh", "es", "ehs", "no-auto-obj", "no-cache", "log-update"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	fsys := platform.NewOSFileSystem()
	log := newLogger(cmd)

	cfg := pipeline.Default()

	loadConfig, _ := cmd.Flags().GetBool("load-config")
	if loadConfig {
		loaded, err := pipeline.LoadConfig(fsys, pipeline.ConfigFileName)
		if err != nil {
			return fmt.Errorf("--load-config: %w", err)
		}
		cfg = loaded
	}

	if err := applyFlags(cmd, args, cfg); err != nil {
		return err
	}

	// Every relative path (folders, targets, cache, log) is taken
	// against cfg.Root.
	if cfg.Root != "" && cfg.Root != "." {
		if err := os.Chdir(cfg.Root); err != nil {
			return fmt.Errorf("--root: %w", err)
		}
	}

	saveConfig, _ := cmd.Flags().GetBool("save-config")
	if saveConfig {
		if err := pipeline.SaveConfig(fsys, pipeline.ConfigFileName, cfg); err != nil {
			return fmt.Errorf("--save-config: %w", err)
		}
	}

	res, err := pipeline.Run(context.Background(), fsys, platform.RealClock{}, cfg, log)
	if err != nil {
		log.Error("%v", err)
		return err
	}

	renderSummary(res)
	fmt.Println(res.Formatted)
	return nil
}

// buildConfigFromViper layers the viper-bound project config/env onto
// a default Config, without touching positional sources or the
// cobra-only --verbose count; used by both `scan` and `config show`.
func buildConfigFromViper(cfg *pipeline.Config) error {
	if r := viper.GetString("root"); r != "" {
		cfg.Root = r
	}
	if folders := viper.GetStringSlice("folders"); len(folders) > 0 {
		cfg.Folders = folders
	}
	if target := viper.GetString("target"); target != "" {
		cfg.Target = target
	}
	if mods := viper.GetStringSlice("module"); len(mods) > 0 {
		cfg.ModuleExts = mods
	}
	if enc := viper.GetString("encoding"); enc != "" {
		cfg.Encoding = enc
	}
	if dirs := viper.GetStringSlice("Ed"); len(dirs) > 0 {
		cfg.ExcludeDirs = dirs
	}
	if files := viper.GetStringSlice("Ef"); len(files) > 0 {
		cfg.ExcludeFiles = files
	}
	if hs := viper.GetStringSlice("eh"); len(hs) > 0 {
		cfg.HeaderOnlyExts = hs
	}
	if ss := viper.GetStringSlice("es"); len(ss) > 0 {
		cfg.SourceOnlyExts = ss
	}
	pairs, err := parsePairs(viper.GetStringSlice("ehs"))
	if err != nil {
		return err
	}
	if len(pairs) > 0 {
		if cfg.HeaderToSourcePairs == nil {
			cfg.HeaderToSourcePairs = map[string]string{}
		}
		for h, s := range pairs {
			cfg.HeaderToSourcePairs[h] = s
		}
	}
	cfg.NoAutoObject = viper.GetBool("no-auto-obj")
	cfg.NoCache = viper.GetBool("no-cache")
	cfg.LogUpdate = viper.GetBool("log-update")
	return nil
}

// applyFlags layers buildConfigFromViper plus the cobra-only
// --verbose count and positional `<targetName> <sourcePath>` pairs
// onto cfg, matching the teacher's generate.go convention of only
// overwriting a field when its flag was actually provided.
func applyFlags(cmd *cobra.Command, args []string, cfg *pipeline.Config) error {
	if err := buildConfigFromViper(cfg); err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetCount("verbose"); v > 0 {
		cfg.Verbose = v
	}

	targets, err := parseSourcePairs(args)
	if err != nil {
		return err
	}
	if len(targets) > 0 {
		cfg.Sources = targets
	}
	return nil
}

// parseSourcePairs turns the positional `<targetName> <sourcePath>`
// arguments into Config.Sources; an odd count is a usage error (§6).
func parseSourcePairs(args []string) ([]pipeline.Target, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("sources must be given in <targetName> <sourcePath> pairs, got %d arguments", len(args))
	}
	targets := make([]pipeline.Target, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		targets = append(targets, pipeline.Target{Name: args[i], Source: args[i+1]})
	}
	return targets, nil
}

// parsePairs turns "-ehs .hpp:.cpp" entries into a header->source map.
func parsePairs(raw []string) (map[string]string, error) {
	out := map[string]string{}
	for _, entry := range raw {
		h, s, ok := cutOnce(entry, ':')
		if !ok {
			return nil, fmt.Errorf("-ehs %q: expected <headerExt>:<sourceExt>", entry)
		}
		out[h] = s
	}
	return out, nil
}

func cutOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func renderSummary(res *pipeline.Result) {
	rows := [][]string{{"Kind", "Name", "Source"}}
	for _, rec := range res.Manifest {
		rows = append(rows, []string{rec.Kind.String(), rec.Name, rec.Source})
	}
	table := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false)
	out, err := table.WithData(rows).Srender()
	if err != nil {
		return
	}
	pterm.DefaultSection.Println("Manifest")
	pterm.Println(out)
}
