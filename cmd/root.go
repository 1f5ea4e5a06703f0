// Package cmd wires the pipeline package to a cobra/viper command
// line, mirroring the teacher's cmd/root.go persistent-flag and
// config-discovery convention (§10.1).
package cmd

import (
	"os"
	"path/filepath"

	"github.com/TheVeryDarkness/umake/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "umake",
	Short: "Derive a build manifest from C++ module/include dependencies",
	Long: `Scans a tree of C++ sources for #include, import and export module
declarations, and emits a topologically ordered build manifest
describing how each module, implementation unit and target depends on
the others.`,
}

// Execute adds all child commands to the root command and runs it.
// Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to a project config file (default: <root>/.config/umake.yaml)")
	flags.StringP("root", "r", ".", "root directory that all relative paths are taken against")
	flags.CountP("verbose", "v", "increase logging verbosity (repeatable)")

	viper.BindPFlag("configFile", flags.Lookup("config"))
	viper.BindPFlag("root", flags.Lookup("root"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

func initConfig() {
	root := viper.GetString("root")
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err == nil {
		viper.AddConfigPath(filepath.Join(abs, ".config"))
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName("umake")
	viper.SetEnvPrefix("UMAKE")
	viper.AutomaticEnv()

	if cfgFile := viper.GetString("configFile"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	// A missing project config file is not an error: flags and
	// defaults still apply (§10.1).
	_ = viper.ReadInConfig()
}

// newLogger builds a Logger at the verbosity bound to the root
// command's repeatable -v flag.
func newLogger(cmd *cobra.Command) *logging.Logger {
	v, _ := cmd.Flags().GetCount("verbose")
	return logging.New(v)
}
