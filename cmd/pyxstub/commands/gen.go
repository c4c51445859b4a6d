package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sbvh/pyxstub/logger"
	"github.com/sbvh/pyxstub/reflected/manifest"
	"github.com/sbvh/pyxstub/stubgen"
)

var genWatch bool

// GenCmd represents the gen command
var GenCmd = &cobra.Command{
	Use:   "gen <manifest>",
	Short: "Generate stub files from a reflected module manifest",
	Long: `Generate .pyi stub files from a module manifest.

The manifest is a JSON or YAML snapshot of the reflected extension modules,
dumped by the Python-side build step after compiling and importing them.
Each module's stub is written next to its originating .pyx file (or into
--out-dir). Import pruning is disabled for __cinit__ modules, which exist
to re-export types.

Flags can also be set through PYXSTUB_* environment variables or an
optional pyxstub.yaml in the working directory.

Examples:
  pyxstub gen build/manifest.json
  pyxstub gen build/manifest.yaml --out-dir stubs/
  pyxstub gen build/manifest.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	GenCmd.Flags().StringP("out-dir", "o", "", "Output directory (default: next to each source file)")
	GenCmd.Flags().Bool("keep-imports", false, "Disable import pruning for all modules")
	GenCmd.Flags().BoolVarP(&genWatch, "watch", "w", false, "Re-generate whenever the manifest changes")

	viper.SetEnvPrefix("PYXSTUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.BindPFlag("out-dir", GenCmd.Flags().Lookup("out-dir"))
	viper.BindPFlag("keep-imports", GenCmd.Flags().Lookup("keep-imports"))
}

func runGen(cmd *cobra.Command, args []string) error {
	// Optional config file; absence is not an error
	viper.SetConfigName("pyxstub")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err == nil {
		logger.Debugw("Loaded config file",
			"path", viper.ConfigFileUsed())
	}

	manifestPath := args[0]
	opts := stubgen.Options{
		OutDir:         viper.GetString("out-dir"),
		KeepAllImports: viper.GetBool("keep-imports"),
	}

	if err := generate(manifestPath, opts); err != nil && !genWatch {
		return err
	}

	if !genWatch {
		return nil
	}

	watcher, err := stubgen.NewWatcher(manifestPath, func() {
		if err := generate(manifestPath, opts); err != nil {
			pterm.Error.Printfln("Regeneration failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()
	watcher.Start()

	pterm.Info.Printfln("Watching %s for changes (ctrl-c to stop)", manifestPath)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func generate(manifestPath string, opts stubgen.Options) error {
	f, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(manifestPath)
	sources := make([]stubgen.ModuleSource, 0, len(f.Modules))
	for _, m := range f.Modules {
		path := m.Path
		if path == "" {
			// No recorded source file: derive one from the dotted module name
			path = strings.ReplaceAll(m.Name, ".", string(filepath.Separator)) + ".pyx"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		sources = append(sources, stubgen.ModuleSource{Module: m.Reflected(), Path: path})
	}

	res, genErr := stubgen.Generate(sources, opts)
	if res != nil {
		for _, written := range res.Written {
			pterm.Info.Printfln("Wrote %s", written)
		}
		if res.Failed > 0 {
			pterm.Warning.Printfln("%d module(s) failed, see log output", res.Failed)
		} else {
			pterm.Success.Printfln("Generated %d stub file(s)", len(res.Written))
		}
	}
	return genErr
}
