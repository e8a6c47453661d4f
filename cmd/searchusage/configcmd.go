package searchusage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/clpipe/searchusage/internal/config"
	"github.com/clpipe/searchusage/internal/ignore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type configInitOptions struct {
	output          string
	global          bool
	force           bool
	ignoreDirs      []string
	caseInsensitive bool
	threads         int
	maxBytes        int64
	noColor         bool
	format          string
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	initOpts := &configInitOptions{}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .searchusage.yml with the selected options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, initOpts)
		},
	}
	initCmd.Flags().StringVar(&initOpts.output, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&initOpts.global, "global", false, "write the global config file instead")
	initCmd.Flags().BoolVar(&initOpts.force, "force", false, "overwrite an existing file")
	initCmd.Flags().StringArrayVar(&initOpts.ignoreDirs, "ignore-dir", nil, "extra directory name to skip (repeatable)")
	initCmd.Flags().BoolVar(&initOpts.caseInsensitive, "case-insensitive", false, "match without regard to case by default")
	initCmd.Flags().IntVar(&initOpts.threads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&initOpts.maxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	initCmd.Flags().BoolVar(&initOpts.noColor, "no-color", false, "disable color output by default")
	initCmd.Flags().StringVar(&initOpts.format, "format", "", "default output format: text | json | sarif | table")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration for a directory",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	showCmd.Flags().StringP("path", "p", "", "directory whose local config is merged (default: search root)")

	cfgCmd.AddCommand(initCmd, showCmd)
	return cfgCmd
}

func runConfigInit(cmd *cobra.Command, o *configInitOptions) error {
	out := o.output
	if o.global {
		out = config.GlobalPath()
		if out == "" {
			return errors.New("cannot determine global config location")
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(out); err == nil && !o.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if _, err := resolveFormat(&options{}, optStrPtr(o.format), nil); err != nil {
		return err
	}

	fc := config.FileConfig{
		IgnoreDirs:      o.ignoreDirs,
		CaseInsensitive: boolPtr(o.caseInsensitive),
		MaxBytes:        int64Ptr(o.maxBytes),
		Threads:         intPtr(o.threads),
		NoColor:         boolPtr(o.noColor),
		Format:          optStrPtr(o.format),
	}
	if err := config.Write(out, fc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
	return nil
}

// effectiveConfig mirrors FileConfig with every layer resolved.
type effectiveConfig struct {
	Root            string   `yaml:"root"`
	IgnoreDirs      []string `yaml:"ignore_dirs"`
	CaseInsensitive bool     `yaml:"case_insensitive"`
	Include         string   `yaml:"include,omitempty"`
	Exclude         string   `yaml:"exclude,omitempty"`
	MaxBytes        int64    `yaml:"max_bytes"`
	Threads         int      `yaml:"threads"`
	SkipBinary      bool     `yaml:"skip_binary"`
	FollowSymlinks  bool     `yaml:"follow_symlinks"`
	NoColor         bool     `yaml:"no_color"`
	Format          string   `yaml:"format"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	root, err := resolveRoot(path)
	if err != nil {
		return err
	}
	gcfg, err := loadLayer(config.LoadGlobal())
	if err != nil {
		return err
	}
	lcfg, err := loadLayer(config.LoadLocal(root))
	if err != nil {
		return err
	}
	extra, err := ignoreFileDirs(root)
	if err != nil {
		return err
	}
	format, err := resolveFormat(&options{}, lcfg.Format, gcfg.Format)
	if err != nil {
		return err
	}

	eff := effectiveConfig{
		Root:            root,
		IgnoreDirs:      ignore.New(unionDirs(lcfg.IgnoreDirs, gcfg.IgnoreDirs, extra)...).Names(),
		CaseInsensitive: pickBool(nil, lcfg.CaseInsensitive, gcfg.CaseInsensitive),
		Include:         pickString("", lcfg.Include, gcfg.Include),
		Exclude:         pickString("", lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        pickInt64(0, lcfg.MaxBytes, gcfg.MaxBytes),
		Threads:         pickInt(0, lcfg.Threads, gcfg.Threads),
		SkipBinary:      pickBool(nil, lcfg.SkipBinary, gcfg.SkipBinary),
		FollowSymlinks:  pickBool(nil, lcfg.FollowSymlinks, gcfg.FollowSymlinks),
		NoColor:         pickBool(nil, lcfg.NoColor, gcfg.NoColor),
		Format:          format,
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(&eff); err != nil {
		return err
	}
	return enc.Close()
}

func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool {
	if !v {
		return nil
	}
	return &v
}
