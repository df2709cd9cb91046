package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	zminus "go.zminus.dev/pkg"
)

var buildCmd = &cobra.Command{
	Use:   "build [paths...]",
	Short: "Compile Z-- source files",
	Long: `Compile each source file into a C translation unit (or LLVM IR module).
Directories are expanded to the source files they directly contain. With no
paths the current directory is built.`,
	RunE: buildRun,
}

func init() {
	flags := buildCmd.Flags()
	flags.StringP("target", "t", "", "code generator: c or llvm")
	flags.StringP("out", "o", "", "output directory for build artifacts")
	flags.IntP("jobs", "j", 0, "number of files compiled concurrently")
}

type buildJob struct {
	src string
	dst string
}

func buildRun(cmd *cobra.Command, args []string) error {
	if err := applyBuildFlags(cmd); err != nil {
		return err
	}

	target, err := zminus.ParseTarget(cfg.Build.Target)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	sources, err := expandSources(args, cfg.Build.SourceExt)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		rep.Warn("no %s files found", cfg.Build.SourceExt)
		return nil
	}

	jobs, err := planJobs(sources, cfg.Build.OutDir, target)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Build.OutDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	start := time.Now()
	compiler := &zminus.Compiler{Target: target}

	var g errgroup.Group
	g.SetLimit(cfg.Build.Jobs)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := compiler.CompileToFile(job.src, job.dst); err != nil {
				rep.Error(err)
				return nil
			}

			rep.Compiled(job.src, job.dst)
			return nil
		})
	}

	g.Wait()
	rep.Summary(len(jobs), time.Since(start))

	if rep.Errors() > 0 {
		return errReported
	}

	return nil
}

func applyBuildFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if flags.Changed("target") {
		cfg.Build.Target, _ = flags.GetString("target")
	}

	if flags.Changed("out") {
		cfg.Build.OutDir, _ = flags.GetString("out")
	}

	if flags.Changed("jobs") {
		cfg.Build.Jobs, _ = flags.GetInt("jobs")
	}

	return cfg.Validate()
}

// expandSources replaces every directory in paths by the files it directly
// contains with extension ext, in name order.
func expandSources(paths []string, ext string) ([]string, error) {
	var sources []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "stat source")
		}

		if !info.IsDir() {
			sources = append(sources, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrap(err, "read source directory")
		}

		var found []string
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
				found = append(found, filepath.Join(path, entry.Name()))
			}
		}

		sort.Strings(found)
		sources = append(sources, found...)
	}

	return sources, nil
}

func planJobs(sources []string, outDir string, target zminus.Target) ([]buildJob, error) {
	seen := make(map[string]string, len(sources))
	jobs := make([]buildJob, 0, len(sources))

	for _, src := range sources {
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		dst := filepath.Join(outDir, base+target.Extension())

		if prev, ok := seen[dst]; ok {
			return nil, errors.Errorf("%s and %s would both be compiled to %s", prev, src, dst)
		}

		seen[dst] = src
		jobs = append(jobs, buildJob{src: src, dst: dst})
	}

	return jobs, nil
}
