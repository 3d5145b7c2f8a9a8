package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/menagerie/internal/engine"
	"github.com/mesh-intelligence/menagerie/internal/paths"
	"github.com/mesh-intelligence/menagerie/internal/scenario"
	"github.com/mesh-intelligence/menagerie/internal/schema"
	"github.com/mesh-intelligence/menagerie/pkg/menagerie"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a fresh context",
		Long: "Run the steps of a scenario file in order against one new context and print\n" +
			"the report as JSON. A relative path is also looked up in the scenarios\n" +
			"directory under the configuration directory.",
		Args: cobra.ExactArgs(1),
		RunE: runScenario,
	}
	cmd.Flags().String("backend", "", "store backend: memory or sqlite")
	cmd.Flags().Bool("strict", false, "reject animal inserts whose zoo does not exist")
	cmd.Flags().String("log-level", "", "debug, info, warn or error")
	cmd.Flags().Bool("metrics", false, "write engine metrics to stderr after the run")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = sess.logger.Sync() }()

	path, err := paths.ResolveScenario(args[0], sess.configDir)
	if err != nil {
		return userError(err)
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return userError(err)
	}

	reg := prometheus.NewRegistry()
	e := engine.New(
		engine.WithLogger(sess.logger),
		engine.WithMetrics(reg),
		engine.WithStrictReferences(sess.cfg.StrictReferences || sc.StrictReferences),
	)
	zoo, err := schema.Zoo(e)
	if err != nil {
		return sysError(err)
	}

	store, err := menagerie.Open(sess.cfg)
	if err != nil {
		return sysError(err)
	}
	defer store.Close()

	sess.logger.Info("running scenario",
		zap.String("scenario", sc.Name),
		zap.String("path", path),
		zap.String("backend", sess.cfg.Backend),
		zap.Int("steps", len(sc.Steps)))

	report, runErr := scenario.Run(cmd.Context(), store, schema.NewExecutor(zoo, sess.logger), sc)
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		return sysError(err)
	}

	metrics, _ := cmd.Flags().GetBool("metrics")
	if metrics {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return sysError(err)
		}
	}

	if runErr != nil {
		return userError(runErr)
	}
	if !report.Passed() {
		for _, f := range report.Failures {
			sess.logger.Warn("step failed", zap.String("step", f.Step), zap.String("diff", f.Diff))
		}
		return userError(fmt.Errorf("scenario %q: %d of %d steps failed", sc.Name, len(report.Failures), len(sc.Steps)))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeMetrics writes every metric family gathered from reg in the
// Prometheus text format.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
