package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gocorda/adapters/cobrajson"
	"gocorda/adapters/excel"
	"gocorda/adapters/gonumlp"
	"gocorda/adapters/report"
	"gocorda/app"
	"gocorda/domain/confidence"
	"gocorda/domain/network"
	"gocorda/internal/api"
	"gocorda/internal/corda"
	"gocorda/internal/errors"
	"gocorda/internal/migration"
)

func newBuildCmd(e *env) *cobra.Command {
	var paramsPath, outPath, name string
	var genes, reuse, asJSON bool
	table := excel.DefaultTableConfig()

	cmd := &cobra.Command{
		Use:   "build <model.json> <confidence.{csv,tsv,xlsx}>",
		Short: "Reconstruct a context-specific model",
		Long: `Reconstruct a context-specific model from a COBRA JSON model and a table of
confidence levels (-1 exclude, 0 unknown, 1 low, 2 medium, 3 high).

With --genes the table holds gene levels that are mapped onto reactions
through the gene-reaction rules. Runs are recorded when --db or DATABASE_URL is set.

Example: corda build recon.json confidence.csv --params params.yaml --out specific.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			net, err := cobrajson.ReadFile(args[0])
			if err != nil {
				return err
			}
			levels, err := excel.ReadConfidence(args[1], table)
			if err != nil {
				return err
			}
			opts, err := e.options(paramsPath)
			if err != nil {
				return err
			}
			svc, err := e.service(ctx)
			if err != nil {
				return err
			}

			req := app.ReconstructionRequest{Network: net, Options: opts, Name: name, Reuse: reuse}
			if genes {
				req.GeneConfidence = levels
			} else {
				req.Confidence = levels
			}
			res, err := svc.Reconstruct(ctx, req)
			if err != nil {
				return err
			}

			if outPath != "" && res.Model != nil {
				if err := cobrajson.WriteFile(outPath, res.Model); err != nil {
					return err
				}
			}
			if asJSON {
				return printJSON(cmd, res.Run)
			}
			out := cmd.OutOrStdout()
			if res.Cached {
				fmt.Fprintf(out, "reused run %s\n", res.Run.ID)
			} else {
				fmt.Fprintf(out, "run %s (%d LP solves, %d ms)\n", res.Run.ID, res.Run.Solves, res.Run.DurationMS)
			}
			fmt.Fprint(out, res.Run.Report)
			if outPath != "" && res.Model != nil {
				fmt.Fprintf(out, "wrote %d reactions to %s\n", len(res.Model.Reactions), outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML parameter file")
	cmd.Flags().StringVar(&outPath, "out", "", "Write the reconstruction as COBRA JSON")
	cmd.Flags().StringVar(&name, "name", "", "Name of the reconstruction (default: model name)")
	cmd.Flags().BoolVar(&genes, "genes", false, "The table holds gene confidences")
	cmd.Flags().BoolVar(&reuse, "reuse", false, "Return a stored run with identical inputs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run record as JSON")
	addTableFlags(cmd, &table)
	return cmd
}

func newAssociatedCmd(e *env) *cobra.Command {
	var paramsPath string
	var penalizeMedium, redundancy bool
	table := excel.DefaultTableConfig()

	cmd := &cobra.Command{
		Use:   "associated <model.json> <confidence> <reaction>...",
		Short: "Find the reactions needed to carry flux through each target",
		Long: `Find the reactions needed to carry flux through each target reaction.
Append _reverse to a reaction id to target its backward direction.

Example: corda associated recon.json confidence.csv PGI PGI_reverse --penalize-medium`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			net, err := cobrajson.ReadFile(args[0])
			if err != nil {
				return err
			}
			levels, err := excel.ReadConfidence(args[1], table)
			if err != nil {
				return err
			}
			opts, err := e.options(paramsPath)
			if err != nil {
				return err
			}
			svc := app.NewReconstructionService(gonumlp.New(), nil, e.logger)

			out, err := svc.Associated(ctx, app.AssociationRequest{
				Network:    net,
				Confidence: levels,
				Options:    opts,
				Search:     corda.SearchOptions{PenalizeMedium: penalizeMedium, DetectRedundancy: redundancy},
				Variables:  args[2:],
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, a := range out {
				switch {
				case a.Impossible:
					fmt.Fprintf(w, "%s: cannot carry flux\n", a.Target)
				default:
					fmt.Fprintf(w, "%s (%d alternatives): %s\n", a.Target, a.Redundancy, strings.Join(a.Support, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&paramsPath, "params", "", "YAML parameter file")
	cmd.Flags().BoolVar(&penalizeMedium, "penalize-medium", true, "Penalize medium confidence reactions")
	cmd.Flags().BoolVar(&redundancy, "redundancy", true, "Search for alternative routes")
	addTableFlags(cmd, &table)
	return cmd
}

func newConfidenceCmd(e *env) *cobra.Command {
	var outPath string
	table := excel.DefaultTableConfig()

	cmd := &cobra.Command{
		Use:   "confidence <model.json> <genes.{csv,tsv,xlsx}>",
		Short: "Map gene confidences onto reactions",
		Long: `Map gene confidences onto reactions through the gene-reaction rules of a model.
"and" takes the minimum and "or" the maximum; genes missing from the table are unknown.

Example: corda confidence recon.json genes.csv --out confidence.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := cobrajson.ReadFile(args[0])
			if err != nil {
				return err
			}
			genes, err := excel.ReadConfidence(args[1], table)
			if err != nil {
				return err
			}
			conf, err := confidence.FromRules(net.GeneRules(), genes)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}
			if outPath != "" {
				return excel.WriteConfidence(outPath, conf)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "reaction\tconfidence")
			for _, id := range conf.IDs() {
				fmt.Fprintf(w, "%s\t%d\n", id, int(conf[id]))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the reaction confidences as xlsx")
	addTableFlags(cmd, &table)
	return cmd
}

func newBenchmarkCmd(e *env) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "benchmark <model.json>...",
		Short: "Time the reconstruction of the smallest growing network of each model",
		Long: `Benchmark reconstruction by marking only the objective reactions as high
confidence and everything else as excluded. The reduced model must still grow.

Example: corda benchmark iJO1366.json recon2.json --workers 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nets := make([]*network.Network, 0, len(args))
			for _, path := range args {
				net, err := cobrajson.ReadFile(path)
				if err != nil {
					return err
				}
				nets = append(nets, net)
			}
			opts, err := e.options("")
			if err != nil {
				return err
			}
			if workers < 1 {
				workers = e.cfg.Engine.Workers
			}

			svc := app.NewBenchmarkService(gonumlp.New(), e.logger, workers)
			results, err := svc.BenchmarkAll(cmd.Context(), nets, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "model\tsetup\tbuild\tvalidation\tincluded\tgrowth\tstatus")
			failed := 0
			for _, r := range results {
				status := "ok"
				if !r.Valid {
					status = "FAILED: " + r.Error
					failed++
				}
				fmt.Fprintf(w, "%s\t%.3gs\t%.3gs\t%.3gs\t%d/%d\t%.4g\t%s\n", r.ModelID,
					r.Setup.Seconds(), r.Build.Seconds(), r.Validation.Seconds(),
					r.Included, r.Reactions, r.Growth, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d models failed validation", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Models benchmarked concurrently (default CORDA_WORKERS)")
	return cmd
}

func newRunsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored reconstruction runs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.storedService(cmd)
			if err != nil {
				return err
			}
			runs, err := svc.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "id\tmodel\tstatus\tincluded\tsolves\tcreated")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%s\n", r.ID, r.ModelID, r.Status, r.Included, r.Total, r.Solves, r.CreatedAt)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")

	var format string
	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run as markdown, html or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.storedService(cmd)
			if err != nil {
				return err
			}
			rec, err := svc.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				_, err = out.Write(report.Markdown(rec))
			case "html":
				_, err = out.Write(report.HTML(rec))
			case "json":
				err = printJSON(cmd, rec)
			default:
				err = errors.InvalidInput(fmt.Sprintf("unknown format %q", format))
			}
			return err
		},
	}
	showCmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html or json")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func newServeCmd(e *env) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconstruction API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context())
			if err != nil {
				return err
			}
			srvCfg := e.cfg.Server
			if port != "" {
				srvCfg.Port = port
			}
			return api.NewServer(svc, e.cfg.Engine, srvCfg, e.logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default PORT)")
	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the run store tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.dbURL == "" {
				return errors.ConfigInvalid("migrate needs --db or DATABASE_URL")
			}
			// Open applies the schema
			if _, err := e.runs(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run store at schema %s\n", migration.NewRunner().Version())
			return nil
		},
	}
}

func (e *env) storedService(cmd *cobra.Command) (*app.ReconstructionService, error) {
	if e.dbURL == "" {
		return nil, errors.ConfigInvalid("no run store configured, set --db or DATABASE_URL")
	}
	return e.service(cmd.Context())
}

func addTableFlags(cmd *cobra.Command, cfg *excel.TableConfig) {
	cmd.Flags().StringVar(&cfg.Sheet, "sheet", cfg.Sheet, "Sheet of an xlsx table")
	cmd.Flags().StringVar(&cfg.IDColumn, "id-column", "", "Header of the id column (default: detected)")
	cmd.Flags().StringVar(&cfg.ValueColumn, "value-column", "", "Header of the level column (default: detected)")
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
