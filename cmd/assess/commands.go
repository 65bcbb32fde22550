package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rg0now/device-assessment/pkg/analyzer"
	"github.com/rg0now/device-assessment/pkg/catalog"
	"github.com/rg0now/device-assessment/pkg/logger"
	"github.com/rg0now/device-assessment/pkg/models"
	"github.com/rg0now/device-assessment/pkg/output"
	"github.com/rg0now/device-assessment/pkg/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// assessCmd assesses a single device described by flags.
func assessCmd(g *globalFlags) *cobra.Command {
	var (
		serial, assetTag, brand, model string
		year                           string
		fault, spec, physical          string
		warranty, age                  string
		format                         string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a single device",
		Long: `Assess one device and print the result.

Examples:
  # Look the device up in the database, derive age and warranty
  device-assessment assess --brand=Dell --model="Latitude 5490" \
      --fault=passes --spec=meets --physical=reasonable

  # Everything entered by hand, printed as JSON
  device-assessment assess --fault=fails --spec=below --physical=not-reasonable \
      --warranty=out --age="7 years" --format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(g)
			if err != nil {
				return err
			}

			req := analyzer.Request{
				SerialNumber: serial,
				AssetTag:     assetTag,
				Brand:        brand,
				Model:        model,
			}
			if year != "" {
				y, ok := analyzer.ParseManufacturingYear(year)
				if !ok {
					return fmt.Errorf("invalid manufacturing year %q", year)
				}
				req.ManufacturingYear = y
			}

			if req.Input, err = parseInput(fault, spec, physical, warranty); err != nil {
				return err
			}
			req.Input.DeviceAgeYears = analyzer.ParseAge(age)

			if format == "" {
				format = rt.cfg.Export.Format
			}
			return printAssessment(cmd.OutOrStdout(), rt.analyzer.Assess(req), format)
		},
	}

	cmd.Flags().StringVar(&serial, "serial", "", "Serial number")
	cmd.Flags().StringVar(&assetTag, "asset-tag", "", "Asset tag")
	cmd.Flags().StringVar(&brand, "brand", "", "Device brand (exact database name)")
	cmd.Flags().StringVar(&model, "model", "", "Device model (exact database name)")
	cmd.Flags().StringVar(&year, "year", "", "Manufacturing year, used when the database has no match")
	cmd.Flags().StringVar(&fault, "fault", "", "Hardware testing: passes | fails")
	cmd.Flags().StringVar(&spec, "spec", "", "Specifications vs SOE: exceeds | meets | below")
	cmd.Flags().StringVar(&physical, "physical", "", "Physical condition: reasonable | not-reasonable")
	cmd.Flags().StringVar(&warranty, "warranty", "", "Warranty override: under | out")
	cmd.Flags().StringVar(&age, "age", "", `Device age override, e.g. "6.5" or "7 years"`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output: table, simple, detailed, html or json")

	return cmd
}

// batchCmd assesses every request of a JSONL file.
func batchCmd(g *globalFlags) *cobra.Command {
	var (
		inputFile  string
		outputFile string
		topN       int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess devices from a JSONL file",
		Long: `Assess one device per JSONL line and write one assessment per line.

Each input line is a request such as:
  {"asset_tag":"A-1001","brand":"HP","model":"EliteBook 840 G5",
   "input":{"fault_status":"Passes hardware testing","specifications":"Meets SOE",
            "physical_condition":"Reasonable"}}

Examples:
  device-assessment batch --input=devices.jsonl --output=results.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(g)
			if err != nil {
				return err
			}

			requests, err := loadRequests(inputFile, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to load requests: %w", err)
			}

			w, err := output.NewWriter(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output writer: %w", err)
			}
			defer w.Close()

			assessments := make([]models.Assessment, 0, len(requests))
			for _, req := range requests {
				as := rt.analyzer.Assess(req)
				if err := w.WriteAssessment(as); err != nil {
					return err
				}
				assessments = append(assessments, as)
			}

			logger.Info("Batch assessed", zap.Int("devices", len(assessments)))
			output.PrintSummary(cmd.ErrOrStderr(), output.GenerateSummary(assessments, topN))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "-", "Input JSONL file with requests (- for stdin)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (JSONL format, default: stdout)")
	cmd.Flags().IntVar(&topN, "top", 5, "Number of highest/lowest scores in the summary")

	return cmd
}

// reportCmd generates reports from assessment results.
func reportCmd() *cobra.Command {
	var (
		inputFile string
		topN      int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports from assessment results",
		Long: `Generate summary reports from JSONL assessment results.

Examples:
  device-assessment report --input=results.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			assessments, err := loadAssessmentsFromFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to load results: %w", err)
			}

			output.PrintSummary(cmd.OutOrStdout(), output.GenerateSummary(assessments, topN))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input JSONL file with assessment results")
	cmd.Flags().IntVar(&topN, "top", 10, "Number of highest/lowest scores to show")
	cmd.MarkFlagRequired("input")

	return cmd
}

// lookupCmd queries the device database.
func lookupCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup BRAND [MODEL]",
		Short: "Look up a device or list matching brands and models",
		Long: `With a brand and a model, print the manufacturing year of an exact
match together with the derived age and warranty. With only a brand, list
the models of that brand; if the brand is not an exact match, list the
brands containing it.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cat := rt.store.Current()

			if len(args) == 1 {
				return printSuggestions(out, cat, args[0])
			}

			form := rt.analyzer.NewForm()
			form.SetBrand(args[0])
			if !form.SetModel(args[1]) {
				fmt.Fprintf(out, "%s %s: not found\n", args[0], args[1])
				if suggestions := cat.Models(args[0], args[1]); len(suggestions) > 0 {
					fmt.Fprintf(out, "Did you mean: %s\n", strings.Join(suggestions, ", "))
				}
				return nil
			}

			in := form.Input()
			fmt.Fprintf(out, "%s %s\n", args[0], args[1])
			fmt.Fprintf(out, "  Manufacturing year: %d\n", form.ManufacturingYear())
			fmt.Fprintf(out, "  Device age:         %s\n", analyzer.FormatAge(in.DeviceAgeYears))
			fmt.Fprintf(out, "  Warranty status:    %s\n", in.WarrantyStatus)
			fmt.Fprintf(out, "  Source:             %s (confidence: %s)\n", form.Source(), form.Confidence())
			return nil
		},
	}

	return cmd
}

func printSuggestions(out io.Writer, cat *catalog.Catalog, brand string) error {
	if names := cat.Models(brand, ""); len(names) > 0 {
		fmt.Fprintf(out, "Models of %s:\n", brand)
		for _, name := range names {
			year, _ := cat.Lookup(brand, name)
			fmt.Fprintf(out, "  %s (%d)\n", name, year)
		}
		return nil
	}

	brands := cat.Brands(brand)
	if len(brands) == 0 {
		fmt.Fprintf(out, "No brands matching %q\n", brand)
		return nil
	}
	fmt.Fprintf(out, "Brands matching %q:\n", brand)
	for _, b := range brands {
		fmt.Fprintf(out, "  %s\n", b)
	}
	return nil
}

// serveCmd runs the HTTP API.
func serveCmd(g *globalFlags) *cobra.Command {
	var (
		port  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(g)
			if err != nil {
				return err
			}
			if port != "" {
				rt.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch || rt.cfg.Catalog.Watch {
				watcher := catalog.NewWatcher(rt.store, logger.Logger)
				go func() {
					if err := watcher.Run(ctx); err != nil {
						logger.Warn("Catalog watcher stopped", zap.Error(err))
					}
				}()
			}

			srv, err := server.New(rt.cfg, rt.store, rt.analyzer)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default from SERVER_PORT)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the device database when the file changes")

	return cmd
}

// printAssessment writes a as JSON or as one of the export layouts.
func printAssessment(w io.Writer, a models.Assessment, format string) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	return output.Render(w, output.NewSnapshot(a), f)
}

// parseInput maps the short flag spellings (or the full labels) to field values.
func parseInput(fault, spec, physical, warranty string) (models.AssessmentInput, error) {
	var in models.AssessmentInput

	switch normalize(fault) {
	case "":
	case "passes", "pass", normalize(string(models.FaultPasses)):
		in.FaultStatus = models.FaultPasses
	case "fails", "fail", normalize(string(models.FaultFails)):
		in.FaultStatus = models.FaultFails
	default:
		return in, fmt.Errorf("invalid --fault %q (passes | fails)", fault)
	}

	switch normalize(spec) {
	case "":
	case "exceeds", normalize(string(models.SpecExceedsSOE)):
		in.Specifications = models.SpecExceedsSOE
	case "meets", normalize(string(models.SpecMeetsSOE)):
		in.Specifications = models.SpecMeetsSOE
	case "below", normalize(string(models.SpecBelowSOE)):
		in.Specifications = models.SpecBelowSOE
	default:
		return in, fmt.Errorf("invalid --spec %q (exceeds | meets | below)", spec)
	}

	switch normalize(physical) {
	case "":
	case "reasonable", normalize(string(models.PhysicalReasonable)):
		in.PhysicalCondition = models.PhysicalReasonable
	case "not-reasonable", "unreasonable", normalize(string(models.PhysicalNotReasonable)):
		in.PhysicalCondition = models.PhysicalNotReasonable
	default:
		return in, fmt.Errorf("invalid --physical %q (reasonable | not-reasonable)", physical)
	}

	switch normalize(warranty) {
	case "":
	case "under", normalize(string(models.WarrantyUnder)):
		in.WarrantyStatus = models.WarrantyUnder
	case "out", normalize(string(models.WarrantyOut)):
		in.WarrantyStatus = models.WarrantyOut
	default:
		return in, fmt.Errorf("invalid --warranty %q (under | out)", warranty)
	}

	return in, nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// loadRequests reads assessment requests from a JSONL file or stdin.
// Malformed lines are logged and skipped.
func loadRequests(path string, stdin io.Reader) ([]analyzer.Request, error) {
	r := stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	var requests []analyzer.Request
	err := scanLines(r, func(n int, line []byte) {
		var req analyzer.Request
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("Skipping malformed request", zap.Int("line", n), zap.Error(err))
			return
		}
		requests = append(requests, req)
	})
	return requests, err
}

// loadAssessmentsFromFile loads assessments from a JSONL file.
func loadAssessmentsFromFile(path string) ([]models.Assessment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var assessments []models.Assessment
	err = scanLines(file, func(n int, line []byte) {
		var a models.Assessment
		if err := json.Unmarshal(line, &a); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse line %d: %v\n", n, err)
			return
		}
		assessments = append(assessments, a)
	})
	return assessments, err
}

// scanLines calls fn for every non-empty line of r.
func scanLines(r io.Reader, fn func(n int, line []byte)) error {
	scanner := bufio.NewScanner(r)

	// Increase buffer size for large lines.
	const maxCapacity = 1024 * 1024 // 1MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(n, []byte(line))
	}

	return scanner.Err()
}
