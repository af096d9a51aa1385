// cmd/tripgen/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"itinerary-workers/internal/bootstrap"
	"itinerary-workers/internal/common/config"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/advisor"
	"itinerary-workers/internal/planner/budget"
	"itinerary-workers/internal/planner/service"
	"itinerary-workers/pkg/registry"
)

// Generator is the slice of the planner the generate commands need.
type Generator interface {
	GeneratePreview(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error)
	GenerateFullPlan(ctx context.Context, planID string, req models.TripRequest) (models.GenerationResult, error)
}

type runtimeOpener func(ctx context.Context, configPath string, skipStores bool) (Generator, func(), error)

func openRuntime(ctx context.Context, configPath string, skipStores bool) (Generator, func(), error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")
	rt, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{SkipStores: skipStores})
	if err != nil {
		return nil, nil, err
	}
	return rt.Service, rt.Close, nil
}

func newRootCmd(out io.Writer, open runtimeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:          "tripgen",
		Short:        "Generate trip plans, budgets and booking advice from the command line",
		SilenceUsage: true,
	}
	root.SetOut(out)

	planner := service.New(service.Dependencies{})
	root.AddCommand(
		newGenerateCmd("preview", "Generate a short trip preview", models.ModePreview, open),
		newGenerateCmd("plan", "Generate the full trip plan", models.ModeFull, open),
		newBudgetCmd(planner),
		newAdviseCmd(planner),
		newRegistryCmd(),
	)
	return root
}

type generateCmd struct {
	mode       models.Mode
	open       runtimeOpener
	req        models.TripRequest
	style      string
	planID     string
	configPath string
	noStore    bool
	asJSON     bool
	outFile    string
}

func newGenerateCmd(use, short string, mode models.Mode, open runtimeOpener) *cobra.Command {
	gc := &generateCmd{mode: mode, open: open}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE:  gc.run,
	}

	f := cmd.Flags()
	f.StringVar(&gc.req.Destination, "destination", "", "Destination, e.g. \"Lisbon, Portugal\"")
	f.StringVar(&gc.req.StartDate, "start", "", "First day of the trip (YYYY-MM-DD)")
	f.StringVar(&gc.req.EndDate, "end", "", "Last day of the trip (YYYY-MM-DD)")
	f.IntVar(&gc.req.Adults, "adults", 1, "Number of adults")
	f.IntVar(&gc.req.Children, "children", 0, "Number of children")
	f.Float64Var(&gc.req.Budget, "budget", 0, "Total budget; 0 derives one")
	f.StringVar(&gc.req.Currency, "currency", "USD", "ISO currency code")
	f.StringVar(&gc.style, "style", "mid", "Travel style: budget, mid or luxury")
	f.StringVar(&gc.req.Preferences, "preferences", "", "Free-text interests")
	f.StringVar(&gc.req.Dietary, "dietary", "", "Dietary needs")
	f.StringVar(&gc.req.Purpose, "purpose", "", "Trip purpose, e.g. honeymoon or ski")
	f.StringVar(&gc.planID, "id", "", "Plan ID; generated when empty")
	f.StringVar(&gc.configPath, "config", "", "Config file; defaults to configs/config.yaml")
	f.BoolVar(&gc.noStore, "no-store", false, "Do not persist the plan record")
	f.BoolVar(&gc.asJSON, "json", false, "Print the full generation result as JSON")
	f.StringVarP(&gc.outFile, "output", "o", "", "Write the document to a file instead of stdout")

	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (gc *generateCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
	defer cancel()

	req := gc.req
	req.Style = models.ParseStyle(gc.style)
	if err := service.ValidateRequest(req); err != nil {
		return err
	}

	gen, closeFn, err := gc.open(ctx, gc.configPath, gc.noStore)
	if err != nil {
		return fmt.Errorf("failed to start planner: %w", err)
	}
	defer closeFn()

	var result models.GenerationResult
	if gc.mode == models.ModePreview {
		result, err = gen.GeneratePreview(ctx, gc.planID, req)
	} else {
		result, err = gen.GenerateFullPlan(ctx, gc.planID, req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if gc.outFile != "" {
		if err := os.WriteFile(gc.outFile, []byte(result.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", gc.outFile, err)
		}
		fmt.Fprintf(out, "Wrote %s plan %s (%s) to %s\n", result.Mode, result.ID, result.Provenance, gc.outFile)
		return nil
	}
	if gc.asJSON {
		return writeJSON(out, result)
	}
	_, err = fmt.Fprintln(out, result.Content)
	return err
}

func newBudgetCmd(planner *service.Service) *cobra.Command {
	var (
		in    budget.Input
		style string
	)
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Split a trip budget across spending categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Style = models.ParseStyle(style)
			return writeJSON(cmd.OutOrStdout(), planner.ComputeBudget(in))
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Destination, "destination", "", "Destination")
	f.IntVar(&in.Days, "days", 1, "Trip length in days")
	f.IntVar(&in.Travelers, "travelers", 1, "Number of travelers")
	f.Float64Var(&in.Total, "total", 0, "Total budget; 0 derives one")
	f.StringVar(&style, "style", "mid", "Travel style: budget, mid or luxury")
	f.StringVar(&in.Currency, "currency", "USD", "ISO currency code")
	f.StringVar(&in.Purpose, "purpose", "", "Trip purpose")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

func newAdviseCmd(planner *service.Service) *cobra.Command {
	var (
		q    advisor.Query
		date string
	)
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Booking advice for a destination and date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.Parse(models.DateLayout, date)
			if err != nil {
				return fmt.Errorf("--date must be %s", models.DateLayout)
			}
			q.Date = d
			return writeJSON(cmd.OutOrStdout(), planner.Advise(q))
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.Destination, "destination", "", "Destination")
	f.StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	f.StringVar(&q.ActivityType, "activity", "", "Activity type, e.g. museum or beach")
	f.StringVar(&q.TimeSlot, "slot", "", "Time slot: morning, afternoon or evening")
	f.IntVar(&q.GroupSize, "group", 1, "Group size")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the worker activity registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range registry.Default().Activities {
				timeout, _ := a.JobTimeout()
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-24s %-8s %s\n", a.ID, a.TaskType, timeout, a.ImplementationStatus)
			}
			return nil
		},
	})

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("registry %s is invalid: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry %s is valid (%d activities)\n", path, len(reg.Activities))
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "pkg/registry/activities.json", "Path to registry file")
	cmd.AddCommand(validate)

	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
