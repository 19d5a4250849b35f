package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/locoplan/internal/config"
	"github.com/san-kum/locoplan/internal/dynamics"
	"github.com/san-kum/locoplan/internal/formulation"
	"github.com/san-kum/locoplan/internal/solver"
	"github.com/san-kum/locoplan/internal/spline"
	"github.com/san-kum/locoplan/internal/store"
	"github.com/san-kum/locoplan/internal/terrain"
)

var (
	configFile string
	preset     string
	robotName  string
	duration   float64
	goalX      float64
	goalY      float64
	goalZ      float64
	optimizeT  bool
	outputFile string
	verbose    bool
)

var (
	header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "locoplan",
		Short: "legged-robot locomotion planning via trajectory optimization",
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "build and solve one locomotion problem",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVarP(&configFile, "config", "c", "", "scenario YAML file")
	solveCmd.Flags().StringVarP(&preset, "preset", "p", "", "named preset (see 'models')")
	solveCmd.Flags().StringVarP(&robotName, "robot", "r", config.DefaultRobot, "robot variant")
	solveCmd.Flags().Float64VarP(&duration, "duration", "T", config.DefaultDuration, "motion horizon in seconds")
	solveCmd.Flags().Float64Var(&goalX, "goal-x", 0.5, "goal base x")
	solveCmd.Flags().Float64Var(&goalY, "goal-y", 0, "goal base y")
	solveCmd.Flags().Float64Var(&goalZ, "goal-z", 0.58, "goal base z")
	solveCmd.Flags().BoolVar(&optimizeT, "optimize-durations", false, "optimize phase durations")
	solveCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write sampled trajectory JSON here, '-' for stdout")
	solveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list robot variants and presets",
		Run:   runModels,
	}

	rootCmd.AddCommand(solveCmd, modelsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		for _, byName := range config.Presets {
			if cfg, ok := byName[preset]; ok {
				return cfg, nil
			}
		}
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}
	cfg := config.DefaultConfig()
	cfg.Robot = robotName
	cfg.Duration = duration
	cfg.GoalPos = [3]float64{goalX, goalY, goalZ}
	cfg.OptimizeDurations = optimizeT
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	logger := golog.NewLogger("locoplan")
	if verbose {
		logger = golog.NewDevelopmentLogger("locoplan")
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	robot, err := dynamics.ByName(cfg.Robot)
	if err != nil {
		return err
	}
	ground := terrain.NewFlatGround()

	params := toParams(cfg, robot)
	initial := formulation.StandingState(
		r3.Vector{Z: cfg.StartHeight},
		nominalStances(robot),
	)
	final := formulation.BaseState{
		Lin: formulation.State3{Pos: cfg.GoalPos},
		Ang: formulation.State3{Pos: [3]float64{0, 0, cfg.GoalYaw}},
	}

	factory, err := formulation.NewFactory(robot, ground, params, initial, final, logger)
	if err != nil {
		return err
	}
	prob, err := factory.BuildProblem()
	if err != nil {
		return err
	}

	opts := solver.DefaultOptions()
	if cfg.Solver.MaxEval > 0 {
		opts.MaxEval = cfg.Solver.MaxEval
		opts.FtolRel = cfg.Solver.FtolRel
		opts.XtolRel = cfg.Solver.XtolRel
		opts.ConstraintTol = cfg.Solver.ConstraintTol
	}

	fmt.Println(header.Render(fmt.Sprintf("solving %s, %.1fs horizon", cfg.Robot, cfg.Duration)))
	start := time.Now()
	result, err := solver.NewSolver(logger, opts).Solve(prob)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printSummary(cfg, prob.NumVariables(), prob.NumConstraints(), result, elapsed)
	plotTrajectory(factory.Holder())

	if outputFile != "" {
		tr, err := store.Sample(cfg.Robot, factory.Holder(), 0.02)
		if err != nil {
			return err
		}
		if outputFile == "-" {
			return store.ExportJSONStdout(tr)
		}
		if err := store.ExportJSON(outputFile, tr); err != nil {
			return err
		}
		fmt.Println(dim.Render("trajectory written to " + outputFile))
	}
	return nil
}

func toParams(cfg *config.Config, robot *dynamics.SingleRigidBody) formulation.MotionParams {
	params := formulation.DefaultParams(robot.EECount(), cfg.Duration)
	if len(cfg.PhaseDurations) > 0 {
		params.PhaseDurations = cfg.PhaseDurations
		params.FirstPhaseContact = cfg.FirstPhaseContact
	}
	if cfg.DtDynamic > 0 {
		params.DtDynamic = cfg.DtDynamic
	}
	if cfg.DtConstraint > 0 {
		params.DtConstraint = cfg.DtConstraint
	}
	if cfg.ForceLimit > 0 {
		params.ForceLimit = cfg.ForceLimit
	}
	if cfg.MinPhaseDuration > 0 {
		params.MinPhaseDuration = cfg.MinPhaseDuration
	}
	if len(cfg.Constraints) > 0 {
		params.Constraints = cfg.Constraints
	}
	for _, c := range cfg.Costs {
		params.Costs = append(params.Costs, formulation.CostWeight{Name: c.Name, Weight: c.Weight})
	}
	params.OptimizeDurations = cfg.OptimizeDurations
	return params
}

func nominalStances(robot *dynamics.SingleRigidBody) []r3.Vector {
	out := make([]r3.Vector, robot.EECount())
	for ee := range out {
		out[ee] = robot.NominalStance(ee)
	}
	return out
}

func printSummary(cfg *config.Config, nVars, nCons int, result *solver.Result, elapsed time.Duration) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROBOT\tVARS\tCONSTRAINTS\tCOST\tEVALS\tTIME")
	fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%d\t%s\n",
		cfg.Robot, nVars, nCons, result.Cost, result.Evaluations, elapsed.Round(time.Millisecond))
	w.Flush()
	fmt.Println()
}

func plotTrajectory(holder *spline.Holder) {
	const samples = 80
	total := holder.Total()
	height := make([]float64, samples)
	forward := make([]float64, samples)
	for i := 0; i < samples; i++ {
		t := total * float64(i) / float64(samples-1)
		p := holder.BaseLinear.Point(t).Pos
		forward[i] = p[0]
		height[i] = p[2]
	}

	graph := asciigraph.Plot(height,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("base height z(t)"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(forward,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("base forward x(t)"),
	)
	fmt.Println(graph)
	fmt.Println()
}

func runModels(cmd *cobra.Command, args []string) {
	fmt.Println(header.Render("robots"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASS\tEND-EFFECTORS\tPRESETS")
	for _, name := range dynamics.Names() {
		robot, err := dynamics.ByName(name)
		if err != nil {
			continue
		}
		var presets []string
		for p := range config.Presets[name] {
			presets = append(presets, p)
		}
		sort.Strings(presets)
		fmt.Fprintf(w, "%s\t%.1fkg\t%d\t%v\n", name, robot.Mass(), robot.EECount(), presets)
	}
	w.Flush()
}
