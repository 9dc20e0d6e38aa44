package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/quintel/comptune/internal/blocks"
	"github.com/quintel/comptune/internal/bode"
	"github.com/quintel/comptune/internal/compensator"
	"github.com/quintel/comptune/internal/config"
	"github.com/quintel/comptune/internal/measured"
	"github.com/quintel/comptune/internal/storage"
	"github.com/quintel/comptune/internal/tuner"
	"github.com/quintel/comptune/internal/tui"
)

var (
	dataDir      string
	settingsFile string
	presetFile   string
	refFile      string
	freqMin      float64
	freqMax      float64
	freqPoints   int
	linearX      bool
	reportList   string
	showPlot     bool
	jsonOut      string
	// measured flags
	bins         int
	phaseUnwrap  bool
	phaseSmooth  bool
	smoothWindow int
	inverse      bool
	// snapshot flags
	note string
	// gen flags
	genOut    string
	genPoints int
	genNoise  float64
	genSeed   int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "comptune",
		Short: "compensator frequency-response tuning",
		Run: func(cmd *cobra.Command, args []string) {
			// Interactive tuner when no subcommand is given.
			if err := runTUI(cmd, args); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".comptune", "data directory")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (yaml)")

	blocksCmd := &cobra.Command{
		Use:   "blocks",
		Short: "list block types",
		RunE:  listBlocks,
	}

	bodeCmd := &cobra.Command{
		Use:   "bode",
		Short: "evaluate a compensator preset",
		RunE:  runBode,
	}
	bodeCmd.Flags().StringVar(&presetFile, "preset", "", "preset file (json); default model when empty")
	bodeCmd.Flags().StringVar(&refFile, "ref", "", "reference preset for diff columns")
	bodeCmd.Flags().Float64Var(&freqMin, "fmin", config.DefaultFreqMin, "grid lower bound (Hz)")
	bodeCmd.Flags().Float64Var(&freqMax, "fmax", config.DefaultFreqMax, "grid upper bound (Hz)")
	bodeCmd.Flags().IntVar(&freqPoints, "points", config.DefaultFreqPoints, "grid points")
	bodeCmd.Flags().BoolVar(&linearX, "linear", false, "linear frequency spacing")
	bodeCmd.Flags().StringVar(&reportList, "report", "", "report frequencies (Hz, comma separated)")
	bodeCmd.Flags().BoolVar(&showPlot, "plot", false, "terminal bode plot")
	bodeCmd.Flags().StringVar(&jsonOut, "json", "", "export curves to JSON file ('-' for stdout)")

	measuredCmd := &cobra.Command{
		Use:   "measured [csv]",
		Short: "load and decimate a measured transfer function",
		Args:  cobra.ExactArgs(1),
		RunE:  runMeasured,
	}
	measuredCmd.Flags().IntVar(&bins, "bins", config.DefaultMeasBins, "log-spaced decimation bins")
	measuredCmd.Flags().BoolVar(&phaseUnwrap, "unwrap", true, "unwrap measured phase")
	measuredCmd.Flags().BoolVar(&phaseSmooth, "smooth", false, "smooth measured phase")
	measuredCmd.Flags().IntVar(&smoothWindow, "window", config.DefaultSmoothWindow, "smoothing window (odd)")
	measuredCmd.Flags().BoolVar(&inverse, "inverse", false, "show the inverse transfer 1/Hf")
	measuredCmd.Flags().BoolVar(&showPlot, "plot", false, "terminal plot")
	measuredCmd.Flags().StringVar(&jsonOut, "json", "", "export series to JSON file ('-' for stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "append a tuning-log row for a preset",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().StringVar(&presetFile, "preset", "", "preset file (json); default model when empty")
	snapshotCmd.Flags().StringVar(&note, "note", "", "free-form note")

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "synthesize a transfer CSV from a preset",
		RunE:  runGen,
	}
	genCmd.Flags().StringVar(&presetFile, "preset", "", "preset file (json); default model when empty")
	genCmd.Flags().StringVar(&genOut, "out", "transfer_measured.csv", "output CSV path")
	genCmd.Flags().IntVar(&genPoints, "points", 2000, "samples")
	genCmd.Flags().Float64Var(&genNoise, "noise", 0, "relative noise amplitude")
	genCmd.Flags().Int64Var(&genSeed, "seed", 1, "noise seed")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal tuner",
		RunE:  runTUI,
	}

	rootCmd.AddCommand(blocksCmd, bodeCmd, measuredCmd, snapshotCmd, genCmd, tuiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings() (*config.Settings, error) {
	if settingsFile == "" {
		return config.Default(), nil
	}
	s, err := config.Load(settingsFile)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if ok, msg := s.Validate(); !ok {
		return nil, fmt.Errorf("invalid settings: %s", msg)
	}
	return s, nil
}

func loadModel(reg *blocks.Registry, path string) (*compensator.Model, error) {
	if path == "" {
		return compensator.DefaultModel(reg), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := compensator.DecodePreset(data)
	if err != nil {
		return nil, err
	}
	return compensator.FromPreset(reg, p)
}

func listBlocks(cmd *cobra.Command, args []string) error {
	reg := blocks.Builtin()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tFORMULA\tPARAMS")
	for _, name := range reg.Names() {
		d, _ := reg.Lookup(name)
		params := ""
		for i, pn := range d.ParamOrder {
			meta := d.Params[pn]
			if i > 0 {
				params += ", "
			}
			params += fmt.Sprintf("%s=%g [%g..%g]", pn, meta.Default, meta.Min, meta.Max)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.TypeName, d.DisplayName, d.Formula, params)
	}
	return w.Flush()
}

func runBode(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fmin") {
		settings.FreqMin = freqMin
	}
	if cmd.Flags().Changed("fmax") {
		settings.FreqMax = freqMax
	}
	if cmd.Flags().Changed("points") {
		settings.FreqPoints = freqPoints
	}
	if cmd.Flags().Changed("linear") {
		settings.LogX = !linearX
	}
	if reportList != "" {
		settings.FreqReport = config.ParseFreqList(reportList, settings.FreqReport)
	}
	if ok, msg := settings.Validate(); !ok {
		return fmt.Errorf("invalid settings: %s", msg)
	}

	reg := blocks.Builtin()
	model, err := loadModel(reg, presetFile)
	if err != nil {
		return err
	}

	grid, err := settings.Grid()
	if err != nil {
		return err
	}
	mag, phase := bode.Curves(model.Response(grid.Omega))

	if refFile != "" {
		ref, err := loadModel(reg, refFile)
		if err != nil {
			return err
		}
		refMag, refPhase := bode.Curves(ref.Response(grid.Omega))
		rows := bode.Compare(grid, refMag, refPhase, mag, phase, settings.FreqReport)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "Hz\tMag ref (dB)\tMag (dB)\tMag diff\tPhase ref\tPhase\tPhase diff")
		for _, r := range rows {
			fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
				r.Freq, r.MagRef, r.MagAdj, r.MagDiff, r.PhaseRef, r.PhaseAdj, r.PhaseDiff)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	} else {
		rows := bode.Report(grid, mag, phase, settings.FreqReport)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "Hz\tMag (dB)\tPhase (deg)")
		for _, r := range rows {
			fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\n", r.Freq, r.MagDB, r.PhaseDeg)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if showPlot {
		fmt.Println()
		fmt.Println(asciigraph.Plot(mag,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("magnitude (dB), %g..%g Hz", settings.FreqMin, settings.FreqMax)),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(phase,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("phase (deg)"),
		))
	}

	if jsonOut != "" {
		export := storage.CurveExport{
			Preset:  presetFile,
			FreqMin: settings.FreqMin,
			FreqMax: settings.FreqMax,
			Points:  settings.FreqPoints,
			Freq:    grid.Freq, MagDB: mag, PhaseDeg: phase,
		}
		if jsonOut == "-" {
			return storage.ExportCurvesStdout(export)
		}
		return storage.ExportCurvesJSON(jsonOut, export)
	}
	return nil
}

func runMeasured(cmd *cobra.Command, args []string) error {
	dataset, err := measured.Load(args[0])
	if err != nil {
		return err
	}

	opts := measured.PhaseOptions{Unwrap: phaseUnwrap, Smooth: phaseSmooth, Window: smoothWindow}
	fwd, inv := dataset.Display(bins, measured.DefaultPointBudget, opts)
	series := fwd
	if inverse {
		series = inv
	}

	fmt.Printf("samples: %d raw, %d displayed\n\n", dataset.Len(), len(series.Freq))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Hz\tMag (dB)\tPhase (deg)")
	step := len(series.Freq) / 20
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(series.Freq); i += step {
		fmt.Fprintf(w, "%.4g\t%.3f\t%.3f\n", series.Freq[i], series.MagDB[i], series.PhaseDeg[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showPlot {
		direction := "Hf"
		if inverse {
			direction = "1/Hf"
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series.MagDB,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("measured magnitude (dB), %s", direction)),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(series.PhaseDeg,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("measured phase (deg)"),
		))
	}

	if jsonOut != "" {
		export := storage.CurveExport{
			Freq: series.Freq, MagDB: series.MagDB, PhaseDeg: series.PhaseDeg,
		}
		if jsonOut == "-" {
			return storage.ExportCurvesStdout(export)
		}
		return storage.ExportCurvesJSON(jsonOut, export)
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	reg := blocks.Builtin()
	model, err := loadModel(reg, presetFile)
	if err != nil {
		return err
	}

	grid, err := settings.Grid()
	if err != nil {
		return err
	}
	_, phase := bode.Curves(model.Response(grid.Omega))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	entry := storage.SnapshotEntry{
		Timestamp: time.Now(),
		Phase1Hz:  bode.Interp(1.0, grid.Freq, phase),
		Phase3Hz:  bode.Interp(3.0, grid.Freq, phase),
		Blocks:    model.Summary(),
		Note:      note,
	}
	if err := st.AppendSnapshot(entry); err != nil {
		return err
	}
	fmt.Printf("snapshot appended to %s\n", storage.SnapshotLogName)
	return nil
}

func runGen(cmd *cobra.Command, args []string) error {
	reg := blocks.Builtin()
	model, err := loadModel(reg, presetFile)
	if err != nil {
		return err
	}

	grid, err := bode.NewGrid(config.DefaultFreqMin, config.DefaultFreqMax, genPoints, true)
	if err != nil {
		return err
	}
	h := model.Response(grid.Omega)

	rng := rand.New(rand.NewSource(genSeed))
	f, err := os.Create(genOut)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"freq_hz", "h_real", "h_imag"}); err != nil {
		return err
	}
	for i, freq := range grid.Freq {
		re := real(h[i])
		im := imag(h[i])
		if genNoise > 0 {
			scale := genNoise * math.Hypot(re, im)
			re += rng.NormFloat64() * scale
			im += rng.NormFloat64() * scale
		}
		row := []string{
			strconv.FormatFloat(freq, 'g', -1, 64),
			strconv.FormatFloat(re, 'g', -1, 64),
			strconv.FormatFloat(im, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", len(grid.Freq), genOut)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	session, err := tuner.NewSession(blocks.Builtin(), settings)
	if err != nil {
		return err
	}
	return tui.Run(session, storage.New(dataDir))
}
