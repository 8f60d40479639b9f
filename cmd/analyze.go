package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"boxwatch/capture"
	"boxwatch/input"
	"boxwatch/metrics"
	"boxwatch/tracking"
	"boxwatch/types"
)

// settings gathers the analyze options after flags, file and env are merged
type settings struct {
	Mask        string
	Labels      string
	Calibration string
	Duration    *int
	MinLength   *float64
	Scale       float64
	MetricsFile string
	Processor   types.ProcessorConfig
}

func loadSettings() settings {
	s := settings{
		Mask:        viper.GetString("mask"),
		Labels:      viper.GetString("labels"),
		Calibration: viper.GetString("calibration"),
		Scale:       viper.GetFloat64("scale"),
		MetricsFile: viper.GetString("metrics-file"),
		Processor: types.ProcessorConfig{
			Workers:         viper.GetInt("workers"),
			MaxWorkers:      viper.GetInt("max-workers"),
			SmoothRadius:    viper.GetInt("smooth-radius"),
			BinaryThreshold: viper.GetInt("threshold"),
			SnapshotDir:     viper.GetString("snapshot-dir"),
		},
	}
	// Calibration overrides have no default so an explicit zero is kept
	if viper.IsSet("duration") {
		d := viper.GetInt("duration")
		s.Duration = &d
	}
	if viper.IsSet("min-length") {
		m := viper.GetFloat64("min-length")
		s.MinLength = &m
	}
	return s
}

func (s settings) validate() error {
	for name, v := range map[string]string{"mask": s.Mask, "labels": s.Labels, "calibration": s.Calibration} {
		if v == "" {
			return fmt.Errorf("%w: --%s is required", types.ErrInvalidConfig, name)
		}
	}
	return nil
}

func analyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute box visibility and sessions from a mask video",
		Long: `Analyze a foreground/background mask video against a labeled-region image.
For every box the command reports the ordered hidden/visible sessions with their
duration and the distance traveled by the subject.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := loadSettings()
			if err := s.validate(); err != nil {
				return err
			}
			return runAnalyze(cmd, s)
		},
	}

	cmd.Flags().String("mask", "", "Path to the mask video")
	cmd.Flags().String("labels", "", "Path to the labeled-region image")
	cmd.Flags().String("calibration", "", "Path to the calibration YAML file")
	cmd.Flags().Int("duration", 0, "Track duration in frames, overrides the calibration file when given")
	cmd.Flags().Float64("min-length", 0, "Minimum track length in pixels, overrides the calibration file when given")
	cmd.Flags().Float64("scale", 1.0, "Physical units per pixel used when printing distances")
	cmd.Flags().Int("workers", 0, "Classification workers, 0 picks from the CPU count")
	cmd.Flags().Int("max-workers", 4, "Upper bound for the automatic worker count")
	cmd.Flags().Int("smooth-radius", 2, "Half width of the centroid smoothing window")
	cmd.Flags().Int("threshold", 127, "Intensity above which a mask pixel is foreground")
	cmd.Flags().String("snapshot-dir", "", "Directory for diagnostic .npy snapshots")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")

	return cmd
}

func runAnalyze(cmd *cobra.Command, s settings) error {
	labels, err := capture.LoadLabels(s.Labels)
	if err != nil {
		return err
	}
	cal, err := input.LoadCalibration(s.Calibration)
	if err != nil {
		return err
	}
	cal = input.Overrides{Duration: s.Duration, MinLength: s.MinLength}.Apply(cal)

	src, err := capture.OpenSource(s.Mask)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	p, err := tracking.NewProcessor(src, labels, cal, s.Processor, tracking.WithMetrics(m))
	if err != nil {
		return err
	}
	res, runErr := p.Run(cmd.Context())

	if s.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(s.MetricsFile, registry); err != nil {
			tracking.Logf("could not write metrics file: %v", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	return printSummary(cmd.OutOrStdout(), res, s.Scale)
}

// printSummary writes one block per box with its sessions
func printSummary(w io.Writer, res *tracking.Result, scale float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, box := range res.Boxes {
		summary := res.Sessions[box.Rank]
		fmt.Fprintf(tw, "box %d: %d transitions, %d sessions\n", box.Label, summary.Count, len(summary.Sessions))
		fmt.Fprintln(tw, "\tstatus\tstart\tend\tframes\tseconds\tdistance")
		for _, s := range summary.Sessions {
			fmt.Fprintf(tw, "\t%s\t%d\t%d\t%d\t%.2f\t%.2f\n",
				s.Status, s.Start, s.End, s.Duration, s.Seconds(res.Meta.FPS), s.ScaledDistance(scale))
		}
	}
	return tw.Flush()
}
