package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/andresmejia3/moodcam/internal/chart"
	"github.com/andresmejia3/moodcam/internal/config"
	"github.com/andresmejia3/moodcam/internal/emitter"
	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/store"
	"github.com/andresmejia3/moodcam/internal/utils"
	"github.com/andresmejia3/moodcam/internal/video"
	"github.com/andresmejia3/moodcam/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunOptions holds the flag values of the run command. Only flags the user
// actually set override the configuration file.
type RunOptions struct {
	Skip             int
	Device           string
	InputPath        string
	VideoOut         string
	ChartOut         string
	TrendOut         string
	Headless         bool
	WorkerTimeout    string
	MTCNN            bool
	MQTTBroker       string
	RecordEmptyTicks bool
}

var runOpts RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture a camera or video file and annotate faces with their dominant emotion",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := *Cfg
		if err := applyRunFlags(cmd.Flags(), &cfg, runOpts); err != nil {
			return err
		}
		if err := validateRunFlags(&cfg); err != nil {
			return err
		}
		return runSession(cmd.Context(), &cfg)
	},
}

func init() {
	def := config.Default()
	runCmd.Flags().IntVarP(&runOpts.Skip, "skip", "s", def.Skip, "Frames skipped between analyses (analyze every skip+1 frames)")
	runCmd.Flags().StringVarP(&runOpts.Device, "device", "d", def.Device, "Camera index or stream URL")
	runCmd.Flags().StringVarP(&runOpts.InputPath, "input", "i", "", "Path to a video file (replaces the camera)")
	runCmd.Flags().StringVar(&runOpts.VideoOut, "video-out", def.Outputs.Video, "Annotated video output")
	runCmd.Flags().StringVar(&runOpts.ChartOut, "chart-out", def.Outputs.Chart, "Animated confidence chart output")
	runCmd.Flags().StringVar(&runOpts.TrendOut, "trend-out", def.Outputs.Trend, "Cumulative trend chart output")
	runCmd.Flags().BoolVar(&runOpts.Headless, "headless", false, "Run without preview windows (stop with Ctrl+C)")
	runCmd.Flags().StringVar(&runOpts.WorkerTimeout, "worker-timeout", def.Worker.Timeout.String(), "Maximum time to wait for the emotion worker per frame (0 disables)")
	runCmd.Flags().BoolVar(&runOpts.MTCNN, "mtcnn", def.Worker.MTCNN, "Use the MTCNN face detector in the worker")
	runCmd.Flags().StringVar(&runOpts.MQTTBroker, "mqtt-broker", "", "Publish samples to this MQTT broker (host:port)")
	runCmd.Flags().BoolVar(&runOpts.RecordEmptyTicks, "record-empty-ticks", false, "Write the raw frame to the video on analyzed frames without a face")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags copies explicitly set flags over the configuration.
func applyRunFlags(flags *pflag.FlagSet, cfg *config.Config, opts RunOptions) error {
	if flags.Changed("skip") {
		cfg.Skip = opts.Skip
	}
	if flags.Changed("device") {
		cfg.Device = opts.Device
	}
	if flags.Changed("input") {
		cfg.Input = opts.InputPath
	}
	if flags.Changed("video-out") {
		cfg.Outputs.Video = opts.VideoOut
	}
	if flags.Changed("chart-out") {
		cfg.Outputs.Chart = opts.ChartOut
	}
	if flags.Changed("trend-out") {
		cfg.Outputs.Trend = opts.TrendOut
	}
	if flags.Changed("headless") {
		cfg.Display.Headless = opts.Headless
	}
	if flags.Changed("worker-timeout") {
		d, err := time.ParseDuration(opts.WorkerTimeout)
		if err != nil {
			return fmt.Errorf("invalid worker-timeout format (use '10s', '500ms'): %w", err)
		}
		cfg.Worker.Timeout = d
	}
	if flags.Changed("mtcnn") {
		cfg.Worker.MTCNN = opts.MTCNN
	}
	if flags.Changed("mqtt-broker") {
		cfg.MQTT.Broker = opts.MQTTBroker
	}
	if flags.Changed("record-empty-ticks") {
		cfg.RecordEmptyTicks = opts.RecordEmptyTicks
	}
	return nil
}

// validateRunFlags ensures all settings are valid before the camera and the worker are started.
func validateRunFlags(cfg *config.Config) error {
	if cfg.Input != "" {
		info, err := os.Stat(cfg.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("input file does not exist: %w", err)
			}
			return fmt.Errorf("unable to access input file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("input path %s is a directory, expected a video file", cfg.Input)
		}
	}
	if _, err := os.Stat(cfg.Worker.Script); err != nil {
		return fmt.Errorf("emotion worker script not found: %w", err)
	}
	return config.Validate(cfg)
}

// runSession opens every collaborator, runs the capture loop and reports the outcome.
func runSession(ctx context.Context, cfg *config.Config) error {
	colors, err := emotion.NewColorMap(cfg.Colors)
	if err != nil {
		return err
	}

	source := cfg.Device
	if cfg.Input != "" {
		source = cfg.Input
	}
	size := image.Pt(cfg.Capture.Width, cfg.Capture.Height)

	// Everything opened before the session takes ownership is released here on failure.
	var opened []io.Closer
	abort := func(err error) error {
		for i := len(opened) - 1; i >= 0; i-- {
			opened[i].Close()
		}
		return err
	}

	capture, err := video.Open(source, size, cfg.Capture.FallbackFPS)
	if err != nil {
		return fmt.Errorf("failed to open capture %q: %w", source, err)
	}
	opened = append(opened, capture)

	fps := capture.FPS()
	outFPS := pipeline.OutputFPS(fps, cfg.Skip)
	fmt.Fprintf(os.Stderr, "🎥 Camera FPS: %.2f, processing 1 in %d frames.\n", fps, cfg.Skip+1)
	fmt.Fprintf(os.Stderr, "🎞️  Output video FPS set to: %.2f\n", outFPS)

	fmt.Fprintf(os.Stderr, "⚙️  Spawning emotion worker...\n")
	// The worker outlives ctx so the last tick can finish; Close stops it.
	py, err := worker.NewPythonWorker(context.WithoutCancel(ctx), 0, worker.Config{
		Python:      cfg.Worker.Python,
		Script:      cfg.Worker.Script,
		MTCNN:       cfg.Worker.MTCNN,
		ReadTimeout: cfg.Worker.Timeout,
	})
	if err != nil {
		return abort(fmt.Errorf("worker startup failed: %w", err))
	}
	defer py.Close()

	writer, err := video.NewWriter(cfg.Outputs.Video, cfg.Outputs.Codec, outFPS, size)
	if err != nil {
		return abort(err)
	}
	opened = append(opened, writer)

	anim, err := chart.NewGIFWriter(context.WithoutCancel(ctx), cfg.Outputs.Chart, size, pipeline.FrameDuration(fps, cfg.Skip))
	if err != nil {
		return abort(err)
	}
	opened = append(opened, anim)

	sessionID := uuid.NewString()
	sinks := &pipeline.Coordinator{
		Annotator:        video.NewAnnotator(),
		Video:            writer,
		Chart:            chart.NewBarRenderer(size),
		Animation:        anim,
		RecordEmptyTicks: cfg.RecordEmptyTicks,
	}

	if DB != nil {
		err := DB.CreateSession(ctx, store.Session{
			ID:         sessionID,
			Source:     source,
			Skip:       cfg.Skip,
			CaptureFPS: fps,
			StartedAt:  time.Now(),
		})
		if err != nil {
			return abort(fmt.Errorf("failed to register session: %w", err))
		}
		sinks.Recorder = &store.SessionRecorder{Store: DB, SessionID: sessionID}
	}

	if cfg.MQTT.Broker != "" {
		em := emitter.NewMQTTEmitter(emitter.Config{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			QoS:      cfg.MQTT.QoS,
		}, sessionID)
		if err := em.Connect(ctx); err != nil {
			// Publishing is best effort, the session runs without it
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("mqtt disabled for this session")
		} else {
			sinks.Publisher = em
			fmt.Fprintf(os.Stderr, "📡 Publishing samples to %s\n", em.Topic())
		}
	}

	var display pipeline.Display = video.Headless{}
	if !cfg.Display.Headless {
		display = video.NewWindows(cfg.Display.PanelSize)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("🙂 moodcam capturing"),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)

	session := pipeline.NewSession(pipeline.Options{
		ID:         sessionID,
		Skip:       cfg.Skip,
		Source:     capture,
		Classifier: worker.Classifier{Worker: py},
		Annotator:  video.NewAnnotator(),
		Display:    display,
		Colors:     colors,
		Sinks:      sinks,
		Trend:      &pipeline.TrendReporter{Renderer: chart.NewTrendRenderer(), Path: cfg.Outputs.Trend},
		Progress:   bar,
	})
	fmt.Fprintf(os.Stderr, "📼 Session ID: %s\n", sessionID)

	sum, err := session.Run(ctx)
	bar.Finish()

	fmt.Fprintf(os.Stderr, "\n⏱️  Webcam active time: %s\n", utils.FmtSeconds(sum.Elapsed))
	if sum.Reason == pipeline.StopInterrupted {
		fmt.Fprintln(os.Stderr, "🛑 Interrupted by user")
	}
	if err != nil {
		// DRAIN: Wait for the worker to exit so its stderr can be shown
		py.Close()
		utils.ShowError("Emotion session failed", err, py.Cmd)
		return err
	}

	printSummary(sum, cfg)
	return nil
}

func printSummary(sum pipeline.Summary, cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 SESSION SUMMARY (%s)\n", sum.Reason)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🖼️  Frames captured:        %d\n", sum.Frames)
	fmt.Fprintf(os.Stderr, "🔍 Frames analyzed:        %d\n", sum.Analyzed)
	fmt.Fprintf(os.Stderr, "🙂 Frames with a face:     %d\n", sum.FacesFound)
	if sum.ChartSkipped > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  Chart frames skipped:   %d\n", sum.ChartSkipped)
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")

	fmt.Fprintln(os.Stderr, "✅ Emotion detection finished. Files saved:")
	fmt.Fprintf(os.Stderr, " - %s\n", cfg.Outputs.Video)
	if sum.ChartFrames > 0 {
		fmt.Fprintf(os.Stderr, " - %s\n", cfg.Outputs.Chart)
	}
	if sum.TrendWritten {
		fmt.Fprintf(os.Stderr, " - %s\n", cfg.Outputs.Trend)
	} else {
		fmt.Fprintln(os.Stderr, "ℹ️  No emotion data collected, trend chart not written.")
	}
}
