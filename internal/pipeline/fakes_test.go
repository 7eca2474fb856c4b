package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/andresmejia3/moodcam/internal/chart"
	"github.com/andresmejia3/moodcam/internal/emotion"
	"github.com/andresmejia3/moodcam/internal/types"
)

// fakeFrame records the boxes drawn on it.
type fakeFrame struct {
	id     int
	boxes  []types.Region
	closed *int
}

func (f *fakeFrame) Clone() Frame {
	c := &fakeFrame{id: f.id, closed: f.closed}
	c.boxes = append(c.boxes, f.boxes...)
	return c
}

func (f *fakeFrame) Encode() ([]byte, error) { return []byte{byte(f.id)}, nil }

func (f *fakeFrame) Close() error {
	if f.closed != nil {
		*f.closed++
	}
	return nil
}

type fakeSource struct {
	n      int
	next   int
	err    error
	closed bool
	frees  int
}

func (s *fakeSource) Read() (Frame, error) {
	if s.next >= s.n {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	s.next++
	return &fakeFrame{id: s.next, closed: &s.frees}, nil
}

func (s *fakeSource) FPS() float64 { return 30 }

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// scriptedClassifier returns results[i] on the i-th call and no faces once exhausted.
type scriptedClassifier struct {
	results [][]types.DetectedFace
	calls   int
	failAt  int
}

func (c *scriptedClassifier) Detect(f Frame) ([]types.DetectedFace, error) {
	c.calls++
	if c.failAt > 0 && c.calls == c.failAt {
		return nil, errors.New("detector exploded")
	}
	if c.calls-1 < len(c.results) {
		return c.results[c.calls-1], nil
	}
	return nil, nil
}

type boxAnnotator struct{}

func (boxAnnotator) Annotate(f Frame, st DetectionState) {
	ff := f.(*fakeFrame)
	ff.boxes = append(ff.boxes, st.Region)
}

type fakeVideo struct {
	frames [][]types.Region
	closed bool
	err    error
}

func (v *fakeVideo) Write(f Frame) error {
	if v.err != nil {
		return v.err
	}
	v.frames = append(v.frames, f.(*fakeFrame).boxes)
	return nil
}

func (v *fakeVideo) Close() error {
	v.closed = true
	return nil
}

type fakeChart struct {
	calls  int
	skipAt int
}

func (c *fakeChart) Render(conf emotion.Confidences) chart.Capture {
	c.calls++
	if c.skipAt > 0 && c.calls == c.skipAt {
		return chart.Capture{SkipReason: "raster size mismatch"}
	}
	return chart.Capture{Image: image.NewRGBA(image.Rect(0, 0, 640, 480))}
}

type fakeAnimation struct {
	frames int
	closed bool
}

func (a *fakeAnimation) Append(img image.Image) error {
	a.frames++
	return nil
}

func (a *fakeAnimation) Close() error {
	a.closed = true
	return nil
}

type shownFrame struct {
	boxes []types.Region
	panel color.RGBA
}

type fakeDisplay struct {
	shown  []shownFrame
	quitAt int
	closed bool
}

func (d *fakeDisplay) Show(view Frame, panel color.RGBA) bool {
	d.shown = append(d.shown, shownFrame{boxes: view.(*fakeFrame).boxes, panel: panel})
	return d.quitAt > 0 && len(d.shown) == d.quitAt
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

type fakeRecorder struct {
	samples []types.Sample
	closed  bool
	sum     Summary
	err     error
}

func (r *fakeRecorder) Record(ctx context.Context, s types.Sample) error {
	if r.err != nil {
		return r.err
	}
	r.samples = append(r.samples, s)
	return nil
}

func (r *fakeRecorder) Close(ctx context.Context, sum Summary) error {
	r.closed = true
	r.sum = sum
	return nil
}

type failingPublisher struct {
	calls  int
	closed bool
}

func (p *failingPublisher) Publish(s types.Sample) error {
	p.calls++
	return errors.New("broker unreachable")
}

func (p *failingPublisher) Close() error {
	p.closed = true
	return nil
}

type fakeTrend struct {
	calls  int
	series []chart.Series
	err    error
}

func (t *fakeTrend) RenderTrend(series []chart.Series, path string) error {
	t.calls++
	t.series = series
	return t.err
}

func face(w, h int, conf emotion.Confidences) types.DetectedFace {
	return types.DetectedFace{Region: types.Region{X: 1, Y: 2, Width: w, Height: h}, Confidences: conf}
}

// harness bundles a session with all of its fakes.
type harness struct {
	source     *fakeSource
	classifier *scriptedClassifier
	video      *fakeVideo
	chart      *fakeChart
	anim       *fakeAnimation
	display    *fakeDisplay
	trend      *fakeTrend
	recorder   *fakeRecorder
	sinks      *Coordinator
	session    *Session
}

func newHarness(frames, skip int, results [][]types.DetectedFace) *harness {
	h := &harness{
		source:     &fakeSource{n: frames},
		classifier: &scriptedClassifier{results: results},
		video:      &fakeVideo{},
		chart:      &fakeChart{},
		anim:       &fakeAnimation{},
		display:    &fakeDisplay{},
		trend:      &fakeTrend{},
		recorder:   &fakeRecorder{},
	}
	h.sinks = &Coordinator{
		Annotator: boxAnnotator{},
		Video:     h.video,
		Chart:     h.chart,
		Animation: h.anim,
		Recorder:  h.recorder,
	}
	h.session = NewSession(Options{
		ID:         "test",
		Skip:       skip,
		Source:     h.source,
		Classifier: h.classifier,
		Annotator:  boxAnnotator{},
		Display:    h.display,
		Colors:     emotion.DefaultColorMap(),
		Sinks:      h.sinks,
		Trend:      &TrendReporter{Renderer: h.trend, Path: "trend.jpg"},
	})
	return h
}
