package renderer

import (
	"testing"

	"github.com/achilleasa/helios/scene"
	"github.com/achilleasa/helios/tracer"
	"github.com/achilleasa/helios/types"
)

func testScene(t *testing.T) (*scene.Scene, *scene.Camera) {
	t.Helper()
	white, err := scene.NewReflectMaterial(types.XYZ(1, 1, 1), 0)
	if err != nil {
		t.Fatal(err)
	}
	red, err := scene.NewReflectMaterial(types.XYZ(1, 0.2, 0.2), 0)
	if err != nil {
		t.Fatal(err)
	}
	sc := &scene.Scene{
		Background: types.XYZ(0.1, 0.1, 0.2),
		Shapes: []scene.Shape{
			scene.NewPlane(types.XYZ(0, -1, 0), types.XYZ(0, 1, 0), white),
			scene.NewSphere(types.XYZ(0, 0, 5), 1, red),
		},
		Lights: []scene.Light{
			scene.NewPointLight(types.XYZ(0, 5, 2), types.XYZ(40, 40, 40)),
		},
	}
	return sc, scene.NewCamera(60)
}

func testOptions() Options {
	return Options{
		FrameW:   16,
		FrameH:   16,
		MaxDepth: 2,
		Workers:  2,
	}
}

func TestNewRendererValidation(t *testing.T) {
	sc, cam := testScene(t)

	if _, err := New(nil, cam, testOptions()); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := New(sc, nil, testOptions()); err != ErrCameraNotDefined {
		t.Fatalf("expected ErrCameraNotDefined; got %v", err)
	}
	if _, err := New(sc, cam, Options{}); err != ErrInvalidViewport {
		t.Fatalf("expected ErrInvalidViewport; got %v", err)
	}
}

func TestUninitializedRenderer(t *testing.T) {
	var r Renderer
	if err := r.Compute(16); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized from Compute; got %v", err)
	}
	if _, err := r.Results(false); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized from Results; got %v", err)
	}
	if err := r.Reset(); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized from Reset; got %v", err)
	}
	if err := r.UpdateCamera(types.Vec3{}, 0, 0); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized from UpdateCamera; got %v", err)
	}
}

func TestComputeAndResults(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	numSamples := 16 * 16
	if err = r.Compute(numSamples); err != nil {
		t.Fatal(err)
	}

	pix, err := r.Results(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 16*16*4 {
		t.Fatalf("expected %d bytes; got %d", 16*16*4, len(pix))
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 255 {
			t.Fatalf("expected an opaque alpha at byte %d; got %d", i, pix[i])
		}
	}

	stats := r.Stats()
	var total uint64
	for _, in := range stats.Instances {
		total += in.Samples
	}
	if total != uint64(numSamples) {
		t.Fatalf("expected %d samples across instances; got %d", numSamples, total)
	}
}

func TestInstanceRectsPartitionViewport(t *testing.T) {
	sc, cam := testScene(t)
	opts := testOptions()
	opts.LeftMode = tracer.NoNEE
	opts.RightMode = tracer.NormalNEE
	opts.Workers = 3
	r, err := New(sc, cam, opts)
	if err != nil {
		t.Fatal(err)
	}

	// Differing panel settings split the frame in half; the rects of all
	// instances tile the viewport without overlap.
	covered := make([][]int, 16)
	for y := range covered {
		covered[y] = make([]int, 16)
	}
	for _, in := range r.Stats().Instances {
		rect := in.Rect
		for y := rect.Y; y < rect.Y+rect.H; y++ {
			for x := rect.X; x < rect.X+rect.W; x++ {
				covered[y][x]++
			}
		}
	}
	for y := range covered {
		for x := range covered[y] {
			if covered[y][x] != 1 {
				t.Fatalf("pixel (%d, %d) covered %d times", x, y, covered[y][x])
			}
		}
	}
}

func TestSinglePanelWhenSettingsMatch(t *testing.T) {
	sc, cam := testScene(t)
	opts := testOptions()
	opts.Workers = 1
	r, err := New(sc, cam, opts)
	if err != nil {
		t.Fatal(err)
	}
	stats := r.Stats()
	if len(stats.Instances) != 1 {
		t.Fatalf("expected a single instance; got %d", len(stats.Instances))
	}
	if rect := stats.Instances[0].Rect; rect != (Rect{0, 0, 16, 16}) {
		t.Fatalf("expected a full-frame rect; got %+v", rect)
	}
}

func TestRendererReset(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err = r.Compute(64); err != nil {
		t.Fatal(err)
	}
	if err = r.Reset(); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if r.target.SampleCount(x, y) != 0 {
				t.Fatalf("pixel (%d, %d): expected 0 samples after reset", x, y)
			}
		}
	}
	stats := r.Stats()
	for _, in := range stats.Instances {
		if in.Samples != 0 {
			t.Fatalf("instance %d: expected 0 samples after reset; got %d", in.Id, in.Samples)
		}
	}
}

func TestUpdateViewport(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err = r.UpdateViewport(8, 8); err != nil {
		t.Fatal(err)
	}
	pix, err := r.Results(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 8*8*4 {
		t.Fatalf("expected %d bytes after resize; got %d", 8*8*4, len(pix))
	}
	if err = r.Compute(8 * 8); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateCamera(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err = r.Compute(64); err != nil {
		t.Fatal(err)
	}
	if err = r.UpdateCamera(types.XYZ(0, 1, -2), 0.1, 0.2); err != nil {
		t.Fatal(err)
	}
	if r.target.SampleCount(0, 0) != 0 {
		t.Fatal("expected accumulation restarted after a camera move")
	}
	if cam.Position != types.XYZ(0, 1, -2) || cam.RotX != 0.1 || cam.RotY != 0.2 {
		t.Fatalf("expected the camera updated; got %+v", cam)
	}
}

func TestUpdateSettings(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Stats().Instances) != 2 {
		t.Fatalf("expected 2 instances for 2 workers; got %d", len(r.Stats().Instances))
	}

	if err = r.UpdateSettings(tracer.NoNEE, tracer.NormalNEE, false, true, false); err != nil {
		t.Fatal(err)
	}
	stats := r.Stats()
	if len(stats.Instances) != 4 {
		t.Fatalf("expected 4 instances for 2 panels x 2 workers; got %d", len(stats.Instances))
	}
	modes := map[string]bool{}
	for _, in := range stats.Instances {
		modes[in.Mode] = true
	}
	if !modes["no-nee"] || !modes["nee"] {
		t.Fatalf("expected both panel modes present; got %v", modes)
	}
}

func TestSetScene(t *testing.T) {
	sc, cam := testScene(t)
	r, err := New(sc, cam, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err = r.SetScene(1); err != nil {
		t.Fatal(err)
	}
	if err = r.Compute(64); err != nil {
		t.Fatal(err)
	}
	if err = r.SetScene(-1); err == nil {
		t.Fatal("expected an error for an unknown scene id")
	}
}

func TestPNEERendererBuildsPhotons(t *testing.T) {
	sc, cam := testScene(t)
	opts := testOptions()
	opts.LeftMode = tracer.PNEE
	opts.RightMode = tracer.PNEE
	opts.PhotonsPerLight = 500
	opts.PhotonBounces = 2
	r, err := New(sc, cam, opts)
	if err != nil {
		t.Fatal(err)
	}
	if r.Photons() == nil {
		t.Fatal("expected a photon octree for P-NEE panels")
	}
	if err = r.Compute(64); err != nil {
		t.Fatal(err)
	}
	stats := r.Stats()
	if stats.PhotonsEmitted == 0 {
		t.Fatal("expected emitted photons in the frame stats")
	}
}
