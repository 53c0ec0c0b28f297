package query

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pthm-cable/swell/field"
)

func setDisplacement(src *field.Static, disp field.Vec3) {
	for _, s := range src.Slices {
		fillSlice(s, disp, field.Vec2{}, 10)
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestCollision_NormalsAndVelocities(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	setDisplacement(h.src, field.Vec3{Y: 2})
	coll := NewCollision(h.engine, 0.25)

	points := []field.Vec3{{X: 0.5, Z: -0.5}}
	disp := make([]field.Vec3, 1)
	normals := make([]field.Vec3, 1)
	vels := make([]field.Vec3, 1)

	if s := coll.Query(1, 0, points, disp, normals, vels); coll.RetrieveSucceeded(s) {
		t.Fatalf("expected first query to fail retrieval, got %b", s)
	}

	h.step(0.5)
	s := coll.Query(1, 0, points, disp, normals, vels)
	if s != StatusNotEnoughDataForVels {
		t.Fatalf("expected only velocity status after first result, got %b", s)
	}
	if !near(disp[0].Y, 2) {
		t.Errorf("expected displacement Y 2, got %+v", disp[0])
	}
	if !near(normals[0].X, 0) || !near(normals[0].Y, 1) || !near(normals[0].Z, 0) {
		t.Errorf("expected flat normal, got %+v", normals[0])
	}

	setDisplacement(h.src, field.Vec3{Y: 3})
	h.step(0.5)
	if s := coll.Query(1, 0, points, disp, normals, vels); s != StatusOK {
		t.Fatalf("expected OK, got %b", s)
	}
	if !near(vels[0].Y, 2) {
		t.Errorf("expected vertical velocity 2, got %+v", vels[0])
	}

	h.step(0)
	if s := coll.Query(1, 0, points, disp, normals, vels); s != StatusInvalidDtForVelocity {
		t.Errorf("expected invalid dt status, got %b", s)
	}
}

func TestCollision_ShapeChangeInvalidatesVelocity(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	coll := NewCollision(h.engine, 0.25)
	points := []field.Vec3{{X: 1}}
	disp := make([]field.Vec3, 1)
	vels := make([]field.Vec3, 1)

	coll.Query(1, 0, points, disp, make([]field.Vec3, 1), vels)
	h.step(0.1)
	coll.Query(1, 0, points, disp, make([]field.Vec3, 1), vels)

	// Dropping normals shrinks the query from three samples per point to one.
	if s := coll.Query(1, 0, points, disp, nil, vels); coll.RetrieveSucceeded(s) {
		t.Fatalf("expected reshaped query to fail retrieval, got %b", s)
	}
	h.step(0.1)
	if s := coll.Query(1, 0, points, disp, nil, vels); s != StatusVelocityDataInvalidated {
		t.Errorf("expected invalidated velocity status, got %b", s)
	}
}

func TestCollision_NormalOnChoppyWater(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	// Horizontal displacement 0.3x under a height of 0.5x. The surface above
	// world x sits at height 0.5x/1.3, a slope of 5/13.
	for _, sl := range h.src.Slices {
		for iz := 0; iz < sl.Resolution; iz++ {
			for ix := 0; ix < sl.Resolution; ix++ {
				x, _ := sl.TexelCenter(ix, iz)
				sl.SetTexel(ix, iz, field.Vec3{X: 0.3 * x, Y: 0.5 * x}, field.Vec2{}, 10)
			}
		}
	}
	coll := NewCollision(h.engine, 0.25)

	points := []field.Vec3{{X: 0.2}}
	disp := make([]field.Vec3, 1)
	normals := make([]field.Vec3, 1)
	coll.Query(1, 0, points, disp, normals, nil)
	h.step(0.1)
	if s := coll.Query(1, 0, points, disp, normals, nil); !coll.RetrieveSucceeded(s) {
		t.Fatalf("expected retrieval to succeed, got %b", s)
	}

	slope := 5.0 / 13.0
	wantX := float32(-slope / math.Sqrt(1+slope*slope))
	if math.Abs(float64(normals[0].X-wantX)) > 2e-3 {
		t.Errorf("expected normal X %.4f, got %+v", wantX, normals[0])
	}
	if !near(normals[0].Z, 0) {
		t.Errorf("expected no Z tilt, got %+v", normals[0])
	}
}

func TestCollision_QueryHeightsAddsSeaLevel(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	h.src.Level = 10
	setDisplacement(h.src, field.Vec3{Y: -1.5})
	coll := NewCollision(h.engine, 0.25)

	points := []field.Vec3{{}, {X: 2, Z: 2}}
	heights := make([]float32, 2)
	coll.QueryHeights(1, 0, points, heights, nil, nil)
	h.step(0.1)
	if s := coll.QueryHeights(1, 0, points, heights, nil, nil); s != StatusOK {
		t.Fatalf("expected OK, got %b", s)
	}
	for i, v := range heights {
		if !near(v, 8.5) {
			t.Errorf("height %d = %v, want 8.5", i, v)
		}
	}
}

func TestCollision_LengthMismatch(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	coll := NewCollision(h.engine, 0.25)
	s := coll.Query(1, 0, make([]field.Vec3, 2), make([]field.Vec3, 2), make([]field.Vec3, 1), nil)
	if s != StatusPostFailed|StatusRetrieveFailed {
		t.Errorf("expected mismatch status, got %b", s)
	}
}

func TestDisplacementKernel_InvertsHorizontalOffset(t *testing.T) {
	src := field.NewStatic(1, 16, 1)
	// A uniform shift moves every surface point by +1 on X.
	fillSlice(src.Slices[0], field.Vec3{X: 1, Y: 0.5}, field.Vec2{}, 10)

	s := sampleDisplacement(src, upload{x: 0, z: 0})
	if !near(s.X, 1) || !near(s.Y, 0.5) || s.W != 0 {
		t.Errorf("unexpected sample %+v", s)
	}
	if out := sampleDisplacement(src, upload{x: 50}); out != (Sample{W: -1}) {
		t.Errorf("expected border sample outside the field, got %+v", out)
	}
}

func TestSampleHeightHelper(t *testing.T) {
	h := newHarness(KernelDisplacement, 1, testQueryConfig())
	h.src.Level = 1
	setDisplacement(h.src, field.Vec3{Y: 0.5})
	coll := NewCollision(h.engine, 0.25)

	helper := NewSampleHeightHelper(1)
	other := NewSampleHeightHelper(2)
	if helper.Hash() == other.Hash() {
		t.Fatal("expected distinct helper hashes")
	}
	if NewSampleHeightHelper(1).Hash() != helper.Hash() {
		t.Error("expected the same id to give the same hash")
	}
	if NewSampleFlowHelper(1).Hash() == helper.Hash() || NewSampleDepthHelper(1).Hash() == helper.Hash() {
		t.Error("expected helper kinds to salt their hashes")
	}

	helper.Init(field.Vec3{X: 1, Z: 1}, 0)
	if _, _, _, ok := helper.Sample(coll); ok {
		t.Fatal("expected no data before the first readback")
	}
	h.step(0.1)
	height, normal, _, ok := helper.Sample(coll)
	if !ok {
		t.Fatal("expected data after one frame")
	}
	if !near(height, 1.5) {
		t.Errorf("height = %v, want 1.5", height)
	}
	if !near(normal.Y, 1) {
		t.Errorf("expected upward normal, got %+v", normal)
	}
}

func TestSampleDepthAndFlowHelpers_NullProviders(t *testing.T) {
	dh := NewSampleDepthHelper(1)
	dh.Init(field.Vec3{X: 3}, 1)
	if d, sd, ok := dh.Sample(NoDepth); !ok || d != 0 || sd != 0 {
		t.Errorf("depth helper on null provider: %v %v %v", d, sd, ok)
	}

	fh := NewSampleFlowHelper(1)
	fh.Init(field.Vec3{X: 3}, 1)
	if f, ok := fh.Sample(NoFlow); !ok || f != (field.Vec2{}) {
		t.Errorf("flow helper on null provider: %+v %v", f, ok)
	}
}

func TestSaltedHash(t *testing.T) {
	a := SaltedHash("buoyancy", 7)
	if a != SaltedHash("buoyancy", 7) {
		t.Error("expected deterministic hash")
	}
	if a == SaltedHash("drift", 7) {
		t.Error("expected salt to change the hash")
	}
	if a == SaltedHash("buoyancy", 8) {
		t.Error("expected id to change the hash")
	}
	if a < 0 {
		t.Errorf("expected non-negative hash, got %d", a)
	}
}

func TestMetrics_CountsEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := newHarness(KernelDepth, 1, testQueryConfig())
	h.engine.AddObserver(m)

	points := []field.Vec3{{}}
	h.engine.Query(1, 0, points, make([]Sample, 1))
	h.engine.Query(1, 0, points, make([]Sample, 1))
	h.engine.Query(2, -1, points, make([]Sample, 1))
	h.step(0.1)
	h.engine.Query(1, 0, points, make([]Sample, 1))

	if v := testutil.ToFloat64(m.dispatches.WithLabelValues("depth")); v != 1 {
		t.Errorf("dispatches = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.events.WithLabelValues("depth", "dedup")); v != 1 {
		t.Errorf("dedup events = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.events.WithLabelValues("depth", "post_invalid")); v != 1 {
		t.Errorf("invalid posts = %v, want 1", v)
	}
	if n := testutil.CollectAndCount(m.latency); n != 1 {
		t.Errorf("expected one latency series, got %d", n)
	}
}
