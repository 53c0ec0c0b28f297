package ocean

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/query"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Ocean.SliceCount = 3
	cfg.Ocean.SliceResolution = 16
	cfg.Derived.CascadeCenterX32 = 0
	cfg.Derived.CascadeCenterZ32 = 0
	return cfg
}

func TestOcean_UninitializedProvidersReturnZeros(t *testing.T) {
	o := New(testConfig(), nil)

	points := []field.Vec3{{X: 1}, {X: 2}}
	depth := []field.Vec2{{X: 9, Y: 9}, {X: 9, Y: 9}}
	if s := o.Depth().Query(1, 0, points, depth); s != query.StatusOK {
		t.Errorf("expected OK from uninitialized depth, got %b", s)
	}
	for i, d := range depth {
		if d != (field.Vec2{}) {
			t.Errorf("depth %d not zeroed: %+v", i, d)
		}
	}

	disp := []field.Vec3{{Y: 4}, {Y: 4}}
	if s := o.Collision().Query(1, 0, points, disp, nil, nil); s != query.StatusOK {
		t.Errorf("expected OK from uninitialized collision, got %b", s)
	}
	if disp[0] != (field.Vec3{}) {
		t.Errorf("displacement not zeroed: %+v", disp[0])
	}
}

func TestOcean_DepthScenarioWithOutOfBoundsPoint(t *testing.T) {
	o := New(testConfig(), nil)
	o.Step(0.1)

	// Slice 2 covers [-32, 32) on both axes.
	points := []field.Vec3{{X: 0}, {X: 20, Z: -20}, {X: 1e6, Z: 1e6}}
	results := make([]field.Vec2, 3)

	if s := o.Depth().Query(1, 0, points, results); query.RetrieveSucceeded(s) {
		t.Fatalf("expected no data on the first query, got %b", s)
	}
	o.Step(0.1)
	if s := o.Depth().Query(1, 0, points, results); s != query.StatusOK {
		t.Fatalf("expected OK, got %b", s)
	}

	want, _ := o.Cascade().Slice(0).SampleDepth(0, 0)
	if results[0].X != want {
		t.Errorf("depth at origin = %v, want %v", results[0].X, want)
	}
	for i, r := range results {
		if math.IsNaN(float64(r.X)) || math.IsNaN(float64(r.Y)) {
			t.Errorf("point %d returned NaN: %+v", i, r)
		}
	}
	if !math.IsInf(float64(results[2].X), 1) || !math.IsInf(float64(results[2].Y), 1) {
		t.Errorf("expected out-of-bounds point to report +Inf, got %+v", results[2])
	}
}

func TestOcean_ResultsArriveInFrameOrder(t *testing.T) {
	o := New(testConfig(), nil)
	o.Step(0.1)

	coll := o.Collision()
	engine := o.Engine(query.KernelDisplacement)
	points := []field.Vec3{{X: 3, Z: 4}}
	disp := make([]field.Vec3, 1)

	coll.Query(1, 0, points, disp, nil, nil)
	var last float64
	for i := 0; i < 6; i++ {
		dispatched := o.Cascade().Time()
		o.Step(0.1)
		if s := coll.Query(1, 0, points, disp, nil, nil); !query.RetrieveSucceeded(s) {
			t.Fatalf("step %d: expected data, got %b", i, s)
		}
		got, ok := engine.ResultTime(1)
		if !ok {
			t.Fatalf("step %d: no result time", i)
		}
		if got < last {
			t.Errorf("step %d: result time went backwards (%v < %v)", i, got, last)
		}
		if math.Abs(got-(dispatched+0.1)) > 1e-9 {
			t.Errorf("step %d: result time %v, want %v", i, got, dispatched+0.1)
		}
		last = got
	}
}

func TestOcean_DisabledUsesNullProviders(t *testing.T) {
	cfg := testConfig()
	cfg.Ocean.Enabled = false
	o := New(cfg, nil)

	if o.Enabled() {
		t.Fatal("expected disabled ocean")
	}
	if o.Depth() != query.NoDepth || o.Flow() != query.NoFlow || o.Collision() != query.NoCollision {
		t.Error("expected null providers")
	}
	o.Step(0.1)
	if o.Frame() != 1 || o.Engines() != nil {
		t.Errorf("unexpected state after step: frame %d, engines %v", o.Frame(), o.Engines())
	}
}

func TestOcean_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := New(testConfig(), reg)
	o.Step(0.1)
	o.Flow().Query(1, 0, []field.Vec3{{}}, make([]field.Vec2, 1))
	o.Step(0.1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "swell_query_dispatches_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected dispatch counter to be registered")
	}
}
