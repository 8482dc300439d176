package tiling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMasterStack_ThreeWindowsAtSixtyPercent(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1000, Height: 601}

	positions := MasterStack(monitor, 0.6, 1, 3, 0)
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}

	want := []Rect{
		{X: 0, Y: 0, Width: 600, Height: 601},
		{X: 600, Y: 0, Width: 400, Height: 300},
		{X: 600, Y: 300, Width: 400, Height: 301},
	}
	if diff := cmp.Diff(want, positions); diff != "" {
		t.Fatalf("unexpected layout (-want +got):\n%s", diff)
	}
}

func TestMasterStack_SingleWindowGetsUsableArea(t *testing.T) {
	monitor := Rect{X: 100, Y: 20, Width: 800, Height: 600}

	positions := MasterStack(monitor, 0.5, 1, 1, 10)
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	want := Rect{X: 110, Y: 30, Width: 780, Height: 580}
	if positions[0] != want {
		t.Fatalf("expected %+v, got %+v", want, positions[0])
	}
}

func TestMasterStack_EmptyProducesNothing(t *testing.T) {
	if got := MasterStack(Rect{Width: 100, Height: 100}, 0.5, 1, 0, 0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMasterStack_PartitionsAreaWithoutGaps(t *testing.T) {
	monitors := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1280, Height: 1024},
		{X: 0, Y: 17, Width: 333, Height: 777},
	}
	ratios := []float64{0.15, 0.5, 0.61, 0.85}

	for _, monitor := range monitors {
		for _, ratio := range ratios {
			for masters := 0; masters <= 3; masters++ {
				for n := 1; n <= 9; n++ {
					positions := MasterStack(monitor, ratio, masters, n, 0)
					if len(positions) != n {
						t.Fatalf("n=%d: expected %d positions, got %d", n, n, len(positions))
					}

					sum := 0
					for i, p := range positions {
						if p.Width <= 0 || p.Height <= 0 {
							t.Fatalf("n=%d masters=%d: tile %d has non-positive size %+v", n, masters, i, p)
						}
						if p.X < monitor.X || p.Y < monitor.Y ||
							p.X+p.Width > monitor.X+monitor.Width ||
							p.Y+p.Height > monitor.Y+monitor.Height {
							t.Fatalf("n=%d masters=%d: tile %d %+v outside %+v", n, masters, i, p, monitor)
						}
						sum += p.Area()
						for j := i + 1; j < len(positions); j++ {
							if p.Intersects(positions[j]) {
								t.Fatalf("n=%d masters=%d: tiles %d and %d overlap: %+v %+v", n, masters, i, j, p, positions[j])
							}
						}
					}
					if sum != monitor.Area() {
						t.Fatalf("n=%d masters=%d ratio=%v: tile area %d != monitor area %d", n, masters, ratio, sum, monitor.Area())
					}
				}
			}
		}
	}
}

func TestMasterStack_GapsAccountForAllMissingArea(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 1000, Height: 700}
	gap := 10

	positions := MasterStack(monitor, 0.5, 1, 4, gap)
	usable := monitor.Inset(gap)

	sum := 0
	for _, p := range positions {
		sum += p.Area()
	}

	masterWidth := positions[0].Width
	stackWidth := positions[1].Width
	// One vertical strip between the columns, two horizontal strips between
	// the three stacked tiles.
	gapArea := gap*usable.Height + 2*gap*stackWidth
	if sum != usable.Area()-gapArea {
		t.Fatalf("expected tiles to cover %d, got %d", usable.Area()-gapArea, sum)
	}
	if masterWidth+gap+stackWidth != usable.Width {
		t.Fatalf("columns do not fill usable width: %d + %d + %d != %d", masterWidth, gap, stackWidth, usable.Width)
	}
	last := positions[len(positions)-1]
	if last.Y+last.Height != usable.Y+usable.Height {
		t.Fatalf("stack does not reach the bottom edge: %+v", last)
	}
}

func TestMasterStack_IsIdempotent(t *testing.T) {
	monitor := Rect{X: 5, Y: 7, Width: 1366, Height: 768}

	first := MasterStack(monitor, 0.55, 2, 5, 6)
	second := MasterStack(monitor, 0.55, 2, 5, 6)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("layout changed between identical calls:\n%s", diff)
	}
}

func TestMasterStack_AllMastersUseFullWidth(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 900, Height: 600}

	positions := MasterStack(monitor, 0.5, 3, 2, 0)
	for i, p := range positions {
		if p.Width != 900 {
			t.Fatalf("tile %d: expected full width, got %d", i, p.Width)
		}
	}
}

func TestShrink_ClampsToMinimumSize(t *testing.T) {
	got := Shrink(Rect{X: 3, Y: 4, Width: 2, Height: 100}, 2)
	if got.Width != 1 || got.Height != 96 {
		t.Fatalf("expected 1x96, got %dx%d", got.Width, got.Height)
	}
	if got.X != 3 || got.Y != 4 {
		t.Fatalf("expected position unchanged, got %d,%d", got.X, got.Y)
	}
}

func TestClampInto_KeepsFloatingWindowOnScreen(t *testing.T) {
	area := Rect{X: 0, Y: 20, Width: 800, Height: 580}

	got := ClampInto(Rect{X: 700, Y: -50, Width: 300, Height: 200}, area)
	want := Rect{X: 500, Y: 20, Width: 300, Height: 200}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	got = ClampInto(Rect{X: -10, Y: 0, Width: 2000, Height: 2000}, area)
	if got != area {
		t.Fatalf("expected oversized window to fill %+v, got %+v", area, got)
	}
}
