package wm

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/1broseidon/tagwm/internal/config"
	"github.com/1broseidon/tagwm/internal/hotkeys"
	"github.com/1broseidon/tagwm/internal/launch"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/tiling"
)

var errGone = errors.New("window gone")

// fakeBackend records what the manager asks of the window system.
type fakeBackend struct {
	events   chan platform.Event
	outputs  []platform.Output
	screen   tiling.Rect
	pointerX int
	pointerY int
	existing []platform.Window
	infos    map[platform.Window]platform.WindowInfo
	titles   map[platform.Window]string
	icons    map[platform.Window]image.Image
	status   string

	outputsErr error

	managed     []platform.Window
	mapped      []platform.Window
	geoms       map[platform.Window]tiling.Rect
	borders     map[platform.Window]uint32
	notified    map[platform.Window]tiling.Rect
	passthrough []platform.ConfigureRequest
	configures  int
	focus       platform.Window
	stack       []platform.Window
	fullscreen  map[platform.Window]bool
	closed      []platform.Window
	grabbed     []hotkeys.Chord
	published   platform.DesktopState
	publishes   int
	bars        map[int]tiling.Rect
	draws       int
	hiddenBars  []int
	shutdown    bool
	serial      platform.Serial // last value returned by Settle
	iconFetches int
	keymaps     int
}

func newFakeBackend(outputs ...platform.Output) *fakeBackend {
	screen := tiling.Rect{Width: 1000, Height: 600}
	if len(outputs) > 0 {
		screen = outputs[0].Rect
	}
	return &fakeBackend{
		events:     make(chan platform.Event, 16),
		outputs:    outputs,
		screen:     screen,
		infos:      make(map[platform.Window]platform.WindowInfo),
		titles:     make(map[platform.Window]string),
		icons:      make(map[platform.Window]image.Image),
		geoms:      make(map[platform.Window]tiling.Rect),
		borders:    make(map[platform.Window]uint32),
		notified:   make(map[platform.Window]tiling.Rect),
		fullscreen: make(map[platform.Window]bool),
		bars:       make(map[int]tiling.Rect),
	}
}

// addWindow makes w known to Inspect as a normal client.
func (f *fakeBackend) addWindow(w platform.Window, mutate ...func(*platform.WindowInfo)) {
	info := platform.WindowInfo{
		Window:   w,
		Viewable: true,
		Geometry: tiling.Rect{X: 10, Y: 10, Width: 200, Height: 100},
		Desktop:  -1,
	}
	for _, fn := range mutate {
		fn(&info)
	}
	f.infos[w] = info
}

func (f *fakeBackend) Events() <-chan platform.Event { return f.events }

func (f *fakeBackend) Outputs() ([]platform.Output, error) {
	if f.outputsErr != nil {
		return nil, f.outputsErr
	}
	return slices.Clone(f.outputs), nil
}

func (f *fakeBackend) Screen() tiling.Rect                 { return f.screen }
func (f *fakeBackend) Pointer() (int, int, bool)           { return f.pointerX, f.pointerY, true }
func (f *fakeBackend) Windows() ([]platform.Window, error) { return slices.Clone(f.existing), nil }

func (f *fakeBackend) Inspect(w platform.Window) (platform.WindowInfo, error) {
	info, ok := f.infos[w]
	if !ok {
		return platform.WindowInfo{}, errGone
	}
	return info, nil
}

func (f *fakeBackend) Title(w platform.Window) string { return f.titles[w] }

func (f *fakeBackend) Icon(w platform.Window, size int) image.Image {
	f.iconFetches++
	return f.icons[w]
}
func (f *fakeBackend) Status() string { return f.status }

func (f *fakeBackend) Manage(w platform.Window) error {
	if _, ok := f.infos[w]; !ok {
		return errGone
	}
	f.managed = append(f.managed, w)
	return nil
}

func (f *fakeBackend) Map(w platform.Window) error {
	f.mapped = append(f.mapped, w)
	return nil
}

func (f *fakeBackend) Configure(w platform.Window, r tiling.Rect, border int) error {
	f.configures++
	f.geoms[w] = r
	return nil
}

func (f *fakeBackend) NotifyGeometry(w platform.Window, r tiling.Rect, border int) error {
	f.notified[w] = r
	return nil
}

func (f *fakeBackend) Passthrough(req platform.ConfigureRequest) error {
	f.passthrough = append(f.passthrough, req)
	return nil
}

func (f *fakeBackend) SetBorder(w platform.Window, pixel uint32) error {
	f.borders[w] = pixel
	return nil
}

func (f *fakeBackend) Focus(w platform.Window) error {
	f.focus = w
	return nil
}

func (f *fakeBackend) Restack(order []platform.Window) error {
	f.stack = slices.Clone(order)
	return nil
}

// Settle hands out a fresh serial per call, as a round trip would.
func (f *fakeBackend) Settle() (platform.Serial, error) {
	f.serial += 10
	return f.serial, nil
}

func (f *fakeBackend) SetFullscreen(w platform.Window, on bool) error {
	f.fullscreen[w] = on
	return nil
}

func (f *fakeBackend) Close(w platform.Window) error {
	f.closed = append(f.closed, w)
	return nil
}

func (f *fakeBackend) GrabKeys(chords []hotkeys.Chord) error {
	f.grabbed = chords
	return nil
}

func (f *fakeBackend) RefreshKeymap() { f.keymaps++ }

func (f *fakeBackend) Publish(s platform.DesktopState) error {
	f.published = s
	f.publishes++
	return nil
}

func (f *fakeBackend) DrawBar(id int, at tiling.Rect, img *image.RGBA) error {
	f.bars[id] = at
	f.draws++
	return nil
}

func (f *fakeBackend) HideBar(id int) error {
	delete(f.bars, id)
	f.hiddenBars = append(f.hiddenBars, id)
	return nil
}

func (f *fakeBackend) Shutdown() { f.shutdown = true }

type fakeLauncher struct {
	launched []launch.Command
}

func (l *fakeLauncher) Launch(cmd launch.Command) error {
	l.launched = append(l.launched, cmd)
	return nil
}

func testOptions() Options {
	return Options{
		Tags:      []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Ratio:     0.6,
		RatioStep: 0.05,
		RatioMin:  0.15,
		RatioMax:  0.85,
		Masters:   1,
		Palette: config.Palette{
			BorderFocused: 0xff0000,
			BorderNormal:  0x333333,
		},
	}
}

func testTable(t *testing.T) *hotkeys.Table {
	t.Helper()
	cfg := config.DefaultConfig()
	table, errs := hotkeys.Build(cfg.Keybindings, cfg.Modifier, cfg.Commands, len(cfg.Tags))
	if len(errs) > 0 {
		t.Fatalf("default key table: %v", errs)
	}
	return table
}

func chord(t *testing.T, spec string) hotkeys.Chord {
	t.Helper()
	c, err := hotkeys.ParseChord(spec, "Mod4")
	if err != nil {
		t.Fatalf("ParseChord(%q): %v", spec, err)
	}
	return c
}

// startManager runs a manager on a single 1000x600 output with no gap,
// border or bar.
func startManager(t *testing.T, opts Options, fb *fakeBackend) (*Manager, *fakeLauncher) {
	t.Helper()
	if len(fb.outputs) == 0 {
		fb.outputs = []platform.Output{{Name: "A", Rect: tiling.Rect{Width: 1000, Height: 600}}}
	}
	l := &fakeLauncher{}
	m := NewManager(opts, fb, l, testTable(t), nil, nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m, l
}

func mapWindow(t *testing.T, m *Manager, fb *fakeBackend, w platform.Window, mutate ...func(*platform.WindowInfo)) {
	t.Helper()
	fb.addWindow(w, mutate...)
	m.Handle(platform.MapRequest{Window: w})
	if _, ok := m.State().Clients().Lookup(w); !ok {
		if ok, _ := Manageable(fb.infos[w]); ok {
			t.Fatalf("window %d was not managed", w)
		}
	}
}

func destroyWindow(m *Manager, fb *fakeBackend, w platform.Window) {
	delete(fb.infos, w)
	m.Handle(platform.Unmap{Window: w, Destroyed: true})
}

func press(t *testing.T, m *Manager, spec string) {
	t.Helper()
	m.Handle(platform.KeyPress{Chord: chord(t, spec)})
}
