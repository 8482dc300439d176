package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xinerama"
)

// Monitor represents a physical display
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (c *Connection) initRandr() error {
	if c.randrReady {
		return nil
	}
	if err := randr.Init(c.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	c.randrReady = true
	return nil
}

// Monitors returns the active outputs. RandR is tried first, then Xinerama;
// an error means neither extension produced a usable answer.
func (c *Connection) Monitors() ([]Monitor, error) {
	monitors, err := c.randrMonitors()
	var heads func() ([]Monitor, error)
	if c.hasXinerama() {
		heads = c.xineramaMonitors
	}
	return pickMonitors(monitors, err, heads)
}

// pickMonitors prefers the RandR answer and falls back to heads, which is
// nil when the server lacks Xinerama.
func pickMonitors(randrOut []Monitor, randrErr error, heads func() ([]Monitor, error)) ([]Monitor, error) {
	if randrErr == nil && len(randrOut) > 0 {
		return randrOut, nil
	}
	if heads == nil {
		if randrErr == nil {
			randrErr = fmt.Errorf("no outputs reported and Xinerama is unavailable")
		}
		return nil, randrErr
	}
	out, err := heads()
	if err != nil || len(out) == 0 {
		if randrErr != nil {
			return nil, randrErr
		}
		if err == nil {
			err = fmt.Errorf("no outputs reported")
		}
		return nil, err
	}
	return out, nil
}

// hasXinerama reports whether xgbutil managed to initialize the extension
// when it connected. Requests to an uninitialized extension panic.
func (c *Connection) hasXinerama() bool {
	conn := c.Conn()
	conn.ExtLock.RLock()
	defer conn.ExtLock.RUnlock()
	_, ok := conn.Extensions["XINERAMA"]
	return ok
}

func (c *Connection) xineramaMonitors() ([]Monitor, error) {
	heads, err := xinerama.PhysicalHeads(c.XUtil)
	if err != nil {
		return nil, err
	}
	monitors := make([]Monitor, 0, len(heads))
	for _, h := range heads {
		x, y, w, hh := h.Pieces()
		monitors = append(monitors, Monitor{X: x, Y: y, Width: w, Height: hh})
	}
	return monitors, nil
}

// randrMonitors queries each CRTC for an enabled output. Cloned outputs
// sharing a CRTC geometry are reported once.
func (c *Connection) randrMonitors() ([]Monitor, error) {
	if err := c.initRandr(); err != nil {
		return nil, err
	}

	resources, err := randr.GetScreenResources(c.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	seen := make(map[[4]int]bool)
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}
		key := [4]int{int(crtcInfo.X), int(crtcInfo.Y), int(crtcInfo.Width), int(crtcInfo.Height)}
		if seen[key] {
			continue
		}
		seen[key] = true

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			Name:   outputName,
			X:      key[0],
			Y:      key[1],
			Width:  key[2],
			Height: key[3],
		})
	}

	return monitors, nil
}

// SelectScreenChanges asks for RandR notifications when outputs change.
func (c *Connection) SelectScreenChanges() error {
	if err := c.initRandr(); err != nil {
		return err
	}
	return randr.SelectInputChecked(c.Conn(), c.Root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange).Check()
}

// RootGeometry is the size of the whole virtual screen.
func (c *Connection) RootGeometry() (x, y, width, height int) {
	geom, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		s := c.XUtil.Screen()
		return 0, 0, int(s.WidthInPixels), int(s.HeightInPixels)
	}
	return int(geom.X), int(geom.Y), int(geom.Width), int(geom.Height)
}

// Pointer returns the pointer position in root coordinates.
func (c *Connection) Pointer() (int, int, error) {
	pointer, err := xproto.QueryPointer(c.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(pointer.RootX), int(pointer.RootY), nil
}
