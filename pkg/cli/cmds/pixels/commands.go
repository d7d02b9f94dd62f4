package pixels

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/epilepsia/epilepsia.go/pkg/cli/sh"
)

var (
	// BrightnessCmd sets brightness.
	BrightnessCmd = ishell.Cmd{
		Name:    "brightness",
		Aliases: []string{"b"},
		Help:    "VALUE(0-1)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("VALUE required"))
				return
			}
			val, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid VALUE: %v", err))
				return
			}
			sh.Report(c, sh.ShellFrom(c).Client.SetBrightness(val))
		}),
	}

	// DitherCmd switches dithering.
	DitherCmd = ishell.Cmd{
		Name:    "dither",
		Aliases: []string{"dithering"},
		Help:    "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("on or off required"))
				return
			}
			on, err := ParseSwitch(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.Report(c, sh.ShellFrom(c).Client.SetDithering(on))
		}),
	}

	// FillCmd lights all pixels with one color.
	FillCmd = ishell.Cmd{
		Name:    "fill",
		Aliases: []string{"f"},
		Help:    "R G B | #rrggbb",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			color, err := ParseRGB(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			s := sh.ShellFrom(c)
			sh.Report(c, s.Client.PutPixels(s.Channel, Fill(s.PixelCount(), color)))
		}),
	}

	// ClearCmd turns all pixels off.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			sh.Report(c, s.Client.PutPixels(s.Channel, Fill(s.PixelCount(), RGB{})))
		}),
	}

	// RowsCmd lights each row one after the other.
	RowsCmd = ishell.Cmd{
		Name: "rows",
		Help: "[FPS [CYCLES]]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			fps, cycles := 120.0, 1
			var err error
			if len(c.Args) > 0 {
				if fps, err = strconv.ParseFloat(c.Args[0], 64); err != nil || fps <= 0 {
					c.Err(fmt.Errorf("Invalid FPS: %q", c.Args[0]))
					return
				}
			}
			if len(c.Args) > 1 {
				if cycles, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("Invalid CYCLES: %v", err))
					return
				}
			}
			s := sh.ShellFrom(c)
			ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
			defer ticker.Stop()
			for n := 0; n < cycles*s.Height; n++ {
				frame := Row(s.Width, s.Height, n%s.Height, RGB{0, 0, 100})
				if err := s.Client.PutPixels(s.Channel, frame); err != nil {
					c.Err(err)
					return
				}
				<-ticker.C
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&BrightnessCmd,
		&DitherCmd,
		&FillCmd,
		&ClearCmd,
		&RowsCmd,
	)
}
