// Package pixels provides shell commands sending pixels and settings.
package pixels

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a pixel color.
type RGB [3]byte

// Fill returns count pixels of color.
func Fill(count int, color RGB) []byte {
	data := make([]byte, count*3)
	for n := 0; n < len(data); n += 3 {
		copy(data[n:], color[:])
	}
	return data
}

// Row returns a width x height frame with only row lit.
func Row(width, height, row int, color RGB) []byte {
	data := make([]byte, width*height*3)
	if row >= 0 && row < height {
		copy(data[row*width*3:], Fill(width, color))
	}
	return data
}

// ParseRGB parses "R G B" arguments or a single "#rrggbb".
func ParseRGB(args []string) (RGB, error) {
	var color RGB
	if len(args) == 1 && strings.HasPrefix(args[0], "#") && len(args[0]) == 7 {
		val, err := strconv.ParseUint(args[0][1:], 16, 32)
		if err != nil {
			return color, fmt.Errorf("invalid color %q", args[0])
		}
		return RGB{byte(val >> 16), byte(val >> 8), byte(val)}, nil
	}
	if len(args) != 3 {
		return color, fmt.Errorf("R G B or #rrggbb required")
	}
	for n, arg := range args {
		val, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return color, fmt.Errorf("invalid color component %q", arg)
		}
		color[n] = byte(val)
	}
	return color, nil
}

// ParseSwitch parses on/off style arguments.
func ParseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q, expect on or off", arg)
}
