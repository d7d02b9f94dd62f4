package main

import (
	"github.com/epilepsia/epilepsia.go/pkg/cli/sh"

	_ "github.com/epilepsia/epilepsia.go/pkg/cli/cmds/pixels"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
