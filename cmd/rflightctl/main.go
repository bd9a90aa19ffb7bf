package main

import (
	"github.com/robotalks/rflight/pkg/cli/sh"

	_ "github.com/robotalks/rflight/pkg/cli/cmds/device"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
