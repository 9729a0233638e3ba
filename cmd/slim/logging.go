package main

import (
	"github.com/gekko3d/slim"
	"github.com/urfave/cli"
)

var logger = slim.NewDefaultLogger("slim", false)

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") || ctx.GlobalBool("vv") {
		logger.SetDebug(true)
	}
}

// loadLogger is handed to scene and mesh loading, which log every BVH
// build. Those lines only show with -vv.
func loadLogger(ctx *cli.Context) slim.Logger {
	if ctx.GlobalBool("vv") {
		return logger
	}
	return slim.NewNopLogger()
}
