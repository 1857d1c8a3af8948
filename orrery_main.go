package main

import (
	"os"
	"runtime"

	"github.com/gekko3d/orrery/rt/app"
	"github.com/gekko3d/orrery/rt/logging"
	"github.com/gekko3d/orrery/rt/loop"
)

func init() {
	// glfw and the surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	cfg := app.DefaultConfig()
	envErr := cfg.ApplyEnv(os.LookupEnv)

	log := logging.NewDefaultLogger("orrery", cfg.Debug)
	if envErr != nil {
		log.Warnf("ignoring environment: %v", envErr)
	}

	application := app.NewApp(cfg, log)
	if err := application.Init(); err != nil {
		log.Errorf("%v", err)
		application.Close()
		os.Exit(1)
	}
	defer application.Close()

	loop.New(cfg.FrameRate, loop.SystemClock{}, log.With("loop")).Run(application)
}
