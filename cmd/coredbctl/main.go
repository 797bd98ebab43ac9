// Command coredbctl wires the frame pool and the log/recovery subsystems
// together end-to-end: it opens a log file, replays it against a demo
// in-memory transaction manager, and logs when recovery completes. It keeps
// the usual shape of a small server binary — flag parsing, config load, an
// explicit run(cfg) error — without a network listener, since serving SQL
// is out of this core's scope.
package main

import (
	"flag"
	"log"

	"github.com/Ethkuil/TDB/internal/config"
	"github.com/Ethkuil/TDB/internal/demo"
	"github.com/Ethkuil/TDB/internal/framepool"
	"github.com/Ethkuil/TDB/internal/recovery"
	"github.com/Ethkuil/TDB/internal/wal"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to a coredb.yaml config file (optional)")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	if err := run(cfg); err != nil {
		log.Fatalf("coredbctl: %v", err)
	}
}

func run(cfg *config.Config) error {
	var fm framepool.FrameManager
	if err := fm.Init(cfg.Pool.Size); err != nil {
		return err
	}
	defer func() {
		if err := fm.Cleanup(); err != nil {
			log.Printf("coredbctl: frame pool cleanup: %v", err)
		}
	}()

	lm, err := wal.InitLogManager(cfg.Log.Path)
	if err != nil {
		return err
	}
	defer lm.Close()

	db := demo.NewDatabase(&fm)
	tm := demo.NewTrxManager(db)

	if err := recovery.Recover(db, lm.File(), tm); err != nil {
		return err
	}

	log.Printf("coredbctl: recovery complete against %s (pool size %d)", cfg.Log.Path, cfg.Pool.Size)
	return nil
}
