package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/openpetcare/catbridge/config"
	"github.com/openpetcare/catbridge/internal/app"
)

var (
	configFile = flag.String("c", "catbridge.yml", "config file")
	pollOnce   = flag.Bool("once", false, "run one poll cycle and exit")
	showVer    = flag.Bool("v", false, "show version")
)

var version = "dev"

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}
	if len(cfg.Accounts) == 0 {
		log.Fatal("no accounts configured")
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	ctx := context.Background()
	application.RestoreSessions(ctx)
	application.PollNow(ctx)

	if *pollOnce {
		return
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
