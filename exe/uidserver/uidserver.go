package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viert/uidstore/common"
	"github.com/viert/uidstore/config"
	"github.com/viert/uidstore/media"
	"github.com/viert/uidstore/server"
	"github.com/viert/uidstore/storage"
)

const (
	defaultConfigFilename = "/etc/uidstore.toml"
	shutdownTimeout       = 5 * time.Second
)

func main() {
	var configFilename string
	flag.StringVar(&configFilename, "c", "", "configuration filename")
	flag.Parse()

	if configFilename == "" {
		configFilename = defaultConfigFilename
	}

	f, err := os.Open(configFilename)
	if err != nil {
		log.Fatalf("can not open config file %s: %s", configFilename, err)
	}
	defer f.Close()

	cfg, err := config.ReadConfig(f)
	if err != nil {
		log.Fatalf("error reading config: %s", err)
	}

	lf, err := common.ConfigureLogging(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Fatalf("error configuring logging: %s", err)
	}
	if lf != nil {
		defer lf.Close()
	}

	drv, dev, err := media.Open(cfg.Media)
	if err != nil {
		log.Fatalf("error opening media: %s", err)
	}
	defer dev.Close()

	st, err := storage.New(drv, cfg.Options)
	if err != nil {
		log.Fatalf("error creating store: %s", err)
	}
	if err = st.Init(); err != nil {
		log.Fatalf("error loading store: %s", err)
	}
	defer st.Deinit()

	srv, err := server.NewServer(st, cfg).Start()
	if err != nil {
		log.Fatalf("error starting server: %s", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Reset()

	<-sigs
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Shutdown(ctx)

	if cfg.SaveOnExit && st.Dirty() {
		if err := st.Save(); err != nil {
			log.Printf("error saving store on exit: %s", err)
		}
	}
}
