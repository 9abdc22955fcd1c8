package main

import (
	"io"
	"log"
	"os"

	"github.com/viert/uidstore/config"
	"github.com/viert/uidstore/media"
	"github.com/viert/uidstore/storage"
)

type deviceArgs struct {
	configFile *string
	kind       *string
	device     *string
	offset     *int
	size       *int
	sectorSize *int
}

func (da deviceArgs) descriptor() (media.Descriptor, storage.Options) {
	var desc media.Descriptor
	var opts storage.Options

	if *da.configFile != "" {
		f, err := os.Open(*da.configFile)
		if err != nil {
			log.Fatalf("can not open config file %s: %s", *da.configFile, err)
		}
		defer f.Close()
		cfg, err := config.ReadConfig(f)
		if err != nil {
			log.Fatalf("error reading config: %s", err)
		}
		desc = cfg.Media
		opts = cfg.Options
	}

	if *da.kind != "" {
		kind, err := media.ParseKind(*da.kind)
		if err != nil {
			log.Fatalln(err)
		}
		desc.Kind = kind
	}
	if *da.device != "" {
		desc.Path = *da.device
	}
	if *da.sectorSize > 0 {
		desc.SectorSize = int64(*da.sectorSize)
	}
	if *da.offset >= 0 {
		opts.Region.Offset = int64(*da.offset)
	}
	if *da.size >= 0 {
		opts.Region.Size = int64(*da.size)
	}

	if desc.Path == "" {
		log.Fatalln("no device given, use --config or --kind and --device")
	}
	return desc, opts
}

func openDriver(da deviceArgs) (media.Driver, storage.Options, io.Closer) {
	desc, opts := da.descriptor()
	drv, closer, err := media.Open(desc)
	if err != nil {
		log.Fatalf("error opening %s: %s", desc.Path, err)
	}
	return drv, opts, closer
}

// openStore opens the device and loads the store, the caller closes the device
func openStore(da deviceArgs) (*storage.Store, io.Closer) {
	drv, opts, closer := openDriver(da)
	st, err := storage.New(drv, opts)
	if err != nil {
		closer.Close()
		log.Fatalf("error creating store: %s", err)
	}
	if err := st.Init(); err != nil {
		closer.Close()
		log.Fatalf("error loading store: %s", err)
	}
	return st, closer
}
