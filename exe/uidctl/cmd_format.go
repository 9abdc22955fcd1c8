package main

import (
	"fmt"
	"log"

	"github.com/viert/uidstore/storage"
)

func runFormat(da deviceArgs) {
	drv, opts, closer := openDriver(da)
	defer closer.Close()

	if opts.Region.Size <= 0 {
		opts.Region.Size = drv.Geometry().Size - opts.Region.Offset
	}
	if err := storage.Format(drv, opts.Region); err != nil {
		log.Fatalf("error formatting store: %s", err)
	}
	fmt.Printf("Empty store written at 0x%x\n", opts.Region.Offset)
}
