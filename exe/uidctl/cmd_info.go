package main

import (
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
)

func runInfo(da deviceArgs) {
	st, closer := openStore(da)
	defer closer.Close()

	stat := st.Stat()
	fmt.Printf("Media:        %s\n", stat.Kind)
	fmt.Printf("Region:       0x%x, %s\n", stat.Region.Offset, humanize.IBytes(uint64(stat.Region.Size)))
	fmt.Printf("State:        %s\n", stat.State)
	fmt.Printf("Entries:      %d\n", stat.Entries)
	fmt.Printf("Capacity:     %s\n", humanize.IBytes(uint64(stat.Capacity)))
	fmt.Printf("Encoded size: %s (%s free)\n", humanize.IBytes(uint64(stat.EncodedSize)),
		humanize.IBytes(uint64(stat.Capacity-int64(stat.EncodedSize))))
}

func runList(da deviceArgs) {
	st, closer := openStore(da)
	defer closer.Close()

	list, err := st.List()
	if err != nil {
		log.Fatalln(err)
	}
	for _, ei := range list {
		fmt.Printf("%-32s %s\n", ei.Name, humanize.Bytes(uint64(ei.Size)))
	}
}
