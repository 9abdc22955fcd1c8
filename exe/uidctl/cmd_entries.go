package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
)

func runGet(da deviceArgs, name string, offset int, length int, asHex bool) {
	st, closer := openStore(da)
	defer closer.Close()

	data, err := st.Read(name, offset, length)
	if err != nil {
		log.Fatalf("error reading %s: %s", name, err)
	}
	if asHex {
		fmt.Print(hex.Dump(data))
		return
	}
	os.Stdout.Write(data)
}

func runSet(da deviceArgs, name string, offset int, value string, filename string) {
	var data []byte
	var err error

	switch {
	case filename != "":
		data, err = os.ReadFile(filename)
		if err != nil {
			log.Fatalf("error reading %s: %s", filename, err)
		}
	case value != "":
		data = []byte(value)
	default:
		log.Fatalln("either --value or --file is required")
	}

	st, closer := openStore(da)
	defer closer.Close()

	if err = st.Write(name, offset, data); err != nil {
		log.Fatalf("error writing %s: %s", name, err)
	}
	if err = st.Save(); err != nil {
		log.Fatalf("error saving store: %s", err)
	}
	fmt.Printf("%s: %d bytes written at %d\n", name, len(data), offset)
}

func runRemove(da deviceArgs, name string) {
	st, closer := openStore(da)
	defer closer.Close()

	if err := st.Remove(name); err != nil {
		log.Fatalf("error removing %s: %s", name, err)
	}
	if err := st.Save(); err != nil {
		log.Fatalf("error saving store: %s", err)
	}
	fmt.Printf("%s removed\n", name)
}
