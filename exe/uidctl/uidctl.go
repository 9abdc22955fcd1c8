package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"

	"github.com/viert/uidstore/common"
)

func main() {
	parser := argparse.NewParser("uidctl", "a tool for inspecting and provisioning userid stores")

	dev := deviceArgs{
		configFile: parser.String("c", "config", &argparse.Options{Help: "uidstore config file"}),
		kind:       parser.String("k", "kind", &argparse.Options{Help: "media kind: nand, nor or block"}),
		device:     parser.String("d", "device", &argparse.Options{Help: "device path"}),
		offset:     parser.Int("", "offset", &argparse.Options{Default: -1, Help: "store region offset"}),
		size:       parser.Int("", "size", &argparse.Options{Default: -1, Help: "store region size"}),
		sectorSize: parser.Int("", "sector-size", &argparse.Options{Default: 0, Help: "block device sector size (0 to detect)"}),
	}
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "log debug messages"})

	infoCmd := parser.NewCommand("info", "shows store state")

	listCmd := parser.NewCommand("list", "lists entries")

	getCmd := parser.NewCommand("get", "prints entry data")
	getName := getCmd.String("n", "name", &argparse.Options{Required: true, Help: "entry name"})
	getOffset := getCmd.Int("o", "at", &argparse.Options{Default: 0, Help: "data offset"})
	getLength := getCmd.Int("l", "length", &argparse.Options{Default: 0xffff, Help: "max number of bytes"})
	getHex := getCmd.Flag("x", "hex", &argparse.Options{Help: "print a hex dump instead of raw bytes"})

	setCmd := parser.NewCommand("set", "writes entry data and saves the store")
	setName := setCmd.String("n", "name", &argparse.Options{Required: true, Help: "entry name"})
	setOffset := setCmd.Int("o", "at", &argparse.Options{Default: 0, Help: "data offset"})
	setValue := setCmd.String("s", "value", &argparse.Options{Help: "data as a string"})
	setFile := setCmd.String("f", "file", &argparse.Options{Help: "read data from file"})

	rmCmd := parser.NewCommand("rm", "removes an entry and saves the store")
	rmName := rmCmd.String("n", "name", &argparse.Options{Required: true, Help: "entry name"})

	formatCmd := parser.NewCommand("format", "writes an empty container to the store region")

	packCmd := parser.NewCommand("pack", "builds a container image from files")
	packEntries := packCmd.StringList("e", "entry", &argparse.Options{Required: true, Help: "name=path pair, may be repeated"})
	packOutput := packCmd.File("o", "output", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644,
		&argparse.Options{Required: true, Help: "image file to create"})
	packPad := packCmd.Int("p", "pad", &argparse.Options{Default: 0, Help: "pad the image with 0xff up to this size"})

	unpackCmd := parser.NewCommand("unpack", "extracts entries of a container image into a directory")
	unpackInput := unpackCmd.String("i", "input", &argparse.Options{Required: true, Help: "image file"})
	unpackDir := unpackCmd.String("o", "output", &argparse.Options{Required: true, Help: "output directory"})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	level := "warning"
	if *verbose {
		level = "debug"
	}
	if _, err := common.ConfigureLogging("", level); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	switch {
	case infoCmd.Happened():
		runInfo(dev)
	case listCmd.Happened():
		runList(dev)
	case getCmd.Happened():
		runGet(dev, *getName, *getOffset, *getLength, *getHex)
	case setCmd.Happened():
		runSet(dev, *setName, *setOffset, *setValue, *setFile)
	case rmCmd.Happened():
		runRemove(dev, *rmName)
	case formatCmd.Happened():
		runFormat(dev)
	case packCmd.Happened():
		runPack(*packEntries, packOutput, *packPad)
	case unpackCmd.Happened():
		runUnpack(*unpackInput, *unpackDir)
	}
}
