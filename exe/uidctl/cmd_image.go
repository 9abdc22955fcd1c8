package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/viert/uidstore/container"
	"github.com/viert/uidstore/errdefs"
	"github.com/viert/uidstore/index"
)

// buildImage encodes name=path pairs into a container, padded with
// erased-flash bytes up to pad
func buildImage(pairs []string, pad int) ([]byte, error) {
	ix := index.New()
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "entry %q is not name=path", pair)
		}
		data, err := os.ReadFile(parts[1])
		if err != nil {
			return nil, err
		}
		if err := ix.Insert(parts[0], data); err != nil {
			return nil, errors.Wrapf(err, "entry %s", parts[0])
		}
	}

	buf, err := container.Encode(ix)
	if err != nil {
		return nil, err
	}
	if pad > 0 {
		if pad < len(buf) {
			return nil, errors.Wrapf(errdefs.ErrOutOfMemory, "container of %d bytes does not fit %d", len(buf), pad)
		}
		buf = append(buf, bytes.Repeat([]byte{0xff}, pad-len(buf))...)
	}
	return buf, nil
}

// extractImage writes every entry of the container in buf to a file in dir
func extractImage(buf []byte, dir string) (int, error) {
	ix, err := container.Decode(buf)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	for _, e := range ix.Entries() {
		if e.Name == "." || e.Name == ".." || strings.ContainsAny(e.Name, `/\`) {
			return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "entry name %q can not be used as a filename", e.Name)
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name), e.Data, 0644); err != nil {
			return 0, err
		}
	}
	return ix.Count(), nil
}

func runPack(pairs []string, output *os.File, pad int) {
	defer output.Close()

	buf, err := buildImage(pairs, pad)
	if err != nil {
		log.Fatalf("error building image: %s", err)
	}
	if _, err := output.Write(buf); err != nil {
		log.Fatalf("error writing image: %s", err)
	}
	fmt.Printf("Image %s: %d entries, %s\n", output.Name(), len(pairs), humanize.IBytes(uint64(len(buf))))
}

func runUnpack(input string, dir string) {
	buf, err := os.ReadFile(input)
	if err != nil {
		log.Fatalf("error reading image: %s", err)
	}
	n, err := extractImage(buf, dir)
	if err != nil {
		log.Fatalf("error unpacking image: %s", err)
	}
	fmt.Printf("%d entries extracted to %s\n", n, dir)
}
