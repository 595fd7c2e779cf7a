// Command stl2captions reads an EBU-STL file and prints its captions
// as JSON, one object per line, to stdout. Its "validate" subcommand
// reads the file and reports diagnostics without dumping captions.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/asticode/go-astikit"

	"github.com/hauph/ebustl-utils"
)

var (
	inputPath            = flag.String("i", "", "the input .stl path")
	ignoreProgrammeStart = flag.Bool("ignore-programme-start", false, "treat GSI's start-of-programme timecode as zero")
)

func main() {
	// cmd picks which of this tool's two subcommands runs, the same way
	// the teacher's cmd/astisub switches on astikit.FlagCmd().
	cmd := astikit.FlagCmd()
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Use -i to provide an input .stl path")
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("%s while opening %s", err, *inputPath)
	}
	defer in.Close()

	var opts []ebustl.ReaderOption
	if *ignoreProgrammeStart {
		opts = append(opts, ebustl.WithIgnoreProgrammeStart())
	}

	captions, diags, err := ebustl.ReadSTL(in, opts...)
	if err != nil {
		log.Fatalf("%s while reading %s", err, *inputPath)
	}
	for _, d := range diags {
		log.Printf("%s: %s", d.Severity, d.Message)
	}

	switch cmd {
	case "validate":
		log.Printf("%d caption(s), %d diagnostic(s)", len(captions), len(diags))
	default:
		enc := json.NewEncoder(os.Stdout)
		for _, c := range captions {
			if err := enc.Encode(c); err != nil {
				log.Fatalf("%s while encoding caption", err)
			}
		}
	}
}
