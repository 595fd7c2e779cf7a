// Command ts2stl demuxes the teletext PES stream out of an MPEG-TS
// capture and writes the subtitle page it carries as an EBU-STL file,
// following the same stdlib flag + astikit.FlagCmd CLI shape as the
// teacher's cmd/astisub. Its "probe" subcommand demuxes and reports
// what it found without requiring -o or writing a file, for locating
// the right -pid/-p before committing to a conversion.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/asticode/go-astikit"
	"github.com/asticode/go-astits"

	"github.com/hauph/ebustl-utils"
)

var (
	inputPath  = flag.String("i", "", "the input .ts path")
	outputPath = flag.String("o", "", "the output .stl path")
	pid        = flag.Uint("pid", 0, "the teletext elementary stream PID (0: autodetect from the PMT)")
	page       = flag.Int("p", 0, "the teletext page number (0: first subtitle page seen)")
	reverse    = flag.Bool("r", false, "reverse each byte's bit order before decoding")
)

func main() {
	cmd := astikit.FlagCmd()
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("Use -i to provide an input .ts path")
	}
	if cmd != "probe" && *outputPath == "" {
		log.Fatal("Use -o to provide an output .stl path")
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("%s while opening %s", err, *inputPath)
	}
	defer in.Close()

	packets, err := demuxTeletext(in, uint16(*pid))
	if err != nil {
		log.Fatalf("%s while demuxing %s", err, *inputPath)
	}

	var aggOpts []ebustl.AggregatorOption
	if *page != 0 {
		aggOpts = append(aggOpts, ebustl.WithTeletextPage(*page))
	}
	if *reverse {
		aggOpts = append(aggOpts, ebustl.WithReverseBitOrder())
	}

	pages, diags, err := ebustl.DecodePackets(packets, aggOpts...)
	if err != nil {
		log.Fatalf("%s while decoding teletext packets", err)
	}
	for _, d := range diags {
		log.Printf("%s: %s", d.Severity, d.Message)
	}
	if len(pages) == 0 {
		log.Fatal("no subtitle pages found in the teletext stream")
	}

	if cmd == "probe" {
		log.Printf("%d teletext packet(s) demuxed, %d subtitle page(s) found", len(packets), len(pages))
		for _, p := range pages {
			log.Printf("page %d: %d row(s), onset %dus", p.PageNumber, len(p.Rows), p.OnsetUS)
		}
		return
	}

	captions := make([]ebustl.Caption, len(pages))
	for i, p := range pages {
		captions[i] = ebustl.BuildCaption(p)
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("%s while creating %s", err, *outputPath)
	}
	defer out.Close()

	if err := ebustl.WriteSTL(out, captions); err != nil {
		log.Fatalf("%s while writing %s", err, *outputPath)
	}
}

// demuxTeletext reads every PES packet on pid (or, if pid is 0, the
// first PID whose PMT stream type is private data, the stream type
// teletext is carried under) and turns its payload into TimedPacket
// values at 45 bytes apiece, in the on-wire form DecodePacket accepts.
func demuxTeletext(r *os.File, pid uint16) ([]ebustl.TimedPacket, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dmx := astits.New(ctx, r)

	var packets []ebustl.TimedPacket
	for {
		data, err := dmx.NextData()
		if err != nil {
			if err == astits.ErrNoMorePackets {
				break
			}
			return nil, err
		}

		if pid != 0 && data.PID != pid {
			continue
		}
		if data.PMT != nil && pid == 0 {
			for _, es := range data.PMT.ElementaryStreams {
				if es.StreamType == astits.StreamTypePrivateData {
					pid = es.ElementaryPID
					break
				}
			}
			continue
		}
		if data.PES == nil {
			continue
		}

		var pts int64
		if data.PES.Header.OptionalHeader != nil && data.PES.Header.OptionalHeader.PTS != nil {
			pts = data.PES.Header.OptionalHeader.PTS.Base * 1_000_000 / 90_000
		}

		payload := data.PES.Data
		if len(payload) < 2 {
			continue
		}
		// The payload is a data_identifier byte followed by 46-byte data
		// units (ETSI EN 300 472): data_unit_id, length, field-parity/
		// line-offset byte, framing code, 42-byte packet. Skip the
		// data_identifier and the first data_unit_id; each 45-byte chunk
		// then starts at a unit's length byte (DecodePacket strips its
		// first 3 bytes), and the next unit's data_unit_id is skipped
		// between chunks.
		payload = payload[2:]
		const stride = 45
		for off := 0; off+stride <= len(payload); off += stride + 1 {
			raw := make([]byte, stride)
			copy(raw, payload[off:off+stride])
			packets = append(packets, ebustl.TimedPacket{PTS: pts, Raw: raw})
		}
	}
	return packets, nil
}
