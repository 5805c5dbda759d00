package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gotick/host/serial"
	"gotick/telemetry"
)

var (
	device   = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud     = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose  = flag.Bool("verbose", false, "Print every tick report")
	interval = flag.Duration("stats", 5*time.Second, "Statistics print interval")
)

func main() {
	flag.Parse()

	fmt.Println("tickmon - hardware timer telemetry monitor")
	fmt.Printf("Listening on %s at %d baud...\n", *device, *baud)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	var (
		dec     telemetry.Decoder
		buf     [256]byte
		total   uint64
		dropped uint64
		haveSeq bool
		lastSeq uint8

		statStart = time.Now()
		statBase  uint64
	)

	for {
		n, err := port.Read(buf[:])
		if err != nil && !errors.Is(err, io.EOF) {
			// EOF is just a read timeout on an idle line; anything else is fatal
			fmt.Fprintf(os.Stderr, "Error: read failed: %v\n", err)
			os.Exit(1)
		}
		dec.Feed(buf[:n])

		for {
			report, ok := dec.Next()
			if !ok {
				break
			}
			total++

			// Sequence numbers are modulo 256; any gap means dropped frames
			if haveSeq {
				dropped += uint64(report.Seq - lastSeq - 1)
			}
			lastSeq = report.Seq
			haveSeq = true

			if *verbose {
				fmt.Printf("seq=%3d counter=%d target=%dHz\n",
					report.Seq, report.Counter, report.TargetHz)
			}
		}

		if elapsed := time.Since(statStart); elapsed >= *interval {
			rate := float64(total-statBase) / elapsed.Seconds()
			fmt.Printf("reports=%d rate=%.1f/s dropped=%d crc_errors=%d malformed=%d\n",
				total, rate, dropped, dec.CRCErrors, dec.Malformed)
			statBase = total
			statStart = time.Now()
		}
	}
}
