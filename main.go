// soapyrx probe: a quick check that a SoapySDR device can be opened and
// reports its stream capabilities. The capture pipeline lives in
// cmd/soapyrx; this entry point only inspects hardware.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rjboer/soapyrx/internal/sdr"
)

// Swappable for tests.
var (
	openDevice = sdr.Open
	enumerate  = sdr.Enumerate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("soapyrx", flag.ContinueOnError)
	device := fs.String("device", "", "SoapySDR device selector, e.g. driver=rtlsdr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	selector := *device
	if selector == "" {
		selector = getenv("SOAPYRX_DEVICE")
	}
	if selector == "" {
		return printEnumeration(out)
	}
	return probe(out, selector)
}

func printEnumeration(out io.Writer) error {
	devices := enumerate()
	if len(devices) == 0 {
		fmt.Fprintln(out, "no SoapySDR devices found")
		return nil
	}
	for i, args := range devices {
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(out, "device %d:\n", i)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s=%s\n", k, args[k])
		}
	}
	return nil
}

func probe(out io.Writer, selector string) error {
	dev, err := openDevice(selector)
	if err != nil {
		return fmt.Errorf("open %q: %w", selector, err)
	}
	defer dev.Close()

	native, fullScale := dev.NativeStreamFormat()
	fmt.Fprintf(out, "device: %s\n", selector)
	fmt.Fprintf(out, "native format: %s (full scale %g)\n", native, fullScale)
	fmt.Fprintln(out, "supported formats:")
	for _, f := range dev.StreamFormats() {
		fmt.Fprintf(out, "  %s (%d bytes/sample)\n", f, dev.FormatSize(f))
	}
	return nil
}
