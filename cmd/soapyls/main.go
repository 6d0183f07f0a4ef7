// Command soapyls lists the SoapySDR devices reachable from this host:
// locally attached hardware through driver enumeration and remote servers
// through DNS-SD discovery.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rjboer/soapyrx/internal/discovery"
	"github.com/rjboer/soapyrx/internal/sdr"
)

func main() {
	timeout := flag.Int("timeout", 5, "mDNS browse timeout in seconds")
	service := flag.String("service", discovery.DefaultService, "DNS-SD service to browse")
	local := flag.Bool("local", true, "enumerate locally attached devices")
	remote := flag.Bool("remote", true, "browse for remote SoapySDR servers")
	flag.Parse()

	if *local {
		listLocal()
	}
	if *remote {
		listRemote(*service, time.Duration(*timeout)*time.Second)
	}
}

func listLocal() {
	fmt.Println("===============================================================")
	fmt.Println(" Local SoapySDR Devices")
	fmt.Println("===============================================================")

	devices := sdr.Enumerate()
	if len(devices) == 0 {
		fmt.Println(" <none>")
		return
	}

	for i, args := range devices {
		fmt.Printf(" Device #%d\n", i+1)
		fmt.Println("---------------------------------------------------------------")
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("   %-12s: %s\n", k, args[k])
		}
		fmt.Println()
	}
}

func listRemote(service string, timeout time.Duration) {
	fmt.Println("===============================================================")
	fmt.Printf(" Remote SoapySDR Servers (%s)\n", service)
	fmt.Println("===============================================================")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	servers, err := discovery.Browse(ctx, service, timeout)
	duration := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery error: %v\n", err)
		os.Exit(1)
	}

	if len(servers) == 0 {
		fmt.Printf(" No servers found (%s)\n", duration.Truncate(time.Millisecond))
		return
	}

	fmt.Printf(" Discovered %d server(s) in %s\n", len(servers), duration.Truncate(time.Millisecond))
	for i, s := range servers {
		fmt.Printf(" Server #%d\n", i+1)
		fmt.Println("---------------------------------------------------------------")
		fmt.Printf("   Instance : %s\n", s.Instance)
		fmt.Printf("   Hostname : %s\n", s.Hostname)
		fmt.Printf("   Port     : %d\n", s.Port)
		fmt.Println("   Addresses:")
		if len(s.Addresses) == 0 {
			fmt.Println("     <none>")
		} else {
			for _, ip := range s.Addresses {
				fmt.Printf("     - %s\n", ip.String())
			}
		}
		if args := s.DeviceArgs(); args != "" {
			fmt.Printf("   Selector : %s\n", args)
		}
		fmt.Println()
	}
}
