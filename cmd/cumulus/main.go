package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/napalm-go/cumulus"
	"github.com/napalm-go/cumulus/domain/entities"
	"github.com/napalm-go/cumulus/infrastructure/config"
	"github.com/napalm-go/cumulus/infrastructure/transport"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <operation>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Operations:\n")
	fmt.Fprintf(os.Stderr, "  facts interfaces interfaces-ip bgp lldp lldp-detail arp mac\n")
	fmt.Fprintf(os.Stderr, "  vlans environment ntp ping diff commit discard rollback\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = printUsage
	yamlFile := flag.String("config", "config.yaml", "YAML inventory file")
	host := flag.String("target", "", "Switch target (must match a device host in YAML, required)")
	verbose := flag.Bool("verbose", false, "Enable debug logs")
	load := flag.String("load", "", "Candidate configuration file for diff/commit")
	replace := flag.Bool("replace", false, "Stage the candidate as a full replacement")
	write := flag.Bool("write", false, "Apply the candidate (diff-only without it)")
	dest := flag.String("dest", "", "Ping destination (ping operation)")
	flag.Parse()

	fmt.Printf("cumulus %s (built %s)\n", version, buildTime)

	if *host == "" {
		fmt.Fprintf(os.Stderr, "Error: the --target parameter is required. Specify the switch with --target <host>\n")
		flag.Usage()
		os.Exit(1)
	}
	op := flag.Arg(0)
	if op == "" {
		fmt.Fprintf(os.Stderr, "Error: an operation is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Determine the inventory file path
	configPath := *yamlFile
	if *yamlFile == "config.yaml" {
		// If the default path is not overridden, search in specific locations
		possiblePaths := []string{
			filepath.Join(".", "config.yaml"), // Local directory
		}
		if runtime.GOOS == "linux" {
			if userConfigDir, err := os.UserConfigDir(); err == nil {
				possiblePaths = append(possiblePaths, filepath.Join(userConfigDir, "cumulus", "config.yaml"))
			}
			possiblePaths = append(possiblePaths, "/etc/cumulus-driver/config.yaml")
		}
		found := false
		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				found = true
				break
			}
		}
		if !found {
			log.Fatal("Error: No config.yaml file found in ./, ~/.config/cumulus/, or /etc/cumulus-driver/")
		}
	}

	inv, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer transport.CloseAll()

	var device *entities.DeviceConfig
	for i := range inv.Devices {
		if inv.Devices[i].Host == *host {
			device = &inv.Devices[i]
			break
		}
	}
	if device == nil {
		fmt.Fprintf(os.Stderr, "Error: target %s not registered in the YAML inventory\n", *host)
		os.Exit(1)
	}

	opts := []cumulus.Option{cumulus.WithConfig(*device)}
	if *verbose {
		opts = append(opts, cumulus.WithLogger(cumulus.NewLogger(os.Stderr, cumulus.LevelDebug)))
	}
	if *write {
		opts = append(opts, cumulus.WithForce())
	}
	d := cumulus.NewDriver(device.Host, opts...)
	if err := d.Open(); err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	if err := run(d, op, *load, *replace, *write, *dest); err != nil {
		log.Fatal(err)
	}
}

func run(d *cumulus.Driver, op, load string, replace, write bool, dest string) error {
	switch op {
	case "facts":
		return dump(d.GetFacts())
	case "interfaces":
		return dump(d.GetInterfaces())
	case "interfaces-ip":
		return dump(d.GetInterfacesIP())
	case "bgp":
		return dump(d.GetBGPNeighbors())
	case "lldp":
		return dump(d.GetLLDPNeighbors())
	case "lldp-detail":
		return dump(d.GetLLDPNeighborsDetail(""))
	case "arp":
		return dump(d.GetARPTable())
	case "mac":
		return dump(d.GetMACAddressTable())
	case "vlans":
		return dump(d.GetVLANs())
	case "environment":
		return dump(d.GetEnvironment())
	case "ntp":
		return dump(d.GetNTPStats())
	case "ping":
		if dest == "" {
			return fmt.Errorf("ping needs --dest")
		}
		return dump(d.Ping(entities.PingRequest{Destination: dest}))
	case "diff", "commit":
		if load == "" {
			return fmt.Errorf("%s needs --load <file>", op)
		}
		data, err := os.ReadFile(load)
		if err != nil {
			return err
		}
		loadFn := d.LoadMergeCandidate
		if replace {
			loadFn = d.LoadReplaceCandidate
		}
		if err := loadFn(string(data)); err != nil {
			return err
		}
		diff, err := d.CompareConfig()
		if err != nil {
			return err
		}
		fmt.Println(diff)
		if op == "commit" && write {
			return d.CommitConfig()
		}
		return d.DiscardConfig()
	case "discard":
		return d.DiscardConfig()
	case "rollback":
		return d.RollbackConfig()
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
}

func dump[T any](value T, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
