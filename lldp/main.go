package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"l2/lldp/api"
	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/server"
	"l2/lldp/utils"
	"l2/utils/logging"

	"gopkg.in/yaml.v3"
)

const defaultTicks = 100

func main() {
	fmt.Println("Starting lldp simulator")
	scenarioFile := flag.String("scenario", "./scenarios/chain.yaml", "Scenario file")
	ticks := flag.Int("ticks", 0, "Ticks to run, overrides the scenario")
	pcapFile := flag.String("pcap", "", "Write every frame sent to this pcap file")
	dbFile := flag.String("db", "", "sqlite database for port config and the neighbor snapshot")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	fmt.Println("Start logger")
	logger, err := logging.NewLogger("lldpd", "LLDP", *logLevel)
	if err != nil {
		fmt.Println("Failed to start the logger. Nothing will be logged...", err)
	}
	debug.SetLogger(logger)
	defer debug.Logger.Sync()
	debug.Logger.Info("Started the logger successfully.")

	sc, err := config.LoadScenario(*scenarioFile)
	if err != nil {
		debug.Logger.Err(fmt.Sprintln("Cannot load scenario", err))
		os.Exit(1)
	}
	n := *ticks
	if n == 0 {
		n = sc.Ticks
	}
	if n == 0 {
		n = defaultTicks
	}

	debug.Logger.Info("Starting LLDP server....")
	lldpSvr, err := server.LLDPNewServer(sc)
	if err != nil {
		debug.Logger.Err(fmt.Sprintln("Cannot build scenario", err))
		os.Exit(1)
	}
	// Start Api Layer
	api.Init(lldpSvr)

	if *pcapFile != "" {
		f, err := os.Create(*pcapFile)
		if err != nil {
			debug.Logger.Err(fmt.Sprintln("Cannot create capture", err))
			os.Exit(1)
		}
		defer f.Close()
		cw, err := packet.NewCaptureWriter(f, time.Now().Truncate(time.Second))
		if err != nil {
			debug.Logger.Err(fmt.Sprintln("Cannot write capture header", err))
			os.Exit(1)
		}
		lldpSvr.SetCapture(cw)
	}

	if err := lldpSvr.LLDPStartServer(*dbFile); err != nil {
		debug.Logger.Err(fmt.Sprintln("Cannot start lldp server", err))
		os.Exit(1)
	}
	lldpSvr.OSSignalHandle()

	ran := lldpSvr.Run(n)
	debug.Logger.Info(fmt.Sprintf("Ran %d of %d ticks", ran, n))

	if err := lldpSvr.Stop(); err != nil {
		debug.Logger.Err(fmt.Sprintln("Cannot save neighbors", err))
	}

	ports := 0
	for _, d := range sc.Devices {
		ports += d.Ports
	}
	_, _, states := api.GetIntfStates(0, ports)
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(states); err != nil {
		debug.Logger.Err(fmt.Sprintln("Cannot print port states", err))
	}
	enc.Close()
}
