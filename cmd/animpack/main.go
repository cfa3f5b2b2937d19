// Package main provides animpack, which packs authoring YAML into the binary
// .sheet/.anim files the viewer loads, and optionally pushes them to running
// viewers over MQTT.
//
// Usage:
//
//	go run ./cmd/animpack [flags]
//
// Flags:
//
//	--in <glob>        Authoring files to pack (default data/authoring/*.yaml)
//	--out <dir>        Output directory (default data/sprites)
//	--workers <n>      Parallel jobs (default: number of CPUs)
//	--publish          Publish packed definitions to the MQTT broker
//	--config <path>    Viewer config used for broker/topic defaults
//	--broker <url>     Override remote.broker
//	--topic <topic>    Override remote.topic
//	--dump <file>      Print a packed .anim or .sheet file as YAML and exit
//	--verbose          Enable verbose logging
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/spriteanim/pkg/config"
	"github.com/decker502/spriteanim/pkg/remote"
)

var (
	inFlag      = flag.String("in", "data/authoring/*.yaml", "authoring files to pack (glob)")
	outFlag     = flag.String("out", "data/sprites", "output directory")
	workersFlag = flag.Int("workers", 0, "parallel jobs (0 = number of CPUs)")
	publishFlag = flag.Bool("publish", false, "publish packed definitions over MQTT")
	configFlag  = flag.String("config", config.DefaultConfigPath, "viewer config for broker/topic defaults")
	brokerFlag  = flag.String("broker", "", "MQTT broker URL (overrides config)")
	topicFlag   = flag.String("topic", "", "base topic (overrides config)")
	clientFlag  = flag.String("client-id", "spriteanim-animpack", "MQTT client ID")
	dumpFlag    = flag.String("dump", "", "print a packed file as YAML and exit")
	verboseFlag = flag.Bool("verbose", false, "enable verbose logging")
)

func main() {
	flag.Parse()
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}
	os.Exit(run())
}

func run() int {
	if *dumpFlag != "" {
		if err := dump(os.Stdout, *dumpFlag); err != nil {
			fmt.Fprintf(os.Stderr, "animpack: %v\n", err)
			return 1
		}
		return 0
	}

	files, err := filepath.Glob(*inFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "animpack: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "animpack: no files match %s\n", *inFlag)
		return 2
	}

	p := newPacker(*workersFlag)
	defer p.close()

	result, packErr := p.pack(files, *outFlag)
	fmt.Printf("packed %d sprite sheets and %d animations from %d files into %s\n",
		len(result.Sheets), len(result.Animations), len(files), *outFlag)
	for _, path := range result.Written {
		log.Printf("[animpack] wrote %s", path)
	}

	exit := 0
	if packErr != nil {
		fmt.Fprintf(os.Stderr, "animpack: %v\n", packErr)
		exit = 1
	}

	if *publishFlag {
		if err := publishAll(result); err != nil {
			fmt.Fprintf(os.Stderr, "animpack: %v\n", err)
			exit = 1
		}
	}
	return exit
}

// publishAll connects to the broker configured by flags (falling back to the
// viewer config) and publishes result.
func publishAll(result *packed) error {
	cfg := config.DefaultAppConfig()
	if loaded, err := config.LoadAppConfig(*configFlag); err == nil {
		cfg = loaded
	} else {
		log.Printf("[animpack] using default remote settings: %v", err)
	}

	rc := remote.Config{
		Broker:   cfg.Remote.Broker,
		ClientID: *clientFlag,
		Topic:    cfg.Remote.Topic,
	}
	if *brokerFlag != "" {
		rc.Broker = *brokerFlag
	}
	if *topicFlag != "" {
		rc.Topic = *topicFlag
	}

	client := remote.NewClient(rc, nil)
	if err := remote.Connect(client, 0); err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := publish(remote.NewPublisher(client, rc.Topic), result); err != nil {
		return err
	}
	fmt.Printf("published %d definitions to %s on %s\n", len(result.Sheets)+len(result.Animations), rc.Topic, rc.Broker)
	return nil
}
