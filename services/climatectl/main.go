// Command climatectl queries and drives a climate controller over HTTP.
//
//	climatectl [-addr URL] status
//	climatectl [-addr URL] fan on|off
//	climatectl [-addr URL] lamp on|off
//	climatectl [-addr URL] watch
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/climate-controller/services/climatectl/client"
)

func main() {
	_ = godotenv.Load() // ignore missing file

	defaultAddr := os.Getenv("CLIMATE_CONTROLLER_URL")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:8080"
	}

	addr := flag.String("addr", defaultAddr, "controller base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	interval := flag.Duration("interval", 2*time.Second, "refresh interval for watch")
	flag.Usage = usage
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := client.New(*addr, *timeout)
	if err := run(ctx, c, flag.Args(), *interval); err != nil {
		log.Fatalf("climatectl: %v", err)
	}
}

func run(ctx context.Context, c *client.Client, args []string, interval time.Duration) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "status":
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(st)
		return nil
	case "fan", "lamp":
		if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
			return fmt.Errorf("usage: climatectl %s on|off", args[0])
		}
		st, err := c.Set(ctx, client.Actuator(args[0]), args[1] == "on")
		if err != nil {
			return err
		}
		printStatus(st)
		return nil
	case "watch":
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			st, err := c.Status(ctx)
			if err != nil {
				log.Printf("status error: %v", err)
			} else {
				printStatus(st)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printStatus(st client.Status) {
	if !st.SensorOK() {
		fmt.Printf("sensor: unavailable  fan: %s  lamp: %s\n", onOff(st.Fan), onOff(st.Lamp))
		return
	}
	fmt.Printf("temp: %.2f C  hum: %.2f %%  fan: %s  lamp: %s\n", st.Temp, st.Hum, onOff(st.Fan), onOff(st.Lamp))
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: climatectl [flags] status | fan on|off | lamp on|off | watch\n")
	flag.PrintDefaults()
}
