package main

import (
	"flag"
	"fmt"
	"os"

	"homeboard/internal/di"
	"homeboard/internal/structures"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/homeboard.yaml", "path to the YAML config file")
	debug := flag.Bool("debug", false, "log to the console at debug level")
	flag.Parse()

	_, err := di.InitApp(&structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "homeboard: %v\n", err)
		return 1
	}
	return 0
}
