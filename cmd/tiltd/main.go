// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/inertialab/tiltd/internal/app"
	"github.com/inertialab/tiltd/internal/config"
)

func main() {
	configPath := flag.String("config", "./tiltd.yaml", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunTiltd(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
