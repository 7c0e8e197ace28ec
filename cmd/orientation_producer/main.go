// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "publish a synthetic pose instead of reading the BNO055")
	flag.Parse()

	log.Println("starting orientation-computer producer (BNO055 → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunOrientationProducer(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
