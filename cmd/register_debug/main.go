// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/orientation_computer/internal/app"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	port := flag.Int("port", 8081, "HTTP port")
	debug := flag.Bool("debug", false, "log every init step")
	flag.Parse()

	log.Println("starting BNO055 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Initializing BNO055...")
	src, err := sensors.Open(cfg, app.NewLogger(*debug))
	if err != nil {
		log.Fatalf("failed to open BNO055: %v", err)
	}
	defer src.Close()

	h, err := app.NewRegisterDebugHandler(src, cfg.RegisterDebugAllowedRanges)
	if err != nil {
		log.Fatalf("invalid REGISTER_DEBUG_ALLOWED_RANGES: %v", err)
	}
	if cfg.RegisterDebugAllowedRanges == "" {
		log.Println("Warning: REGISTER_DEBUG_ALLOWED_RANGES is empty, register writes are disabled")
	}

	http.HandleFunc("/ws", h.HandleRegisterDebugWS)
	http.HandleFunc("/ws/calibration", app.NewCalibrationMonitor(src.Dev()).HandleCalibrationWS)

	// API endpoint for live sensor data
	http.HandleFunc("/api/imu", h.HandleSampleData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
