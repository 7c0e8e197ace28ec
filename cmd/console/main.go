// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/orientation_computer/internal/app"
)

func main() {
	interval := flag.Duration("interval", 100*time.Millisecond, "print interval")
	flag.Parse()

	log.Println("starting orientation-computer (mock console)")

	if err := app.RunMockConsole(*interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
