// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

// RunMockConsole prints a synthetic pose every interval, without MQTT or
// hardware.
func RunMockConsole(interval time.Duration) error {
	src := orientation.NewMockSource()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		pose, err := src.Next()
		if err != nil {
			return err
		}
		fmt.Println(formatPose(pose))
	}
	return nil
}
