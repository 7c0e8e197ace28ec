// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// CalibrationReader reports the device's own calibration levels.
type CalibrationReader interface {
	CalibrationStatus() (bno055.Calibration, error)
}

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // next, cancel
}

type WSResponse struct {
	Type     string                 `json:"type"` // phase, progress, step, complete, error
	Phase    string                 `json:"phase,omitempty"`
	Progress float64                `json:"progress,omitempty"`
	Stats    map[string]interface{} `json:"stats,omitempty"`
	Results  interface{}            `json:"results,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

type calibrationPhase struct {
	name   string
	prompt string
	level  func(bno055.Calibration) uint8
}

// The BNO055 calibrates itself in NDOF mode; each phase just tells the user
// how to move and waits for that subsystem to reach level 3.
var calibrationPhases = []calibrationPhase{
	{"gyro", "Keep the device still", func(c bno055.Calibration) uint8 { return c.Gyro }},
	{"accel", "Hold the device still in six different positions, a few seconds each", func(c bno055.Calibration) uint8 { return c.Accel }},
	{"mag", "Move the device in a slow figure eight", func(c bno055.Calibration) uint8 { return c.Mag }},
	{"system", "Keep moving gently until fusion settles", func(c bno055.Calibration) uint8 { return c.System }},
}

var errCalibrationTimeout = errors.New("calibration phase timed out")

// CalibrationMonitor walks a user through the device's calibration phases.
// Nothing is written to the device or saved; the offsets stay in the part.
type CalibrationMonitor struct {
	dev          CalibrationReader
	clock        clock.Clock
	pollInterval time.Duration
	phaseTimeout time.Duration
}

// NewCalibrationMonitor polls dev every 200 ms and gives up on a phase
// after two minutes.
func NewCalibrationMonitor(dev CalibrationReader) *CalibrationMonitor {
	return &CalibrationMonitor{
		dev:          dev,
		clock:        clock.New(),
		pollInterval: 200 * time.Millisecond,
		phaseTimeout: 2 * time.Minute,
	}
}

// HandleCalibrationWS handles the WebSocket connection for calibration
func (m *CalibrationMonitor) HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := func(resp WSResponse) error { return conn.WriteJSON(resp) }
	phase := 0

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("calibration: websocket read error: %v", err)
			return
		}

		switch msg.Action {
		case "next":
			if phase >= len(calibrationPhases) {
				send(WSResponse{Type: "error", Message: "calibration already complete"})
				continue
			}
			if err := m.runPhase(calibrationPhases[phase], send); err != nil {
				send(WSResponse{Type: "error", Phase: calibrationPhases[phase].name, Message: err.Error()})
				continue
			}
			phase++
			if phase == len(calibrationPhases) {
				if err := m.complete(send); err != nil {
					send(WSResponse{Type: "error", Message: err.Error()})
				}
			}

		case "cancel":
			log.Printf("calibration: cancelled by user")
			return

		default:
			send(WSResponse{Type: "error", Message: fmt.Sprintf("unknown action: %s", msg.Action)})
		}
	}
}

// runPhase streams progress until the phase's subsystem is fully calibrated.
func (m *CalibrationMonitor) runPhase(p calibrationPhase, send func(WSResponse) error) error {
	if err := send(WSResponse{Type: "phase", Phase: p.name, Message: p.prompt}); err != nil {
		return err
	}

	deadline := m.clock.Now().Add(m.phaseTimeout)
	ticker := m.clock.Ticker(m.pollInterval)
	defer ticker.Stop()

	for {
		c, err := m.dev.CalibrationStatus()
		if err != nil {
			return fmt.Errorf("reading calibration status: %w", err)
		}
		level := p.level(c)
		if err := send(WSResponse{
			Type:     "progress",
			Phase:    p.name,
			Progress: float64(level) / 3,
			Stats:    calibrationStats(c),
		}); err != nil {
			return err
		}
		if level == 3 {
			log.Printf("calibration: %s calibrated", p.name)
			return send(WSResponse{Type: "step", Phase: p.name, Message: "calibrated"})
		}
		if !m.clock.Now().Before(deadline) {
			return errCalibrationTimeout
		}
		<-ticker.C
	}
}

func (m *CalibrationMonitor) complete(send func(WSResponse) error) error {
	c, err := m.dev.CalibrationStatus()
	if err != nil {
		return fmt.Errorf("reading calibration status: %w", err)
	}
	msg := "fully calibrated"
	if !c.FullyCalibrated() {
		msg = "calibration drifted, repeat the last phase"
	}
	return send(WSResponse{Type: "complete", Results: c, Message: msg})
}

func calibrationStats(c bno055.Calibration) map[string]interface{} {
	return map[string]interface{}{
		"sys":   c.System,
		"gyro":  c.Gyro,
		"accel": c.Accel,
		"mag":   c.Mag,
	}
}
