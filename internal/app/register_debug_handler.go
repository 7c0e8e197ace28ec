// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// RegisterDevice is what the register debug tool needs from the sensor.
type RegisterDevice interface {
	ReadRegister(addr byte) (byte, error)
	WriteRegister(addr, value byte) error
	DumpRegisters() ([]sensors.RegisterValue, error)
	RegisterMap() []sensors.RegisterInfo
	Reinit() error
	ReadSample() (imu.Sample, error)
}

// RegisterDebugCmd is any request from the browser. Action is one of
// "get_map", "read", "read_all", "write", "init", "export_config".
type RegisterDebugCmd struct {
	Action  string `json:"action"`
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

const registerDevice = "bno055"

// RegisterDebugHandler serves the register debug websocket. Writes are
// refused unless the address is inside one of the allowed ranges.
type RegisterDebugHandler struct {
	dev     RegisterDevice
	allowed config.RegisterRanges
	now     func() time.Time
}

// NewRegisterDebugHandler parses allowedRanges (REGISTER_DEBUG_ALLOWED_RANGES).
func NewRegisterDebugHandler(dev RegisterDevice, allowedRanges string) (*RegisterDebugHandler, error) {
	allowed, err := config.ParseRegisterRanges(allowedRanges)
	if err != nil {
		return nil, err
	}
	return &RegisterDebugHandler{dev: dev, allowed: allowed, now: time.Now}, nil
}

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func (h *RegisterDebugHandler) HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Send register map on connection
	if err := conn.WriteJSON(h.registerMap()); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterDebugCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(h.handle(cmd)); err != nil {
			log.Printf("register_debug: write error: %v", err)
			return
		}
	}
}

func (h *RegisterDebugHandler) handle(cmd RegisterDebugCmd) RegisterResponse {
	switch cmd.Action {
	case "get_map":
		return h.registerMap()
	case "read":
		return h.handleRead(cmd)
	case "read_all":
		return h.handleReadAll()
	case "write":
		return h.handleWrite(cmd)
	case "init":
		return h.handleInit()
	case "export_config":
		return h.handleExportConfig()
	case "":
		return errorResponse("missing or invalid action field")
	}
	return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
}

func (h *RegisterDebugHandler) handleRead(cmd RegisterDebugCmd) RegisterResponse {
	if cmd.Address == "" {
		return errorResponse("missing addr field")
	}
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}

	value, err := h.dev.ReadRegister(addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}

	return RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: h.now().Format(time.RFC3339),
	}
}

func (h *RegisterDebugHandler) handleReadAll() RegisterResponse {
	regs, err := h.dev.DumpRegisters()
	if len(regs) == 0 && err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		Registers: hexRegisters(regs),
		Timestamp: h.now().Format(time.RFC3339),
	}
	if err != nil {
		resp.Message = fmt.Sprintf("some registers failed: %v", err)
	}
	return resp
}

func (h *RegisterDebugHandler) handleWrite(cmd RegisterDebugCmd) RegisterResponse {
	if cmd.Address == "" || cmd.Value == "" {
		return errorResponse("missing addr or value field")
	}
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}

	if !h.allowed.Allows(addr) {
		return errorResponse(fmt.Sprintf("register 0x%02X not in allowed write ranges", addr))
	}
	if err := h.dev.WriteRegister(addr, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}

	return RegisterResponse{
		Type:      "register_data",
		Device:    registerDevice,
		Address:   hexByte(addr),
		Value:     hexByte(value),
		Timestamp: h.now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (h *RegisterDebugHandler) handleInit() RegisterResponse {
	if err := h.dev.Reinit(); err != nil {
		return errorResponse(fmt.Sprintf("reinit error: %v", err))
	}
	return RegisterResponse{
		Type:    "status",
		Device:  registerDevice,
		Status:  "initialized",
		Message: "BNO055 reinitialized successfully",
	}
}

func (h *RegisterDebugHandler) handleExportConfig() RegisterResponse {
	regs, err := h.dev.DumpRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	now := h.now()
	configJSON, err := json.Marshal(RegisterConfigFile{
		Version:   1,
		Device:    registerDevice,
		Timestamp: now.Format(time.RFC3339),
		Registers: hexRegisters(regs),
	})
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	return RegisterResponse{
		Type:     "export_config",
		Device:   registerDevice,
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("%s_%s_registers.json", registerDevice, now.Format("20060102_150405")),
	}
}

func (h *RegisterDebugHandler) registerMap() RegisterResponse {
	return RegisterResponse{
		Type:        "register_map",
		Device:      registerDevice,
		RegisterMap: h.dev.RegisterMap(),
	}
}

// HandleSampleData serves one live sample via REST.
func (h *RegisterDebugHandler) HandleSampleData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sample, err := h.dev.ReadSample()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(sample)
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

func parseHexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

func hexRegisters(regs []sensors.RegisterValue) map[string]string {
	out := make(map[string]string, len(regs))
	for _, r := range regs {
		out[hexByte(r.Address)] = hexByte(r.Value)
	}
	return out
}
