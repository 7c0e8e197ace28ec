package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

type fakeRegisterDevice struct {
	regs    map[byte]byte
	writes  []sensors.RegisterValue
	reinits int
	readErr error
}

func newFakeRegisterDevice() *fakeRegisterDevice {
	return &fakeRegisterDevice{regs: map[byte]byte{0x00: 0xA0, 0x3D: 0x0C, 0x39: 0x05}}
}

func (f *fakeRegisterDevice) ReadRegister(addr byte) (byte, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.regs[addr], nil
}

func (f *fakeRegisterDevice) WriteRegister(addr, value byte) error {
	f.regs[addr] = value
	f.writes = append(f.writes, sensors.RegisterValue{Address: addr, Value: value})
	return nil
}

func (f *fakeRegisterDevice) DumpRegisters() ([]sensors.RegisterValue, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return []sensors.RegisterValue{{Address: 0x00, Value: 0xA0}, {Address: 0x3D, Value: f.regs[0x3D]}}, nil
}

func (f *fakeRegisterDevice) RegisterMap() []sensors.RegisterInfo { return sensors.RegisterMap() }

func (f *fakeRegisterDevice) Reinit() error {
	f.reinits++
	return nil
}

func (f *fakeRegisterDevice) ReadSample() (imu.Sample, error) {
	if f.readErr != nil {
		return imu.Sample{}, f.readErr
	}
	return imu.Sample{Source: "bno055", TempC: 23}, nil
}

func newTestRegisterHandler(t *testing.T, dev RegisterDevice, ranges string) *RegisterDebugHandler {
	t.Helper()
	h, err := NewRegisterDebugHandler(dev, ranges)
	require.NoError(t, err)
	h.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return h
}

func TestRegisterDebugRead(t *testing.T) {
	h := newTestRegisterHandler(t, newFakeRegisterDevice(), "")

	resp := h.handle(RegisterDebugCmd{Action: "read", Address: "0x3d"})
	assert.Equal(t, "register_data", resp.Type)
	assert.Equal(t, "0x3D", resp.Address)
	assert.Equal(t, "0x0C", resp.Value)

	resp = h.handle(RegisterDebugCmd{Action: "read", Address: "zz"})
	assert.Equal(t, "error", resp.Type)

	resp = h.handle(RegisterDebugCmd{Action: "read"})
	assert.Equal(t, "missing addr field", resp.Message)
}

func TestRegisterDebugWriteRanges(t *testing.T) {
	dev := newFakeRegisterDevice()
	h := newTestRegisterHandler(t, dev, "0x3D-0x3E, 0x07")

	resp := h.handle(RegisterDebugCmd{Action: "write", Address: "0x3E", Value: "0x01"})
	assert.Equal(t, "write successful", resp.Message)

	resp = h.handle(RegisterDebugCmd{Action: "write", Address: "0x07", Value: "0x00"})
	assert.Equal(t, "register_data", resp.Type)

	resp = h.handle(RegisterDebugCmd{Action: "write", Address: "0x3F", Value: "0x20"})
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "register 0x3F not in allowed write ranges", resp.Message)

	assert.Equal(t, []sensors.RegisterValue{{Address: 0x3E, Value: 0x01}, {Address: 0x07, Value: 0x00}}, dev.writes)
}

func TestRegisterDebugWritesRefusedByDefault(t *testing.T) {
	dev := newFakeRegisterDevice()
	h := newTestRegisterHandler(t, dev, "")

	resp := h.handle(RegisterDebugCmd{Action: "write", Address: "0x3D", Value: "0x00"})
	assert.Equal(t, "error", resp.Type)
	assert.Empty(t, dev.writes)
}

func TestRegisterDebugBadRanges(t *testing.T) {
	_, err := NewRegisterDebugHandler(newFakeRegisterDevice(), "0x40-0x10")
	assert.Error(t, err)
}

func TestRegisterDebugReadAllInitExport(t *testing.T) {
	dev := newFakeRegisterDevice()
	h := newTestRegisterHandler(t, dev, "")

	resp := h.handle(RegisterDebugCmd{Action: "read_all"})
	assert.Equal(t, map[string]string{"0x00": "0xA0", "0x3D": "0x0C"}, resp.Registers)

	resp = h.handle(RegisterDebugCmd{Action: "init"})
	assert.Equal(t, "initialized", resp.Status)
	assert.Equal(t, 1, dev.reinits)

	resp = h.handle(RegisterDebugCmd{Action: "export_config"})
	assert.Equal(t, "bno055_20260304_050607_registers.json", resp.Filename)
	var file RegisterConfigFile
	require.NoError(t, json.Unmarshal([]byte(resp.Config), &file))
	assert.Equal(t, 1, file.Version)
	assert.Equal(t, "0x0C", file.Registers["0x3D"])

	dev.readErr = errors.New("nack")
	resp = h.handle(RegisterDebugCmd{Action: "read_all"})
	assert.Equal(t, "error", resp.Type)

	resp = h.handle(RegisterDebugCmd{Action: "frobnicate"})
	assert.Equal(t, "unknown action: frobnicate", resp.Message)
}

func TestRegisterDebugWebSocket(t *testing.T) {
	h := newTestRegisterHandler(t, newFakeRegisterDevice(), "0x3D")
	srv := httptest.NewServer(http.HandlerFunc(h.HandleRegisterDebugWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var resp RegisterResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "register_map", resp.Type)
	assert.NotEmpty(t, resp.RegisterMap)

	require.NoError(t, conn.WriteJSON(RegisterDebugCmd{Action: "read", Address: "0x00"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "0xA0", resp.Value)

	require.NoError(t, conn.WriteJSON(RegisterDebugCmd{Action: "write", Address: "0x3D", Value: "0x00"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "write successful", resp.Message)
}

func TestHandleSampleData(t *testing.T) {
	dev := newFakeRegisterDevice()
	h := newTestRegisterHandler(t, dev, "")

	rec := httptest.NewRecorder()
	h.HandleSampleData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var s imu.Sample
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 23.0, s.TempC)

	dev.readErr = errors.New("nack")
	rec = httptest.NewRecorder()
	h.HandleSampleData(rec, httptest.NewRequest(http.MethodGet, "/api/imu", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "nack")
}
