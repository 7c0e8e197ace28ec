package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
)

// climbingCalibration raises every level by one on each read.
type climbingCalibration struct {
	mu    sync.Mutex
	reads int
	err   error
}

func (c *climbingCalibration) CalibrationStatus() (bno055.Calibration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return bno055.Calibration{}, c.err
	}
	l := uint8(c.reads)
	if l > 3 {
		l = 3
	}
	c.reads++
	return bno055.Calibration{System: l, Gyro: l, Accel: l, Mag: l}, nil
}

type uncalibrated struct{}

func (uncalibrated) CalibrationStatus() (bno055.Calibration, error) {
	return bno055.Calibration{}, nil
}

// runWithMockClock runs fn while advancing mock until fn returns.
func runWithMockClock(t *testing.T, mock *clock.Mock, step time.Duration, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	for {
		select {
		case err := <-done:
			return err
		case <-time.After(time.Millisecond):
			mock.Add(step)
		}
	}
}

func TestCalibrationPhase(t *testing.T) {
	mock := clock.NewMock()
	m := NewCalibrationMonitor(&climbingCalibration{})
	m.clock = mock

	var got []WSResponse
	err := runWithMockClock(t, mock, m.pollInterval, func() error {
		return m.runPhase(calibrationPhases[0], func(r WSResponse) error {
			got = append(got, r)
			return nil
		})
	})
	require.NoError(t, err)

	require.Len(t, got, 6)
	assert.Equal(t, "phase", got[0].Type)
	assert.Equal(t, "Keep the device still", got[0].Message)
	for i, want := range []float64{0, 1.0 / 3, 2.0 / 3, 1} {
		assert.Equal(t, "progress", got[i+1].Type)
		assert.InDelta(t, want, got[i+1].Progress, 1e-9)
	}
	assert.Equal(t, WSResponse{Type: "step", Phase: "gyro", Message: "calibrated"}, got[5])
}

func TestCalibrationPhaseTimeout(t *testing.T) {
	mock := clock.NewMock()
	m := NewCalibrationMonitor(uncalibrated{})
	m.clock = mock
	m.phaseTimeout = time.Second

	err := runWithMockClock(t, mock, m.pollInterval, func() error {
		return m.runPhase(calibrationPhases[2], func(WSResponse) error { return nil })
	})
	assert.ErrorIs(t, err, errCalibrationTimeout)
}

func TestCalibrationReadError(t *testing.T) {
	m := NewCalibrationMonitor(&climbingCalibration{err: errors.New("nack")})
	err := m.runPhase(calibrationPhases[0], func(WSResponse) error { return nil })
	assert.ErrorContains(t, err, "nack")
}

func TestCalibrationWebSocket(t *testing.T) {
	dev := &climbingCalibration{reads: 3}
	m := NewCalibrationMonitor(dev)
	srv := httptest.NewServer(http.HandlerFunc(m.HandleCalibrationWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// Every subsystem already reads 3, so each phase is phase, progress, step.
	for _, p := range calibrationPhases {
		require.NoError(t, conn.WriteJSON(WSMessage{Action: "next"}))
		for _, typ := range []string{"phase", "progress", "step"} {
			var r WSResponse
			require.NoError(t, conn.ReadJSON(&r))
			assert.Equal(t, typ, r.Type)
			assert.Equal(t, p.name, r.Phase)
		}
	}
	var r WSResponse
	require.NoError(t, conn.ReadJSON(&r))
	assert.Equal(t, "complete", r.Type)
	assert.Equal(t, "fully calibrated", r.Message)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "next"}))
	require.NoError(t, conn.ReadJSON(&r))
	assert.Equal(t, "error", r.Type)
}
