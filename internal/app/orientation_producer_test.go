package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/env"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

type published struct {
	topic string
	v     interface{}
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, v interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic, v})
	return nil
}

func (p *fakePublisher) topics() []string {
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.topic)
	}
	return out
}

type fakeSampleSource struct {
	sample imu.Sample
	err    error
}

func (f *fakeSampleSource) ReadSample() (imu.Sample, error) { return f.sample, f.err }

type fakeEnv struct {
	sample env.Sample
	err    error
}

func (f *fakeEnv) ReadEnv() (env.Sample, error) { return f.sample, f.err }

type fixedPose struct{ p orientation.Pose }

func (f fixedPose) Next() (orientation.Pose, error) { return f.p, nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SampleInterval = 100
	cfg.ConsoleLogInterval = 1000
	return cfg
}

func TestProducerTick(t *testing.T) {
	pub := &fakePublisher{}
	src := &fakeSampleSource{sample: imu.Sample{
		Source:      "bno055",
		Euler:       bno055.Vector{X: 5, Y: -3, Z: 370},
		Calibration: bno055.Calibration{System: 3, Gyro: 3, Accel: 2, Mag: 1},
		Status:      0x05,
		Error:       0x00,
		TempC:       24,
	}}
	e := &fakeEnv{sample: env.Sample{Source: "bmp280", PressureHPa: 1013}}
	p := &producer{cfg: testConfig(), pub: pub, imu: src, env: e}

	require.NoError(t, p.tick(time.Unix(100, 0)))
	assert.Equal(t, []string{"orientation/pose", "orientation/imu", "orientation/status", "orientation/env"}, pub.topics())

	assert.Equal(t, orientation.Pose{Roll: -3, Pitch: 5, Yaw: 10}, pub.msgs[0].v)
	assert.Equal(t, src.sample, pub.msgs[1].v)

	st := pub.msgs[2].v.(StatusMessage)
	assert.Equal(t, "sensor fusion running", st.StatusText)
	assert.Equal(t, "no error", st.ErrorText)
	assert.Equal(t, uint8(2), st.Calibration.Accel)
	assert.Equal(t, 24.0, st.TempC)

	assert.Equal(t, e.sample, pub.msgs[3].v)
}

func TestProducerTickErrors(t *testing.T) {
	t.Run("sensor read", func(t *testing.T) {
		pub := &fakePublisher{}
		p := &producer{cfg: testConfig(), pub: pub, imu: &fakeSampleSource{err: errors.New("nack")}}
		assert.Error(t, p.tick(time.Unix(0, 0)))
		assert.Empty(t, pub.msgs)
	})

	t.Run("env failure is not fatal", func(t *testing.T) {
		pub := &fakePublisher{}
		p := &producer{cfg: testConfig(), pub: pub, imu: &fakeSampleSource{}, env: &fakeEnv{err: errors.New("gone")}}
		require.NoError(t, p.tick(time.Unix(0, 0)))
		assert.Equal(t, []string{"orientation/pose", "orientation/imu", "orientation/status"}, pub.topics())
	})

	t.Run("publish", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		p := &producer{cfg: testConfig(), pub: pub, imu: &fakeSampleSource{}}
		assert.EqualError(t, p.tick(time.Unix(0, 0)), "broker down")
	})
}

func TestPoseFromSample(t *testing.T) {
	fused := imu.Sample{Status: 0x05, Euler: bno055.Vector{X: 1, Y: 2, Z: 3}, Accel: bno055.Vector{Z: 9.81}}
	assert.Equal(t, orientation.Pose{Roll: 2, Pitch: 1, Yaw: 3}, poseFromSample(fused))

	booting := imu.Sample{Status: 0x03, Accel: bno055.Vector{Y: 9.81}}
	p := poseFromSample(booting)
	assert.InDelta(t, 90.0, p.Roll, 1e-9)
	assert.InDelta(t, 0.0, p.Pitch, 1e-9)
}

func TestProducerMock(t *testing.T) {
	pub := &fakePublisher{}
	want := orientation.Pose{Roll: 1, Pitch: 2, Yaw: 3}
	p := &producer{cfg: testConfig(), pub: pub, mock: fixedPose{want}}

	require.NoError(t, p.tick(time.Unix(0, 0)))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "orientation/pose", pub.msgs[0].topic)
	assert.Equal(t, want, pub.msgs[0].v)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "[POSE]  ROLL=  1.50  PITCH= -2.00  YAW=359.00",
		formatPose(orientation.Pose{Roll: 1.5, Pitch: -2, Yaw: 359}))
	assert.Contains(t, formatStatus(StatusMessage{Status: 5, StatusText: "sensor fusion running", ErrorText: "no error"}),
		"sensor fusion running (0x05)")
	assert.Equal(t, "[ENV ]  T=21.50°C  P=1013.25 hPa", formatEnv(env.Sample{Temperature: 21.5, PressureHPa: 1013.25}))
	assert.Contains(t, formatSample(imu.Sample{TempC: 30}), "T=30°C")
}
