package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// regFile answers every read from a flat register array.
type regFile struct{ regs [256]byte }

func (r *regFile) Acquire() {}
func (r *regFile) Release() {}

func (r *regFile) TransmitThenReceive(_ uint16, tx, rx []byte, _ time.Duration) error {
	if len(tx) > 1 {
		copy(r.regs[tx[0]:], tx[1:])
		return nil
	}
	copy(rx, r.regs[tx[0]:])
	return nil
}

type noSleep struct{}

func (noSleep) Now() time.Time        { return time.Unix(0, 0) }
func (noSleep) Sleep(d time.Duration) {}

func run(t *testing.T, rf *regFile, args ...string) (string, error) {
	t.Helper()
	orig := openDevice
	t.Cleanup(func() { openDevice = orig })
	openDevice = func(*cobra.Command) (*sensors.Source, error) {
		return sensors.NewSource("bno055", rf, &bno055.Opts{Clock: noSleep{}})
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newDevice() *regFile {
	rf := &regFile{}
	copy(rf.regs[:], []byte{0xA0, 0xFB, 0x32, 0x0F, 0x11, 0x03, 0x15})
	rf.regs[bno055.RegSTResult] = 0x0F
	rf.regs[bno055.RegCalibStat] = 0xC0
	rf.regs[bno055.RegSysStatus] = 0x05
	return rf
}

func TestProbe(t *testing.T) {
	out, err := run(t, newDevice(), "probe")
	require.NoError(t, err)
	assert.Contains(t, out, "chip id     0xA0 (acc 0xFB, mag 0x32, gyr 0x0F)")
	assert.Contains(t, out, "firmware    3.17, bootloader 21")
	assert.Contains(t, out, "status      0x05 sensor fusion running")
	assert.Contains(t, out, "self-test   mcu=true gyr=true mag=true acc=true")
	assert.Contains(t, out, "calibration sys=3 gyr=0 acc=0 mag=0")
}

func TestRead(t *testing.T) {
	rf := newDevice()
	copy(rf.regs[bno055.RegGrvData:], []byte{0x00, 0x00, 0x00, 0x00, 0xD5, 0x03})

	out, err := run(t, rf, "read", "gravity", "-n", "2", "-i", "0s")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "gravity  x=    0.000 y=    0.000 z=    9.810", lines[0])

	out, err = run(t, rf, "read", "all")
	require.NoError(t, err)
	assert.Contains(t, out, `"source":"bno055"`)

	copy(rf.regs[bno055.RegQuaData:], []byte{0x00, 0x40})
	out, err = run(t, rf, "read", "pose")
	require.NoError(t, err)
	assert.Contains(t, out, "quat     roll=    0.00 pitch=    0.00 yaw=    0.00")

	_, err = run(t, rf, "read", "pressure")
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	out, err := run(t, newDevice(), "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "0x00  0xA0  10100000  CHIP_ID\n")
	assert.Contains(t, out, "0x3D  0x0C  00001100  OPR_MODE\n")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(sensors.RegisterAddresses()))
}
