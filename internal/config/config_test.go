package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadKeyValue(t *testing.T) {
	p := writeFile(t, "orientation_config.txt", `
# broker
MQTT_BROKER=tcp://localhost:1883
TOPIC_POSE = bno/pose
BNO_I2C_ADDR=0x29
BNO_SCL_PIN=GPIO3
BNO_SDA_PIN=GPIO2
BNO_RESET_TIMEOUT_MS=2000
BMP_I2C_ADDR=0x76
SAMPLE_INTERVAL=20
CONSOLE_LOG_INTERVAL=1000
REGISTER_DEBUG_ALLOWED_RANGES=0x3D-0x3F,0x07
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "bno/pose", cfg.TopicPose)
	assert.Equal(t, "orientation/imu", cfg.TopicIMU)
	assert.Equal(t, uint16(0x29), cfg.BNOI2CAddr)
	assert.Equal(t, "GPIO3", cfg.BNOSCLPin)
	assert.Equal(t, 2000, cfg.BNOResetTimeout)
	assert.Equal(t, uint16(0x76), cfg.BMPI2CAddr)
	assert.Equal(t, 20, cfg.SampleInterval)
	assert.Equal(t, "i2c", cfg.BNOTransport)
	assert.Equal(t, int64(100000), cfg.BNOBusSpeedHz)
	assert.Equal(t, 4, cfg.BNOTxTimeoutMS)
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "orientation.yaml", `
mqtt_broker: tcp://broker:1883
bno_transport: uart
bno_uart_port: /dev/ttyUSB0
bno_uart_baud: 115200
sample_interval: 10
console_log_interval: 500
display_content: status
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, "uart", cfg.BNOTransport)
	assert.Equal(t, "/dev/ttyUSB0", cfg.BNOUARTPort)
	assert.Equal(t, uint(115200), cfg.BNOUARTBaud)
	assert.Equal(t, 10, cfg.SampleInterval)
	assert.Equal(t, "status", cfg.DisplayContent)
}

func TestLoadErrors(t *testing.T) {
	for name, body := range map[string]string{
		"missing broker": "SAMPLE_INTERVAL=10\nCONSOLE_LOG_INTERVAL=10\n",
		"unknown key":    "MQTT_BROKER=x\nFOO=bar\n",
		"not key value":  "MQTT_BROKER\n",
		"bad address":    "MQTT_BROKER=x\nBNO_I2C_ADDR=0x30\n",
		"bad transport":  "MQTT_BROKER=x\nBNO_TRANSPORT=spi\n",
		"bad speed":      "MQTT_BROKER=x\nBNO_BUS_SPEED_HZ=1000000\n",
		"missing sample": "MQTT_BROKER=x\nCONSOLE_LOG_INTERVAL=10\n",
		"bad range":      "MQTT_BROKER=x\nREGISTER_DEBUG_ALLOWED_RANGES=0x3F-0x3D\n",
		"negative reset": "MQTT_BROKER=x\nBNO_RESET_TIMEOUT_MS=-1\n",
		"bad display":    "MQTT_BROKER=x\nDISPLAY_CONTENT=gps\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.txt", body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRegisterRanges(t *testing.T) {
	r, err := ParseRegisterRanges("0x3D-0x3F, 0x07")
	require.NoError(t, err)
	assert.Equal(t, RegisterRanges{{Lo: 0x3D, Hi: 0x3F}, {Lo: 0x07, Hi: 0x07}}, r)

	assert.True(t, r.Allows(0x3D))
	assert.True(t, r.Allows(0x3E))
	assert.True(t, r.Allows(0x3F))
	assert.True(t, r.Allows(0x07))
	assert.False(t, r.Allows(0x00))
	assert.False(t, r.Allows(0x40))

	empty, err := ParseRegisterRanges("")
	require.NoError(t, err)
	assert.False(t, empty.Allows(0x3D))

	_, err = ParseRegisterRanges("0x100")
	assert.Error(t, err)
	_, err = ParseRegisterRanges("abc")
	assert.Error(t, err)
}
