package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

// screen is the part of ssd1306.Dev the display loop uses.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	pose     orientation.Pose
	havePose bool

	status     StatusMessage
	haveStatus bool
}

func (d *DisplayData) setPose(p orientation.Pose) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pose = p
	d.havePose = true
}

func (d *DisplayData) setStatus(s StatusMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
	d.haveStatus = true
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// The OLED hangs off the same bus as the BNO055.
	bus, err := i2creg.Open(cfg.BNOI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Printf("display: initialized on %s", bus)

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	switch cfg.DisplayContent {
	case "status":
		err = subscribeJSON(client, cfg.TopicStatus, data.setStatus)
	default:
		err = subscribeJSON(client, cfg.TopicPose, data.setPose)
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		if err := updateDisplay(dev, cfg.DisplayContent, data); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}

func updateDisplay(dev screen, content string, data *DisplayData) error {
	data.mu.RLock()
	pose, havePose := data.pose, data.havePose
	status, haveStatus := data.status, data.haveStatus
	data.mu.RUnlock()

	var img *image1bit.VerticalLSB
	switch content {
	case "orientation":
		img = renderOrientation(pose, havePose)
	case "status":
		img = renderStatus(status, haveStatus)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// renderLines draws up to four 7x13 text lines on a blank 128x64 frame.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, l := range lines {
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(l)
	}
	return img
}

func renderOrientation(pose orientation.Pose, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines("", "Orientation", "Waiting...")
	}
	return renderLines(
		fmt.Sprintf("R: %6.1f", pose.Roll),
		fmt.Sprintf("P: %6.1f", pose.Pitch),
		fmt.Sprintf("Y: %6.1f", pose.Yaw),
	)
}

func renderStatus(s StatusMessage, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines("", "BNO055 status", "Waiting...")
	}
	c := s.Calibration
	errLine := "OK"
	if s.Error != 0 {
		errLine = fmt.Sprintf("ERR 0x%02X", s.Error)
	}
	return renderLines(
		fmt.Sprintf("ST 0x%02X %s", s.Status, errLine),
		fmt.Sprintf("CAL S%d G%d A%d M%d", c.System, c.Gyro, c.Accel, c.Mag),
		fmt.Sprintf("T: %.0f C", s.TempC),
	)
}

func showSplash(dev screen) error {
	img := renderLines("", " Orientation Pi", "  BNO055 NDOF")
	return dev.Draw(dev.Bounds(), img, image.Point{})
}
