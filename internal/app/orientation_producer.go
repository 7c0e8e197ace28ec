package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_computer/internal/bno055"
	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/env"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
	"github.com/relabs-tech/orientation_computer/internal/sensors"
)

// StatusMessage is published on TOPIC_STATUS every tick.
type StatusMessage struct {
	Time        string             `json:"time"`
	Status      byte               `json:"status"`
	StatusText  string             `json:"status_text"`
	Error       byte               `json:"error"`
	ErrorText   string             `json:"error_text"`
	Calibration bno055.Calibration `json:"calib"`
	TempC       float64            `json:"temp_c"`
}

// Publisher sends one JSON-encodable message to a topic.
type Publisher interface {
	Publish(topic string, v interface{}) error
}

type mqttPublisher struct {
	client mqtt.Client
}

func (p mqttPublisher) Publish(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish error (%s): %w", topic, token.Error())
	}
	return nil
}

// EnvReader is the optional environmental sensor next to the IMU.
type EnvReader interface {
	ReadEnv() (env.Sample, error)
}

// producer turns one tick into MQTT messages.
type producer struct {
	cfg  *config.Config
	pub  Publisher
	imu  imu.SampleSource   // nil in mock mode
	env  EnvReader          // nil when no BMP280 is fitted
	mock orientation.Source // used when imu is nil

	lastLog time.Time
}

// SYS_STATUS value while the fusion processor is running.
const statusFusionRunning = 0x05

// poseFromSample uses the fused Euler angles. Before fusion runs they read
// zero, so only the accelerometer tilt is reported.
func poseFromSample(s imu.Sample) orientation.Pose {
	if s.Status != statusFusionRunning {
		return orientation.ComputePoseFromAccel(s.Accel.X, s.Accel.Y, s.Accel.Z)
	}
	return orientation.FromEuler(s.Euler)
}

// tick reads the sensor once and publishes pose, sample, status and env.
func (p *producer) tick(t time.Time) error {
	if p.imu == nil {
		pose, err := p.mock.Next()
		if err != nil {
			return fmt.Errorf("mock orientation source: %w", err)
		}
		if err := p.pub.Publish(p.cfg.TopicPose, pose); err != nil {
			return err
		}
		p.logTick(t, pose, nil)
		return nil
	}

	sample, err := p.imu.ReadSample()
	if err != nil {
		return fmt.Errorf("reading BNO055: %w", err)
	}

	pose := poseFromSample(sample)
	if err := p.pub.Publish(p.cfg.TopicPose, pose); err != nil {
		return err
	}
	if err := p.pub.Publish(p.cfg.TopicIMU, sample); err != nil {
		return err
	}

	status := StatusMessage{
		Time:        sample.Time,
		Status:      sample.Status,
		StatusText:  bno055.SystemStatus(sample.Status).String(),
		Error:       sample.Error,
		ErrorText:   bno055.SystemError(sample.Error).String(),
		Calibration: sample.Calibration,
		TempC:       sample.TempC,
	}
	if err := p.pub.Publish(p.cfg.TopicStatus, status); err != nil {
		return err
	}

	// Env failures are logged, never fatal for the tick.
	if p.env != nil {
		if e, err := p.env.ReadEnv(); err != nil {
			log.Printf("env read error: %v", err)
		} else if err := p.pub.Publish(p.cfg.TopicEnv, e); err != nil {
			log.Printf("%v", err)
		}
	}

	p.logTick(t, pose, &sample)
	return nil
}

func (p *producer) logTick(t time.Time, pose orientation.Pose, s *imu.Sample) {
	if t.Sub(p.lastLog) < time.Duration(p.cfg.ConsoleLogInterval)*time.Millisecond {
		return
	}
	p.lastLog = t

	if s == nil {
		log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f (mock)",
			t.Format(time.RFC3339), pose.Roll, pose.Pitch, pose.Yaw)
		return
	}
	log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel %.2f %.2f %.2f | gyro %.3f %.3f %.3f | mag %.1f %.1f %.1f | calib s%d g%d a%d m%d | %s",
		t.Format(time.RFC3339),
		pose.Roll, pose.Pitch, pose.Yaw,
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		s.Mag.X, s.Mag.Y, s.Mag.Z,
		s.Calibration.System, s.Calibration.Gyro, s.Calibration.Accel, s.Calibration.Mag,
		bno055.SystemStatus(s.Status),
	)
}

// RunOrientationProducer reads the BNO055 every SAMPLE_INTERVAL and publishes
// to MQTT. With useMock it publishes a synthetic pose and never touches the
// hardware.
func RunOrientationProducer(useMock bool) error {
	log.Println("starting orientation producer")

	cfg := config.Get()
	p := &producer{cfg: cfg}

	if useMock {
		log.Println("using mock orientation source")
		p.mock = orientation.NewMockSource()
	} else {
		src, err := sensors.Open(cfg, newSensorLogger())
		if err != nil {
			return fmt.Errorf("failed to open BNO055: %w", err)
		}
		defer func() {
			if err := src.Close(); err != nil {
				log.Printf("closing BNO055: %v", err)
			}
		}()
		p.imu = src
		if src.Env() != nil {
			p.env = src
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	p.pub = mqttPublisher{client: client}

	log.Println("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		if err := p.tick(t); err != nil {
			log.Printf("tick error: %v", err)
		}
	}
	return nil
}
