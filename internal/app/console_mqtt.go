package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/env"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatSample(s imu.Sample) string {
	return fmt.Sprintf(
		"[IMU ]  acc=%6.2f %6.2f %6.2f  gyr=%6.3f %6.3f %6.3f  mag=%6.1f %6.1f %6.1f  lin=%6.2f %6.2f %6.2f  grv=%6.2f %6.2f %6.2f  T=%.0f°C",
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gyro.X, s.Gyro.Y, s.Gyro.Z,
		s.Mag.X, s.Mag.Y, s.Mag.Z,
		s.Linear.X, s.Linear.Y, s.Linear.Z,
		s.Gravity.X, s.Gravity.Y, s.Gravity.Z,
		s.TempC,
	)
}

func formatStatus(s StatusMessage) string {
	return fmt.Sprintf("[STAT]  %s (0x%02X)  err=%s (0x%02X)  calib sys=%d gyr=%d acc=%d mag=%d",
		s.StatusText, s.Status, s.ErrorText, s.Error,
		s.Calibration.System, s.Calibration.Gyro, s.Calibration.Accel, s.Calibration.Mag)
}

func formatEnv(e env.Sample) string {
	return fmt.Sprintf("[ENV ]  T=%.2f°C  P=%.2f hPa", e.Temperature, e.PressureHPa)
}

// subscribeJSON subscribes to topic and hands each decoded message to fn.
func subscribeJSON[T any](client mqtt.Client, topic string, fn func(T)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("mqtt: %s unmarshal error: %v", topic, err)
			return
		}
		fn(v)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", topic)
	return nil
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, cfg.TopicPose, func(p orientation.Pose) {
		fmt.Println(formatPose(p))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMU, func(s imu.Sample) {
		fmt.Println(formatSample(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicStatus, func(s StatusMessage) {
		fmt.Println(formatStatus(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicEnv, func(e env.Sample) {
		fmt.Println(formatEnv(e))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
