package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/inertialab/tiltd/internal/config"
	"github.com/inertialab/tiltd/internal/recorder"
)

// RunConsole subscribes to the tilt and record topics and prints live
// readings to the terminal until interrupted.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTT.Broker)

	tiltToken := client.Subscribe(cfg.MQTT.TopicTilt, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var t TiltMessage
		if err := json.Unmarshal(msg.Payload(), &t); err != nil {
			log.Printf("console: tilt unmarshal error: %v", err)
			return
		}

		fmt.Printf("[TILT] pitch=%7.2f° roll=%7.2f°  (%s)\n",
			t.Pitch*180/math.Pi, t.Roll*180/math.Pi, t.Algorithm)
	})
	tiltToken.Wait()
	if tiltToken.Error() != nil {
		return tiltToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.MQTT.TopicTilt)

	recToken := client.Subscribe(cfg.MQTT.TopicRecord, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r recorder.Record
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: record unmarshal error: %v", err)
			return
		}

		fmt.Printf("[REC ] t=%.3f  a=(%6.3f %6.3f %6.3f)g  g=(%6.3f %6.3f %6.3f)rad/s\n",
			r.Timestamp,
			r.Accelerometer.X, r.Accelerometer.Y, r.Accelerometer.Z,
			r.Gyroscope.X, r.Gyroscope.Y, r.Gyroscope.Z)
	})
	recToken.Wait()
	if recToken.Error() != nil {
		return recToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.MQTT.TopicRecord)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
