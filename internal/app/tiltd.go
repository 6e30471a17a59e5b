// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/inertialab/tiltd/internal/config"
	"github.com/inertialab/tiltd/internal/estimator"
	"github.com/inertialab/tiltd/internal/imu"
	"github.com/inertialab/tiltd/internal/pipeline"
	"github.com/inertialab/tiltd/internal/recorder"
)

// RunTiltd runs the estimation daemon: drive the pipeline from a ticker,
// publish each estimate over MQTT, and apply control messages (algorithm
// switch, recording, export) between ticks.
func RunTiltd() error {
	log.Println("starting tiltd estimation daemon")

	cfg := config.Get()

	src, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("build sample source: %w", err)
	}
	log.Printf("tiltd: using %s sample source", cfg.Source.Type)

	alg, err := estimator.ParseAlgorithm(cfg.Tick.Algorithm)
	if err != nil {
		return err
	}
	state := estimator.NewState(alg)
	state.SetGain(cfg.Tick.Gain)

	rec := recorder.New()
	if cfg.Recording.AutoStart {
		rec.Start()
		log.Println("tiltd: recording auto-started")
	}

	pipe := pipeline.New(src, state, rec)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("tiltd: connected to MQTT broker at %s", cfg.MQTT.Broker)

	// Control messages arrive on MQTT goroutines; the pipeline is
	// single-writer, so they are funneled into the tick loop instead of
	// touching it directly.
	ctrlCh := make(chan ControlMessage, 8)
	token := client.Subscribe(cfg.MQTT.TopicControl, 0, func(_ mqtt.Client, msg mqtt.Message) {
		ctrl, err := parseControl(msg.Payload())
		if err != nil {
			log.Printf("tiltd: bad control message: %v", err)
			return
		}
		select {
		case ctrlCh <- ctrl:
		default:
			log.Printf("tiltd: control queue full, dropping %q", ctrl.Action)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", cfg.MQTT.TopicControl, token.Error())
	}
	log.Printf("tiltd: subscribed to control topic %s", cfg.MQTT.TopicControl)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.Tick.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.Printf("tiltd: publish loop running at %d ms per tick, algorithm %s",
		cfg.Tick.IntervalMs, pipe.Algorithm())

	for {
		select {
		case <-sigCh:
			log.Println("tiltd: shutting down")
			return nil

		case ctrl := <-ctrlCh:
			applyControl(ctrl, pipe, rec, cfg)

		case <-ticker.C:
			est, record, ok, err := pipe.Tick()
			if err != nil {
				log.Printf("tiltd: tick error: %v", err)
				continue
			}
			if !ok {
				// No fresh sample; nothing to publish.
				continue
			}

			payload, err := json.Marshal(TiltMessage{
				Timestamp: record.Timestamp,
				Pitch:     est.Pitch,
				Roll:      est.Roll,
				Algorithm: est.Algorithm.String(),
			})
			if err != nil {
				log.Printf("tiltd: marshal estimate: %v", err)
				continue
			}
			if token := client.Publish(cfg.MQTT.TopicTilt, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("tiltd: publish estimate: %v", token.Error())
				continue
			}

			if rec.Recording() {
				if payload, err := json.Marshal(record); err != nil {
					log.Printf("tiltd: marshal record: %v", err)
				} else if token := client.Publish(cfg.MQTT.TopicRecord, 0, false, payload); token.Wait() && token.Error() != nil {
					log.Printf("tiltd: publish record: %v", token.Error())
				}
			}
		}
	}
}

// applyControl executes one control action between ticks.
func applyControl(ctrl ControlMessage, pipe *pipeline.Pipeline, rec *recorder.Recorder, cfg *config.Config) {
	switch ctrl.Action {
	case "set_algorithm":
		alg, err := estimator.ParseAlgorithm(ctrl.Algorithm)
		if err != nil {
			log.Printf("tiltd: %v", err)
			return
		}
		pipe.SwitchAlgorithm(alg)
		log.Printf("tiltd: algorithm switched to %s, orientation state reset", alg)

	case "start_recording":
		rec.Start()
		log.Println("tiltd: recording started")

	case "stop_recording":
		rec.Stop()
		log.Printf("tiltd: recording stopped with %d samples", rec.Len())

	case "export":
		path, err := rec.Export(cfg.Recording.ExportDir)
		if errors.Is(err, recorder.ErrNoData) {
			log.Println("tiltd: export skipped: no recorded data")
			return
		}
		if err != nil {
			log.Printf("tiltd: export failed: %v", err)
			return
		}
		log.Printf("tiltd: exported %d records to %s", rec.Len(), path)
	}
}

// buildSource constructs the configured sample source.
func buildSource(cfg *config.Config) (imu.Source, error) {
	switch cfg.Source.Type {
	case "serial":
		return imu.NewSerialSource(cfg.Source.Serial.Port, cfg.Source.Serial.Baud)
	case "mpu9250":
		return imu.NewMPU9250Source(
			cfg.Source.MPU9250.SPIDevice,
			cfg.Source.MPU9250.CSPin,
			byte(cfg.Source.MPU9250.AccelRange),
			byte(cfg.Source.MPU9250.GyroRange),
		)
	default:
		return imu.NewMockSource(), nil
	}
}
