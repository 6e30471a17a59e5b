// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"fmt"

	"github.com/inertialab/tiltd/internal/estimator"
)

// ControlMessage is the JSON payload accepted on the control topic and the
// dashboard WebSocket.
type ControlMessage struct {
	Action    string `json:"action"` // set_algorithm, start_recording, stop_recording, export
	Algorithm string `json:"algorithm,omitempty"`
}

// TiltMessage is the JSON payload published per processed tick. Angles are
// in radians; consumers convert to display units themselves.
type TiltMessage struct {
	Timestamp float64 `json:"timestamp"`
	Pitch     float64 `json:"pitch"`
	Roll      float64 `json:"roll"`
	Algorithm string  `json:"algorithm"`
}

// parseControl validates one control payload.
func parseControl(payload []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ControlMessage{}, fmt.Errorf("unmarshal control message: %w", err)
	}

	switch msg.Action {
	case "set_algorithm":
		if _, err := estimator.ParseAlgorithm(msg.Algorithm); err != nil {
			return ControlMessage{}, fmt.Errorf("set_algorithm: %w", err)
		}
	case "start_recording", "stop_recording", "export":
	default:
		return ControlMessage{}, fmt.Errorf("unknown control action %q", msg.Action)
	}
	return msg, nil
}
