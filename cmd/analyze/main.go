// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/inertialab/tiltd/internal/analysis"
)

func main() {
	chartPath := flag.String("chart", "", "optional path for an HTML pitch/roll chart")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-chart out.html] <session.json>\n", os.Args[0])
		os.Exit(2)
	}
	sessionPath := flag.Arg(0)

	records, err := analysis.Load(sessionPath)
	if err != nil {
		log.Fatalf("load session: %v", err)
	}

	stats, err := analysis.Analyze(records)
	if err != nil {
		log.Fatalf("analyze session: %v", err)
	}

	fmt.Printf("--- Session Analysis: %s ---\n", sessionPath)
	fmt.Printf("Samples: %d\n", stats.Samples)
	fmt.Println("\nAccelerometer:")
	fmt.Printf("  Noise (std of vector lengths): %.6f\n", stats.AccelNoise)
	fmt.Printf("  Bias (average of vectors, gravity adjusted): [%.6f, %.6f, %.6f]\n",
		stats.AccelBias.X, stats.AccelBias.Y, stats.AccelBias.Z)
	fmt.Printf("  Bias vector length: %.6f\n", stats.AccelBiasNorm)
	fmt.Println("\nGyroscope:")
	fmt.Printf("  Noise (std of vector lengths): %.6f\n", stats.GyroNoise)
	fmt.Printf("  Bias (average of vectors): [%.6f, %.6f, %.6f]\n",
		stats.GyroBias.X, stats.GyroBias.Y, stats.GyroBias.Z)
	fmt.Printf("  Bias vector length: %.6f\n", stats.GyroBiasNorm)

	if *chartPath != "" {
		f, err := os.Create(*chartPath)
		if err != nil {
			log.Fatalf("create chart file: %v", err)
		}
		defer f.Close()

		if err := analysis.RenderChart(records, f); err != nil {
			log.Fatalf("render chart: %v", err)
		}
		fmt.Printf("\nchart written to %s\n", *chartPath)
	}
}
