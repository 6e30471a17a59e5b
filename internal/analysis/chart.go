// Copyright (c) 2026 Inertia Lab
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package analysis

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/inertialab/tiltd/internal/recorder"
)

// RenderChart writes an HTML page with pitch and roll time-series line
// charts for a session. Timestamps are re-based so the x axis starts at
// zero seconds.
func RenderChart(records []recorder.Record, w io.Writer) error {
	if len(records) == 0 {
		return ErrEmptySession
	}

	t0 := records[0].Timestamp
	times := make([]string, len(records))
	pitch := make([]opts.LineData, len(records))
	roll := make([]opts.LineData, len(records))
	for i, rec := range records {
		times[i] = fmt.Sprintf("%.2f", rec.Timestamp-t0)
		pitch[i] = opts.LineData{Value: rec.Orientation.Pitch}
		roll[i] = opts.LineData{Value: rec.Orientation.Roll}
	}

	page := components.NewPage()
	page.AddCharts(
		tiltLine("Pitch over Time", "Pitch (radians)", times, "pitch", pitch),
		tiltLine("Roll over Time", "Roll (radians)", times, "roll", roll),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func tiltLine(title, yName string, times []string, series string, data []opts.LineData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (seconds)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(times).AddSeries(series, data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))
	return line
}
