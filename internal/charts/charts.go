// Package charts renders team performance reports as interactive HTML
// charts via go-echarts.
package charts

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds presentation settings shared by all chart kinds.
type ChartConfig struct {
	Title      string
	Subtitle   string
	SeriesName string // Label for single-series charts
	Width      string // e.g. "900px"
	Height     string // e.g. "500px"
	Theme      string
	ShowLegend bool
	Smooth     bool // Smooth lines (line charts only)
	Colors     []string
}

// DefaultChartConfig returns the standard chart presentation.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272"},
	}
}

// DataPoint is a single labeled value on a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData is one named series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

func (c ChartConfig) seriesName() string {
	if c.SeriesName != "" {
		return c.SeriesName
	}
	return "Value"
}

func xLabels(points []DataPoint) []string {
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.Label
	}
	return labels
}

// RenderLineChart writes a single-series line chart HTML file.
func RenderLineChart(data []DataPoint, config ChartConfig, outputPath string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(config.globalOptions()...)

	yData := make([]opts.LineData, len(data))
	for i, point := range data {
		yData[i] = opts.LineData{Value: point.Value}
	}

	line.SetXAxis(xLabels(data)).
		AddSeries(config.seriesName(), yData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(config.Smooth),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return renderToFile(line, outputPath)
}

// RenderBarChart writes a single-series bar chart HTML file.
func RenderBarChart(data []DataPoint, config ChartConfig, outputPath string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(config.globalOptions()...)

	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels(data)).
		AddSeries(config.seriesName(), yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return renderToFile(bar, outputPath)
}

// RenderMultiLineChart writes a multi-series line chart HTML file. The
// first series supplies the X-axis labels.
func RenderMultiLineChart(series []SeriesData, config ChartConfig, outputPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(config.globalOptions()...)
	line.SetXAxis(xLabels(series[0].Points))

	for i, s := range series {
		yData := make([]opts.LineData, len(s.Points))
		for j, point := range s.Points {
			yData[j] = opts.LineData{Value: point.Value}
		}

		color := config.Colors[i%len(config.Colors)]
		line.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: color,
				}),
			)
	}

	return renderToFile(line, outputPath)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderToFile(chart renderer, outputPath string) (err error) {
	f, createErr := os.Create(outputPath)
	if createErr != nil {
		return fmt.Errorf("failed to create chart file: %w", createErr)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
