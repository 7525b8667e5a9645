// Package chart renders the candlestick chart with volume bars using go-echarts.
package chart

import (
	"fmt"
	"io"

	"StockDashboard/internal/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Korean market convention: red for up, blue for down.
const (
	ColorUp   = "red"
	ColorDown = "blue"
)

// Overlay line colors by moving-average window.
var maColors = map[string]string{
	"MA5":  "orange",
	"MA20": "purple",
	"MA60": "green",
}

// missing is how ECharts encodes a gap in a series.
const missing = "-"

// Axis label and bound callbacks evaluated by ECharts in the browser.
var (
	thousands = opts.FuncOpts("function (v) { return Number(v).toLocaleString(); }")
	// Leave the bottom third of the price axis free for volume bars.
	priceMin = opts.FuncOpts("function (v) { return v.min - (v.max - v.min) / 2; }")
	// Scale volume so the tallest bar reaches a quarter of the height.
	volumeMax = opts.FuncOpts("function (v) { return v.max * 4; }")
)

// Render writes a standalone HTML page with the price chart.
func Render(w io.Writer, rep *model.Report) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s (%s)", rep.Company.Name, rep.Company.Code)
	page.AddCharts(PriceChart(rep))
	return page.Render(w)
}

// PriceChart builds the candlestick chart with MA5/MA20/MA60 overlays and
// volume bars on a second y-axis. Both share the x-axis and one zoom.
func PriceChart(rep *model.Report) *charts.Kline {
	x := xAxis(rep.Rows)

	candles := make([]opts.KlineData, len(rep.Rows))
	for i, r := range rep.Rows {
		// ECharts order: open, close, low, high.
		candles[i] = opts.KlineData{Value: [4]float64{r.Open, r.Close, r.Low, r.High}}
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s 주가 흐름", rep.Company.Name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     true,
			Min:       priceMin,
			AxisLabel: &opts.AxisLabel{Show: true, Formatter: thousands},
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
		),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}),
	)
	kline.ExtendYAxis(opts.YAxis{
		Name:      "거래량",
		Max:       volumeMax,
		AxisLabel: &opts.AxisLabel{Show: true, Formatter: thousands},
	})
	kline.SetXAxis(x).AddSeries("주가", candles,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        ColorUp,
			Color0:       ColorDown,
			BorderColor:  ColorUp,
			BorderColor0: ColorDown,
		}),
	)

	line := charts.NewLine()
	line.SetXAxis(x)
	for _, s := range MovingAverageSeries(rep.Rows) {
		line.AddSeries(s.Name, s.Data, charts.WithLineStyleOpts(opts.LineStyle{Color: maColors[s.Name], Width: 1}))
	}
	kline.Overlap(line, VolumeBars(rep))
	return kline
}

// VolumeBars builds the volume series, colored like the candle of the same
// day and bound to the second y-axis.
func VolumeBars(rep *model.Report) *charts.Bar {
	data := make([]opts.BarData, len(rep.Rows))
	for i, r := range rep.Rows {
		data[i] = opts.BarData{Value: r.Volume, ItemStyle: &opts.ItemStyle{Color: VolumeColor(r.OHLCV)}}
	}

	bar := charts.NewBar()
	bar.SetXAxis(xAxis(rep.Rows)).AddSeries("거래량", data,
		charts.WithBarChartOpts(opts.BarChart{YAxisIndex: 1}),
	)
	return bar
}

// VolumeColor returns the bar color for one day.
func VolumeColor(b model.OHLCV) string {
	if b.Rising() {
		return ColorUp
	}
	return ColorDown
}

// Series is one named overlay line.
type Series struct {
	Name string
	Data []opts.LineData
}

// MovingAverageSeries converts the MA columns into line data, emitting a gap
// for rows whose window is not yet full.
func MovingAverageSeries(rows []model.PriceRow) []Series {
	pick := []struct {
		name string
		get  func(model.PriceRow) *float64
	}{
		{"MA5", func(r model.PriceRow) *float64 { return r.MA5 }},
		{"MA20", func(r model.PriceRow) *float64 { return r.MA20 }},
		{"MA60", func(r model.PriceRow) *float64 { return r.MA60 }},
	}
	out := make([]Series, 0, len(pick))
	for _, p := range pick {
		data := make([]opts.LineData, len(rows))
		for i, r := range rows {
			if v := p.get(r); v != nil {
				data[i] = opts.LineData{Value: *v}
			} else {
				data[i] = opts.LineData{Value: missing}
			}
		}
		out = append(out, Series{Name: p.name, Data: data})
	}
	return out
}

func xAxis(rows []model.PriceRow) []string {
	x := make([]string, len(rows))
	for i, r := range rows {
		x[i] = r.Time.Format("2006-01-02")
	}
	return x
}
