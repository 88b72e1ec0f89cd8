package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"genretopics/internal/domain"
)

const (
	chartWidth  = "900px"
	chartHeight = "480px"
	cloudHeight = "360px"
)

// RenderHTML writes a single page with the genre counts, the dominant topic
// per genre, the topic projection and one word cloud per topic.
func RenderHTML(w io.Writer, d Data) error {
	page := components.NewPage()
	page.PageTitle = "Genre topics"
	page.AddCharts(genreCountChart(d), dominantTopicChart(d), projectionChart(d))
	for _, ts := range d.Summaries {
		page.AddCharts(wordCloud(ts.Topic, ts.Terms))
	}
	return page.Render(w)
}

func genreCountChart(d Data) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Documents per genre"}),
	)
	labels := make([]string, len(d.GenreCounts))
	data := make([]opts.BarData, len(d.GenreCounts))
	for i, c := range d.GenreCounts {
		labels[i] = string(c.Genre)
		data[i] = opts.BarData{Value: c.Count}
	}
	bar.SetXAxis(labels).AddSeries("documents", data)
	return bar
}

func dominantTopicChart(d Data) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Dominant topic per genre", Subtitle: "bar height is the topic weight"}),
	)
	labels := make([]string, len(d.Profiles))
	data := make([]opts.BarData, len(d.Profiles))
	for i, p := range d.Profiles {
		labels[i] = string(p.Genre)
		data[i] = opts.BarData{Name: fmt.Sprintf("topic %d", p.DominantTopic), Value: round(p.Weight)}
	}
	bar.SetXAxis(labels).AddSeries("weight", data,
		charts.WithLabelOpts(opts.Label{Show: true, Position: "top", Formatter: "{b}"}))
	return bar
}

func projectionChart(d Data) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Topic projection",
			Subtitle: fmt.Sprintf("PC1 %.1f%%, PC2 %.1f%% of variance", 100*axis(d.Projection.ExplainedVariance, 0), 100*axis(d.Projection.ExplainedVariance, 1)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "PC1", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "PC2", Type: "value"}),
	)
	data := make([]opts.ScatterData, len(d.Projection.Points))
	for i, pt := range d.Projection.Points {
		data[i] = opts.ScatterData{
			Name:       fmt.Sprintf("topic %d", pt.Topic),
			Value:      []float64{round(axis(pt.Coords, 0)), round(axis(pt.Coords, 1))},
			SymbolSize: 14,
		}
	}
	sc.AddSeries("topics", data, charts.WithLabelOpts(opts.Label{Show: true, Position: "right", Formatter: "{b}"}))
	return sc
}

func wordCloud(topic int, terms []domain.TermWeight) *charts.WordCloud {
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: cloudHeight}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Topic %d", topic)}),
	)
	data := make([]opts.WordCloudData, len(terms))
	for i, t := range terms {
		data[i] = opts.WordCloudData{Name: t.Term, Value: t.Weight}
	}
	wc.AddSeries("terms", data, charts.WithWorldCloudChartOpts(opts.WordCloudChart{
		Shape:     "circle",
		SizeRange: []float32{14, 64},
	}))
	return wc
}

func round(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
