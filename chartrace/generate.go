package chartrace

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"go.uber.org/zap"
)

// Options 配置图表生成.
type Options struct {
	Title    string // 页面标题
	TopN     int    // 同时显示的条数，默认 12
	Duration int    // 每个关键帧的过渡时长（毫秒），默认 250
}

// DefaultOptions 返回默认的图表参数。
func DefaultOptions() Options {
	return Options{
		Title:    "Bar Chart Race",
		TopN:     12,
		Duration: 250,
	}
}

// Generator 将数据集渲染为自包含的 D3 动态条形图 HTML.
type Generator struct {
	opts   Options
	logger *zap.Logger
}

// NewGenerator 创建图表生成器.
func NewGenerator(opts Options, logger *zap.Logger) *Generator {
	if opts.TopN <= 0 {
		opts.TopN = 12
	}
	if opts.Duration <= 0 {
		opts.Duration = 250
	}
	if opts.Title == "" {
		opts.Title = "Bar Chart Race"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{opts: opts, logger: logger.With(zap.String("component", "chartrace"))}
}

type chartRow struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type templateData struct {
	Title    string
	TopN     int
	Duration int
	DataJSON template.JS
}

// Render 渲染 HTML 到 writer。
func (g *Generator) Render(ds *Dataset, w io.Writer) error {
	rows := make([]chartRow, 0, len(ds.Records))
	for _, rec := range ds.Records {
		rows = append(rows, chartRow{
			Date:     rec.Date.Format("2006-01-02"),
			Name:     rec.Name,
			Category: rec.Category,
			Value:    rec.Value,
		})
	}
	dataJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode chart data: %w", err)
	}

	data := templateData{
		Title:    g.opts.Title,
		TopN:     g.opts.TopN,
		Duration: g.opts.Duration,
		DataJSON: template.JS(dataJSON),
	}
	if err := chartTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render chart template: %w", err)
	}

	g.logger.Info("chart rendered",
		zap.Int("records", len(rows)),
		zap.Int("dates", len(ds.Dates)),
		zap.Int("names", len(ds.Names)))
	return nil
}

// RenderFile 渲染 HTML 到文件。
func (g *Generator) RenderFile(ds *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := g.Render(ds, f); err != nil {
		return err
	}
	g.logger.Info("chart saved", zap.String("path", path))
	return nil
}

// chartTemplate 是基于 D3 v7 的动态条形图页面.
// 关键帧之间插值 k=10 帧，条高 48px。
var chartTemplate = template.Must(template.New("chartrace").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/d3@7"></script>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 24px; background: #fff; }
  h1 { font-size: 20px; font-weight: 600; }
  .ticker { font: bold 44px sans-serif; fill: #888; }
  .bar-label { font: 12px sans-serif; }
  .controls { margin-bottom: 12px; }
  .controls button, .controls select { font-size: 14px; padding: 4px 10px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="controls">
  <button id="replay">Replay</button>
  <select id="speed">
    <option value="2">0.5x</option>
    <option value="1" selected>1x</option>
    <option value="0.5">2x</option>
    <option value="0.25">4x</option>
  </select>
</div>
<div id="chart"></div>
<script>
const rawData = {{.DataJSON}};
const n = {{.TopN}};
const k = 10;
const duration = {{.Duration}};
const barSize = 48;
const margin = { top: 16, right: 6, bottom: 6, left: 0 };
const width = 960;
const height = margin.top + barSize * n + margin.bottom;

const parseDate = d3.timeParse("%Y-%m-%d");
const data = rawData.map(d => ({
  date: parseDate(d.date),
  name: d.name,
  category: d.category,
  value: +d.value
}));

const names = new Set(data.map(d => d.name));
const datevalues = Array.from(
  d3.rollup(data, ([d]) => d.value, d => +d.date, d => d.name)
).map(([date, map]) => [new Date(date), map])
 .sort(([a], [b]) => d3.ascending(a, b));

function rank(value) {
  const ranked = Array.from(names, name => ({ name, value: value(name) }));
  ranked.sort((a, b) => d3.descending(a.value, b.value));
  for (let i = 0; i < ranked.length; ++i) ranked[i].rank = Math.min(n, i);
  return ranked;
}

const keyframes = [];
let ka, a, kb, b;
for ([[ka, a], [kb, b]] of d3.pairs(datevalues)) {
  for (let i = 0; i < k; ++i) {
    const t = i / k;
    keyframes.push([
      new Date(ka * (1 - t) + kb * t),
      rank(name => (a.get(name) || 0) * (1 - t) + (b.get(name) || 0) * t)
    ]);
  }
}
keyframes.push([new Date(kb), rank(name => b.get(name) || 0)]);

const nameframes = d3.groups(keyframes.flatMap(([, data]) => data), d => d.name);
const prev = new Map(nameframes.flatMap(([, data]) => d3.pairs(data, (a, b) => [b, a])));
const next = new Map(nameframes.flatMap(([, data]) => d3.pairs(data)));

const x = d3.scaleLinear([0, 1], [margin.left, width - margin.right]);
const y = d3.scaleBand()
  .domain(d3.range(n + 1))
  .rangeRound([margin.top, margin.top + barSize * (n + 1 + 0.1)])
  .padding(0.1);

const categories = new Set(data.map(d => d.category));
const color = d3.scaleOrdinal(d3.schemeTableau10).domain(categories);

const formatNumber = d3.format(",d");
const formatDate = d3.utcFormat("%Y-%m-%d");

function bars(svg) {
  let bar = svg.append("g").attr("fill-opacity", 0.7).selectAll("rect");
  return ([, data], transition) => bar = bar
    .data(data.slice(0, n), d => d.name)
    .join(
      enter => enter.append("rect")
        .attr("fill", d => color(d.category || d.name))
        .attr("height", y.bandwidth())
        .attr("x", x(0))
        .attr("y", d => y((prev.get(d) || d).rank))
        .attr("width", d => x((prev.get(d) || d).value) - x(0)),
      update => update,
      exit => exit.transition(transition).remove()
        .attr("y", d => y((next.get(d) || d).rank))
        .attr("width", d => x((next.get(d) || d).value) - x(0))
    )
    .call(bar => bar.transition(transition)
      .attr("y", d => y(d.rank))
      .attr("width", d => x(d.value) - x(0)));
}

function labels(svg) {
  let label = svg.append("g")
    .attr("class", "bar-label")
    .attr("text-anchor", "end")
    .selectAll("text");
  return ([, data], transition) => label = label
    .data(data.slice(0, n), d => d.name)
    .join(
      enter => enter.append("text")
        .attr("transform", d => "translate(" + x((prev.get(d) || d).value) + "," + y((prev.get(d) || d).rank) + ")")
        .attr("y", y.bandwidth() / 2)
        .attr("x", -6)
        .attr("dy", "-0.25em")
        .text(d => d.name)
        .call(text => text.append("tspan")
          .attr("fill-opacity", 0.7)
          .attr("font-weight", "normal")
          .attr("x", -6)
          .attr("dy", "1.15em")),
      update => update,
      exit => exit.transition(transition).remove()
        .attr("transform", d => "translate(" + x((next.get(d) || d).value) + "," + y((next.get(d) || d).rank) + ")")
    )
    .call(label => label.transition(transition)
      .attr("transform", d => "translate(" + x(d.value) + "," + y(d.rank) + ")")
      .call(g => g.select("tspan")
        .textTween((d) => t => formatNumber(d3.interpolateNumber((prev.get(d) || d).value, d.value)(t)))));
}

function axis(svg) {
  const g = svg.append("g").attr("transform", "translate(0," + margin.top + ")");
  const axisTop = d3.axisTop(x)
    .ticks(width / 160)
    .tickSizeOuter(0)
    .tickSizeInner(-barSize * (n + y.padding()));
  return (_, transition) => {
    g.transition(transition).call(axisTop);
    g.select(".tick:first-of-type text").remove();
    g.selectAll(".tick:not(:first-of-type) line").attr("stroke", "white");
    g.select(".domain").remove();
  };
}

function ticker(svg) {
  const now = svg.append("text")
    .attr("class", "ticker")
    .attr("text-anchor", "end")
    .attr("x", width - 6)
    .attr("y", margin.top + barSize * (n - 0.45))
    .attr("dy", "0.32em")
    .text(formatDate(keyframes[0][0]));
  return ([date], transition) => {
    transition.end().then(() => now.text(formatDate(date)));
  };
}

let running = false;
let speedFactor = 1;
document.getElementById("speed").addEventListener("change", e => { speedFactor = +e.target.value; });
document.getElementById("replay").addEventListener("click", () => { if (!running) run(); });

async function run() {
  running = true;
  d3.select("#chart").selectAll("*").remove();
  const svg = d3.select("#chart").append("svg")
    .attr("viewBox", [0, 0, width, height])
    .attr("width", width)
    .attr("height", height);

  const updateBars = bars(svg);
  const updateAxis = axis(svg);
  const updateLabels = labels(svg);
  const updateTicker = ticker(svg);

  try {
    for (const keyframe of keyframes) {
      const transition = svg.transition().duration(duration * speedFactor).ease(d3.easeLinear);
      x.domain([0, keyframe[1][0].value]);
      updateAxis(keyframe, transition);
      updateBars(keyframe, transition);
      updateLabels(keyframe, transition);
      updateTicker(keyframe, transition);
      await transition.end();
    }
  } finally {
    running = false;
  }
}

run();
</script>
</body>
</html>
`))
