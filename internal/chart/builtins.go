package chart

import "math"

// Built-in plugin IDs.
const (
	TitleID  = "title"
	LegendID = "legend"
)

type titleOptions struct {
	Display bool    `json:"display"`
	Text    string  `json:"text"`
	Color   string  `json:"color"`
	Padding float64 `json:"padding"`
	Font    struct {
		Size   float64 `json:"size"`
		Weight string  `json:"weight"`
	} `json:"font"`
}

// titlePlugin draws the chart title centred above the chart area. It is
// hidden unless options.plugins.title.display is true.
type titlePlugin struct{}

func (*titlePlugin) ID() string { return TitleID }

func (p *titlePlugin) options(c *Chart) titleOptions {
	var o titleOptions
	o.Padding = 10
	o.Font.Weight = "bold"
	if err := c.PluginOptions(TitleID, &o); err != nil {
		c.Logger().Warn("ignoring invalid title options", "error", err)
	}
	if o.Font.Size <= 0 {
		o.Font.Size = c.lib.Defaults.Font.Size
	}
	if o.Color == "" {
		o.Color = c.lib.Defaults.Color
	}
	return o
}

func (p *titlePlugin) Fit(c *Chart, avail Rect) Rect {
	o := p.options(c)
	c.SetState(TitleID, nil)
	if !o.Display || o.Text == "" {
		return avail
	}
	height := o.Font.Size + 2*o.Padding
	c.SetState(TitleID, height)
	avail.Top = math.Min(avail.Bottom, avail.Top+height)
	return avail
}

func (p *titlePlugin) DrawBox(c *Chart) {
	height, ok := c.State(TitleID).(float64)
	if !ok {
		return
	}
	o := p.options(c)
	ctx := c.ctx
	ctx.Save()
	defer ctx.Restore()
	ctx.SetFont(c.Font(o.Font.Size, o.Font.Weight))
	ctx.SetFillStyle(o.Color)
	ctx.SetTextAlign("center")
	ctx.SetTextBaseline("middle")
	pad := c.config.Options.Layout.Padding
	ctx.FillText(o.Text, c.Width()/2, pad.Top+height/2)
}

type legendOptions struct {
	Display  bool   `json:"display"`
	Position string `json:"position"`
	Labels   struct {
		Color    string  `json:"color"`
		BoxWidth float64 `json:"boxWidth"`
		Padding  float64 `json:"padding"`
	} `json:"labels"`
}

type legendItem struct {
	text         string
	fill, stroke string
	width        float64
}

type legendLayout struct {
	rows [][]legendItem
	box  Rect
}

// legendPlugin lists one entry per dataset, or one per label on radial
// charts, above or below the chart area.
type legendPlugin struct{}

func (*legendPlugin) ID() string { return LegendID }

func (p *legendPlugin) options(c *Chart) legendOptions {
	var o legendOptions
	o.Display = true
	o.Position = "top"
	o.Labels.BoxWidth = 40
	o.Labels.Padding = 10
	if err := c.PluginOptions(LegendID, &o); err != nil {
		c.Logger().Warn("ignoring invalid legend options", "error", err)
	}
	if o.Labels.Color == "" {
		o.Labels.Color = c.lib.Defaults.Color
	}
	return o
}

func (p *legendPlugin) collect(c *Chart) []legendItem {
	var items []legendItem
	data := c.config.Data
	if c.ctrl.Axes() == AxesNone {
		if len(data.Datasets) == 0 {
			return nil
		}
		for i, label := range data.Labels {
			fill, stroke := c.DatasetColors(0, i)
			items = append(items, legendItem{text: label, fill: fill, stroke: stroke})
		}
		return items
	}
	for i, ds := range data.Datasets {
		if ds.Label == "" || ds.Hidden {
			continue
		}
		fill, stroke := c.DatasetColors(i, 0)
		items = append(items, legendItem{text: ds.Label, fill: fill, stroke: stroke})
	}
	return items
}

func (p *legendPlugin) Fit(c *Chart, avail Rect) Rect {
	c.SetState(LegendID, nil)
	o := p.options(c)
	if !o.Display {
		return avail
	}
	items := p.collect(c)
	if len(items) == 0 {
		return avail
	}
	layout := &legendLayout{}

	fontSize := c.lib.Defaults.Font.Size
	ctx := c.ctx
	ctx.Save()
	ctx.SetFont(c.Font(0, ""))
	var row []legendItem
	rowWidth := 0.0
	for _, it := range items {
		it.width = o.Labels.BoxWidth + fontSize/2 + ctx.MeasureText(it.text).Width
		if len(row) > 0 && rowWidth+it.width > avail.Width() {
			layout.rows = append(layout.rows, row)
			row, rowWidth = nil, 0
		}
		row = append(row, it)
		rowWidth += it.width + o.Labels.Padding
	}
	layout.rows = append(layout.rows, row)
	ctx.Restore()

	height := float64(len(layout.rows))*(fontSize+o.Labels.Padding) + o.Labels.Padding
	layout.box = avail
	if o.Position == "bottom" {
		layout.box.Top = math.Max(avail.Top, avail.Bottom-height)
		avail.Bottom = layout.box.Top
	} else {
		layout.box.Bottom = math.Min(avail.Bottom, avail.Top+height)
		avail.Top = layout.box.Bottom
	}
	c.SetState(LegendID, layout)
	return avail
}

func (p *legendPlugin) DrawBox(c *Chart) {
	layout, ok := c.State(LegendID).(*legendLayout)
	if !ok {
		return
	}
	o := p.options(c)
	fontSize := c.lib.Defaults.Font.Size
	boxHeight := fontSize

	ctx := c.ctx
	ctx.Save()
	defer ctx.Restore()
	ctx.SetFont(c.Font(0, ""))
	ctx.SetTextAlign("left")
	ctx.SetTextBaseline("middle")
	ctx.SetLineWidth(1)

	y := layout.box.Top + o.Labels.Padding
	for _, row := range layout.rows {
		total := -o.Labels.Padding
		for _, it := range row {
			total += it.width + o.Labels.Padding
		}
		x := layout.box.Left + (layout.box.Width()-total)/2
		for _, it := range row {
			ctx.SetFillStyle(it.fill)
			ctx.FillRect(x, y, o.Labels.BoxWidth, boxHeight)
			ctx.SetStrokeStyle(it.stroke)
			ctx.StrokeRect(x, y, o.Labels.BoxWidth, boxHeight)
			ctx.SetFillStyle(o.Labels.Color)
			ctx.FillText(it.text, x+o.Labels.BoxWidth+fontSize/2, y+boxHeight/2)
			x += it.width + o.Labels.Padding
		}
		y += fontSize + o.Labels.Padding
	}
}
