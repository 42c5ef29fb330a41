package chart

// Plugin is anything that can be registered on a Library under a stable ID.
// A plugin takes part in a chart's lifecycle by implementing any of the hook
// interfaces below; hooks it does not implement are skipped.
type Plugin interface {
	ID() string
}

// Lifecycle hooks, in the order a chart calls them.
type (
	BeforeInitHook interface{ BeforeInit(c *Chart) }
	AfterInitHook  interface{ AfterInit(c *Chart) }

	BeforeUpdateHook interface{ BeforeUpdate(c *Chart) }
	AfterUpdateHook  interface{ AfterUpdate(c *Chart) }

	BeforeDrawHook         interface{ BeforeDraw(c *Chart) }
	BeforeDatasetsDrawHook interface{ BeforeDatasetsDraw(c *Chart) }
	BeforeDatasetDrawHook  interface{ BeforeDatasetDraw(c *Chart, index int) }
	AfterDatasetDrawHook   interface{ AfterDatasetDraw(c *Chart, index int) }
	AfterDatasetsDrawHook  interface{ AfterDatasetsDraw(c *Chart) }
	AfterDrawHook          interface{ AfterDraw(c *Chart) }

	AfterRenderHook  interface{ AfterRender(c *Chart) }
	AfterDestroyHook interface{ AfterDestroy(c *Chart) }
)

// LayoutBox is implemented by plugins that reserve a band of the chart, such
// as the title and legend. Fit receives the space still available and returns
// what is left for the chart area; DrawBox paints the band before the scales
// and datasets.
type LayoutBox interface {
	Fit(c *Chart, avail Rect) Rect
	DrawBox(c *Chart)
}

// Axes describes how a controller uses the cartesian scales.
type Axes int

const (
	// AxesNone controllers draw radially inside the chart area.
	AxesNone Axes = iota
	// AxesPoints controllers place values on category lines.
	AxesPoints
	// AxesBars controllers place values in category bands starting at zero.
	AxesBars
)

// Controller draws datasets of one chart type.
type Controller interface {
	Type() string
	Axes() Axes
	DrawDataset(c *Chart, index int, progress float64)
}

// Positioner is implemented by controllers that can report where a data
// point was drawn, for plugins that annotate individual points.
type Positioner interface {
	Position(c *Chart, index, i int) (x, y float64, ok bool)
}

// Registrable bundles several plugins or controllers into one export.
type Registrable interface {
	Items() []any
}

// PluginFunc adapts a set of closures into a Plugin, for inline plugins that
// do not warrant their own type.
type PluginFunc struct {
	Name         string
	OnBeforeDraw func(c *Chart)
	OnAfterDraw  func(c *Chart)
	OnAfterInit  func(c *Chart)
}

func (p PluginFunc) ID() string { return p.Name }

func (p PluginFunc) BeforeDraw(c *Chart) {
	if p.OnBeforeDraw != nil {
		p.OnBeforeDraw(c)
	}
}

func (p PluginFunc) AfterDraw(c *Chart) {
	if p.OnAfterDraw != nil {
		p.OnAfterDraw(c)
	}
}

func (p PluginFunc) AfterInit(c *Chart) {
	if p.OnAfterInit != nil {
		p.OnAfterInit(c)
	}
}
