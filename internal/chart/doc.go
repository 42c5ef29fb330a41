// Package chart is a small charting library that draws bar, line, pie and
// doughnut charts onto a canvas.Context.
//
// A Library holds everything that is global in a browser charting library:
// style defaults, registered plugins and controllers, and the live chart
// instances. Each Library is independent, which is what lets a render
// service own a private copy obtained through modcache.FreshRequire.
//
// # Lifecycle
//
// Library.New validates the configuration, runs the init hooks, lays the
// chart out and draws it. Drawing is synchronous: when animation is enabled
// every frame of a virtual 60 fps clock is drawn before New returns, and the
// OnProgress and OnComplete callbacks see each frame as it completes. Plugins
// join the lifecycle by implementing any of the hook interfaces in plugin.go.
//
// Per frame the order is: clear, beforeDraw, layout boxes (title, legend),
// scales, beforeDatasetsDraw, then each visible dataset from last to first
// wrapped in beforeDatasetDraw/afterDatasetDraw, then afterDatasetsDraw and
// afterDraw. After the last frame afterRender runs, followed by OnComplete.
//
// A plugin may call Chart.Destroy from any hook. The remaining hooks are
// skipped and Chart.Canvas returns nil from then on.
package chart
