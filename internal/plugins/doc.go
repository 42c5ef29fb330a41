// Package plugins loads charting plugins onto a chart.Library and provides
// the two extensions the render service installs itself.
//
// Plugins arrive in four groups, one per historical loading convention.
// Load applies them in a fixed order:
//
//  1. requireChartJSLegacy: the plugin Requires "chart.js" and registers
//     itself. The library is bound under "chart.js" while these load, and
//     each plugin's cache entry is evicted afterwards so the next service
//     loads it against its own library.
//  2. globalVariableLegacy: the plugin reads the "Chart" global. The global
//     is published only while the group loads.
//  3. modern: identifiers are loaded fresh and registered, plugin values are
//     registered as they are.
//  4. requireLegacy: the plugin module is loaded fresh and its exports
//     registered.
//
// BackgroundFill paints the surface colour beneath each chart and
// AnimationCapture collects encoded frames while a chart animates.
package plugins
