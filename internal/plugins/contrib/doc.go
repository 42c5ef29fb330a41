// Package contrib holds loadable plugin modules, one for each loading
// convention the plugin loader supports. Each registers itself in
// modcache.Default from init; importing the package for its side effects
// makes them loadable by identifier:
//
//	chartjs-plugin-annotation    requireChartJSLegacy  reference lines and boxes
//	chartjs-plugin-colorschemes  globalVariableLegacy  dataset colours from a named palette
//	chartjs-plugin-datalabels    modern                value labels on each element
//	chartjs-plugin-watermark     requireLegacy         corner image or text stamp
package contrib
