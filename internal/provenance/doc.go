// Package provenance recognizes and strips the marker tokens macro expansion
// leaves around generated content.
//
// A producer span looks like
//
//	<meta typeof="mw:Object/Template" data-mw-src="{{echo|x}}"/> ... <meta typeof="mw:Object/Template/End"/>
//
// Scan walks one expanded attribute field once, drops every meta tag, and
// reports the first producer type seen together with the source text the
// field was written as.
package provenance
