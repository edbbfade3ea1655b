// Package attrexp is the attribute expansion transform.
//
// A start or self-closing tag with attributes is cloned and its attribute
// list handed to an expand.AttrExpander. When the expansion completes, each
// generated field is scanned for provenance markers, the markers are
// stripped, and one new marker per generated field is emitted ahead of the
// tag:
//
//	<meta property="mw:objectAttrVal#href" about="#mwt3"/>
//	<a href="..." about="#mwt3" typeof="mw:ExpandedAttrs/Template">
//
// Every other token passes through unchanged and synchronously.
package attrexp
