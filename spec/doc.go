// Package spec contains the object model for binary packet format
// specifications. A Specification is the root of the model and holds
// enumerations and packet definitions in document order, which is
// significant: the order of fields within a packet is the wire order.
//
// Values of these types are produced by the parser package and are treated
// as immutable once loaded. The layout package derives compiled layouts
// from them without ever mutating them, so a single Specification may be
// shared between concurrent compilations.
package spec
