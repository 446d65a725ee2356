// Package layout is the core of the structspec compiler: it turns an
// immutable spec.Specification into a Set of fully resolved packet layouts.
//
// Compilation happens in three phases. Enumerations are compiled first so
// that references into them can be resolved to compile-time constants.
// Packets are then ordered so that substructures compile before the packets
// that contain them (a cyclic substructure reference is a compile error).
// Finally each packet's fields are walked in declaration order, classifying
// every field as a primitive, bitfield, array, substructure, or padding
// segment and accumulating the packet's size expression.
//
// Failures never stop the whole document: a failing packet is reported
// through the reporter.Handler and omitted from the Set, and every other
// packet still compiles, so a caller sees all problems in one pass.
package layout
