// Package structspec provides the entry point for compiling declarative,
// language-neutral binary packet format specifications into fully resolved
// layouts. "Compile" here means loading and parsing specification
// documents, resolving enumerations and cross-field references, grouping
// bitfields into storage units, and computing size expressions; rendering
// the compiled layouts into target-language source is left to the backends.
//
// The sub-packages represent the compile phases and contain the models for
// their results:
//  1. Parse a document into the object model.
//     Also see: parser.Parse
//  2. Compile the model into resolved layouts.
//     Also see: layout.Compile
//  3. Emit target-language artifacts from the layouts.
//     Also see: backend.Backend
//
// This package ties the phases together behind a Compiler that can process
// many independent documents in parallel. Errors from every phase flow
// through a reporter.Handler, which is how an entire document's worth of
// problems is collected in one pass instead of stopping at the first.
package structspec
