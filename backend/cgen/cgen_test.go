package cgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structspec/structspec/backend"
	"github.com/structspec/structspec/backend/cgen"
	"github.com/structspec/structspec/internal/testutil"
	"github.com/structspec/structspec/layout"
	"github.com/structspec/structspec/parser"
	"github.com/structspec/structspec/reporter"
)

func emit(t *testing.T, src string) string {
	t.Helper()
	h := reporter.NewHandler(nil)
	doc, err := parser.Parse("test.yaml", strings.NewReader(src), h)
	require.NoError(t, err)
	set, err := layout.Compile(doc, h)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, cgen.New().Emit(&buf, set, backend.Options{}))
	return buf.String()
}

func TestBackendIdentity(t *testing.T) {
	t.Parallel()
	b := cgen.New()
	assert.Equal(t, "c", b.Name())
	assert.Equal(t, "h", b.FileExtension())
}

func TestEmitGoldenDocument(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: Golden
enums:
  color:
    options:
      red:
        value: 0
      green:
        value: 5
packets:
  header:
    endianness: big
    structure:
      tag:
        type: uint8_t
      value:
        type: uint16_t
`)

	want := `/*
 * Golden
 */
#ifndef GOLDEN_H
#define GOLDEN_H

#include <stddef.h>
#include <stdint.h>
#include <string.h>

static inline uint16_t ss_load16_be(const uint8_t *p) {
    return (uint16_t)((uint16_t)p[0] << 8 | (uint16_t)p[1]);
}

static inline uint16_t ss_load16_le(const uint8_t *p) {
    return (uint16_t)((uint16_t)p[1] << 8 | (uint16_t)p[0]);
}

static inline uint32_t ss_load24_be(const uint8_t *p) {
    return (uint32_t)p[0] << 16 | (uint32_t)p[1] << 8 | (uint32_t)p[2];
}

static inline uint32_t ss_load24_le(const uint8_t *p) {
    return (uint32_t)p[2] << 16 | (uint32_t)p[1] << 8 | (uint32_t)p[0];
}

static inline uint32_t ss_load32_be(const uint8_t *p) {
    return (uint32_t)p[0] << 24 | (uint32_t)p[1] << 16 |
           (uint32_t)p[2] << 8 | (uint32_t)p[3];
}

static inline uint32_t ss_load32_le(const uint8_t *p) {
    return (uint32_t)p[3] << 24 | (uint32_t)p[2] << 16 |
           (uint32_t)p[1] << 8 | (uint32_t)p[0];
}

static inline uint64_t ss_load64_be(const uint8_t *p) {
    return (uint64_t)ss_load32_be(p) << 32 | (uint64_t)ss_load32_be(p + 4);
}

static inline uint64_t ss_load64_le(const uint8_t *p) {
    return (uint64_t)ss_load32_le(p + 4) << 32 | (uint64_t)ss_load32_le(p);
}

typedef enum {
    red = 0,
    green = 5
} color;

typedef struct {
    uint8_t tag;
    uint16_t value;
} header;

#define HEADER_LEN 3

static inline long unpack_header(const uint8_t *buf, size_t len, header *out) {
    size_t pos = 0;
    if (len - pos < 1) return -1;
    memcpy(&out->tag, buf + pos, 1);
    pos += 1;
    if (len - pos < 2) return -1;
    out->value = (uint16_t)ss_load16_be(buf + pos);
    pos += 2;
    return (long)pos;
}

static inline long header_size(const uint8_t *buf, size_t len) {
    (void)buf;
    (void)len;
    return 3;
}

#endif /* GOLDEN_H */
`
	testutil.RequireEqualText(t, want, out)
}

func TestEmitGuardAndIncludes(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: Test Protocol
packets:
  p:
    structure:
      v:
        type: uint8_t
`)
	testutil.RequireContainsLines(t, out,
		"#ifndef TEST_PROTOCOL_H",
		"#define TEST_PROTOCOL_H",
		"#include <stdint.h>",
		"#endif /* TEST_PROTOCOL_H */",
	)
}

func TestEmitStructAndUnpack(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
endianness: big
packets:
  header:
    structure:
      magic:
        type: uint32_t
      flags:
        type: uint8_t
        size: 3
      ver:
        type: uint8_t
        size: 5
      name:
        type: string
        count: 4
`)
	testutil.RequireContainsLines(t, out,
		"typedef struct {",
		"    uint32_t magic;",
		"    uint8_t flags;  /* 3 bits */",
		"    uint8_t ver;  /* 5 bits */",
		"    char name[4];",
		"} header;",
		"#define HEADER_LEN 9",
		"static inline long unpack_header(const uint8_t *buf, size_t len, header *out) {",
		"out->magic = (uint32_t)ss_load32_be(buf + pos);",
		"out->flags = (uint8_t)((unit0 >> 0) & 0x7);",
		"out->ver = (uint8_t)((unit0 >> 3) & 0x1f);",
		"return (long)pos;",
	)
}

func TestEmitIntegerEnum(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
enums:
  colors:
    options:
      red:
      green:
        value: 5
`)
	testutil.RequireContainsLines(t, out,
		"typedef enum {",
		"    red = 0,",
		"    green = 5",
		"} colors;",
	)
}

func TestEmitNonIntegerEnumAsDefines(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
enums:
  labels:
    options:
      greeting:
        value: hello
`)
	assert.NotContains(t, out, "typedef enum")
	assert.Contains(t, out, `#define greeting "hello"`)
}

func TestEmitSubstructureOrdering(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
packets:
  outer:
    structure:
      head:
        type: "#/packets/inner"
      body:
        type: uint32_t
  inner:
    structure:
      tag:
        type: uint16_t
`)
	// C needs inner's declarations before outer uses them
	testutil.RequireContainsLines(t, out,
		"} inner;",
		"} outer;",
		"static inline long unpack_inner(",
		"static inline long unpack_outer(",
		"long n = unpack_inner(buf + pos, len - pos, &out->head);",
	)
}

func TestEmitRuntimeSize(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
packets:
  msg:
    structure:
      len:
        type: uint16_t
      data:
        type: uint8_t
        count: "#/packets/msg/structure/len/value"
`)
	// a runtime-dependent packet gets no length macro, only a size function
	assert.NotContains(t, out, "MSG_LEN")
	testutil.RequireContainsLines(t, out,
		"size_t n = (size_t)out->len;",
		"static inline long msg_size(const uint8_t *buf, size_t len) {",
		"return unpack_msg(buf, len, &tmp);",
	)
}

func TestEmitConstantSizeFunction(t *testing.T) {
	t.Parallel()
	out := emit(t, `
title: test
packets:
  fixed:
    structure:
      v:
        type: uint32_t
`)
	testutil.RequireContainsLines(t, out,
		"#define FIXED_LEN 4",
		"static inline long fixed_size(const uint8_t *buf, size_t len) {",
		"    return 4;",
	)
}
