/*

Package csdemo decodes Counter-Strike 2 (Source 2) demo files (*.dem) into the
low-level building blocks a higher-level model needs: a bit-level reader, a
frame splitter, a flattened-serializer tree, a field-path Huffman decoder, a
typed value decoder with quantized-float support, an entity table, string
tables and a game-event descriptor/emitter.

The split is deliberate: this package holds the bit-exact wire format, and
the companion high-level package (csdemo/demo) turns the decoded primitives
into a typed, column-oriented result. Most callers should use csdemo/demo
instead of this package directly.

*/
package csdemo
