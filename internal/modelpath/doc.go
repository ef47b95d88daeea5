// internal/modelpath/doc.go

/*
Package modelpath resolves field keys into locations inside a nested data
model.

A key is either a dotted/bracketed string such as `address.lines[0].text`,
an integer, or a list of literal segments. Parsing produces a Path, a
sequence of segments where all-digit segments are array-like. Writes create
missing intermediate containers: an array-like next segment creates a []any,
anything else creates a map[string]any. Once a container exists its kind
wins over the shape of later segments.
*/
package modelpath
