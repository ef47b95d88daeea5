// Package forms is the reactive control layer the field tree binds to.
//
// A FieldControl holds one value; a Group holds named child controls and
// derives its value and status from them. Every control carries a status
// (VALID, INVALID, PENDING or DISABLED), a merged error mapping produced by
// its validators, touched/dirty flags and a value-change stream. Validity is
// recomputed bottom-up: updating a control re-runs its validators and then
// its ancestors'.
package forms
