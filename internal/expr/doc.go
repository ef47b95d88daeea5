/*
Package expr compiles and evaluates the small expression language used by
field expressions, hide expressions and expression-based validators.

Sources use a JavaScript-flavoured surface (`model.age >= 18 && !field.hide`,
`'text'`, `===`) that is normalized and parsed with the HCL native syntax
parser. Only a restricted node subset is accepted: literals, property and
index access, unary and binary operators, conditionals, tuple and object
constructors and calls to a fixed function allow-list. Evaluation runs over
plain Go values with JavaScript truthiness and lenient lookups: reading
through a missing value yields nil instead of failing.
*/
package expr
