// Package calc defines Cell, a schema-typed record whose columns coerce
// written values to a declared type and propagate changes to other cells
// through registered callbacks.
//
// A Cell is built from an ordered list of columns:
//
//	line := calc.New(calc.Col("qty", calc.TypeInt), calc.Col("amount", calc.TypeInt))
//	order := calc.New(calc.Col("total", calc.TypeInt))
//	_ = line.RefAdd("amount", order, "total")
//	_ = line.Set("amount", 5) // order.total is now 5
//
// Propagation is synchronous and runs in registration order. There is no
// cycle detection: two cells linked to each other recurse until the stack
// runs out. Cells are not safe for concurrent use.
package calc
