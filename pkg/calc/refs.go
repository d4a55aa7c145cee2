package calc

// Callback is invoked after a write to a subscribed column. oldValue and
// newValue are the column's previous and coerced new values, ref and
// refColumn the target registered with the subscription, and source the cell
// that was written.
type Callback func(oldValue, newValue any, ref *Cell, refColumn string, source *Cell) error

// Subscription is a registered reaction to writes on one column.
type Subscription struct {
	Ref       *Cell    // Target cell handed to Callback.
	RefColumn string   // Target column handed to Callback.
	Callback  Callback // Reaction to run after each write.
}

// RefCallback registers cb to run after every write to column. Subscriptions
// on a column run in registration order; registering the same triple twice
// makes it run twice. The target cell is not told about the subscription.
// It returns an *Error with code InvalidArgument when column is undeclared.
func (c *Cell) RefCallback(column string, ref *Cell, refColumn string, cb Callback) error {
	if !c.Has(column) {
		return invalidColumn("subscribe", column)
	}
	c.refs[column] = append(c.refs[column], Subscription{
		Ref:       ref,
		RefColumn: refColumn,
		Callback:  cb,
	})
	return nil
}

// Subscriptions returns the subscriptions registered on column, in order.
func (c *Cell) Subscriptions(column string) []Subscription {
	subs := c.refs[column]
	out := make([]Subscription, len(subs))
	copy(out, subs)
	return out
}

// RefAdd keeps ref[refColumn] in step with column: every write adds
// new-old to the target, so a target starting from the sum of its
// contributors stays equal to that sum.
//
// Links are not checked for cycles. Two cells linked to each other through
// RefAdd recurse on the first write until the stack is exhausted.
func (c *Cell) RefAdd(column string, ref *Cell, refColumn string) error {
	return c.RefCallback(column, ref, refColumn, addDelta)
}

// RefMultiply multiplies ref[refColumn] by new-old after every write to
// column. The factor is the change of the source, not its new value.
func (c *Cell) RefMultiply(column string, ref *Cell, refColumn string) error {
	return c.RefCallback(column, ref, refColumn, multiplyDelta)
}

func addDelta(oldValue, newValue any, ref *Cell, refColumn string, _ *Cell) error {
	return applyDelta('+', oldValue, newValue, ref, refColumn)
}

func multiplyDelta(oldValue, newValue any, ref *Cell, refColumn string, _ *Cell) error {
	return applyDelta('*', oldValue, newValue, ref, refColumn)
}

func applyDelta(op byte, oldValue, newValue any, ref *Cell, refColumn string) error {
	o, err := operand(oldValue)
	if err != nil {
		return err
	}
	n, err := operand(newValue)
	if err != nil {
		return err
	}
	cur, err := operand(ref.Get(refColumn))
	if err != nil {
		return err
	}
	return ref.Set(refColumn, arith(op, cur, arith('-', n, o)).value())
}

// dispatch runs the subscriptions of column. The first callback error stops
// dispatch and is returned unchanged.
func (c *Cell) dispatch(column string, oldValue, newValue any) error {
	for _, sub := range c.refs[column] {
		if err := sub.Callback(oldValue, newValue, sub.Ref, sub.RefColumn, c); err != nil {
			return err
		}
	}
	return nil
}
