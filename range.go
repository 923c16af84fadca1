package epsilon

// Range is the half-open interval [Start, End).
type Range[T any] struct{ Start, End T }

// RangeFrom is the interval [Start, ∞).
type RangeFrom[T any] struct{ Start T }

// RangeTo is the interval (-∞, End).
type RangeTo[T any] struct{ End T }

// RangeInclusive is the closed interval [Start, End].
type RangeInclusive[T any] struct{ Start, End T }

// RangeToInclusive is the interval (-∞, End].
type RangeToInclusive[T any] struct{ End T }

// RangeFull is the unbounded interval.
type RangeFull struct{}

func shapeTag(tag string) func(h *Hasher) {
	return func(h *Hasher) { h.WriteString(tag) }
}

// Ranges are records of their bounds tagged with their own shape name. Each
// bound is written as a field, start before end.

func RangeOf[T, E any](c Codec[T, E]) Codec[Range[T], Range[E]] {
	return &record[Range[T], Range[E]]{
		name:  "Range[" + c.TypeName() + "]",
		shape: shapeTag("Range"),
		fields: []FieldCodec[Range[T], Range[E]]{
			Field("start", c, func(r *Range[T]) *T { return &r.Start }, func(v *Range[E]) *E { return &v.Start }),
			Field("end", c, func(r *Range[T]) *T { return &r.End }, func(v *Range[E]) *E { return &v.End }),
		},
	}
}

func RangeFromOf[T, E any](c Codec[T, E]) Codec[RangeFrom[T], RangeFrom[E]] {
	return &record[RangeFrom[T], RangeFrom[E]]{
		name:  "RangeFrom[" + c.TypeName() + "]",
		shape: shapeTag("RangeFrom"),
		fields: []FieldCodec[RangeFrom[T], RangeFrom[E]]{
			Field("start", c, func(r *RangeFrom[T]) *T { return &r.Start }, func(v *RangeFrom[E]) *E { return &v.Start }),
		},
	}
}

func RangeToOf[T, E any](c Codec[T, E]) Codec[RangeTo[T], RangeTo[E]] {
	return &record[RangeTo[T], RangeTo[E]]{
		name:  "RangeTo[" + c.TypeName() + "]",
		shape: shapeTag("RangeTo"),
		fields: []FieldCodec[RangeTo[T], RangeTo[E]]{
			Field("end", c, func(r *RangeTo[T]) *T { return &r.End }, func(v *RangeTo[E]) *E { return &v.End }),
		},
	}
}

func RangeInclusiveOf[T, E any](c Codec[T, E]) Codec[RangeInclusive[T], RangeInclusive[E]] {
	return &record[RangeInclusive[T], RangeInclusive[E]]{
		name:  "RangeInclusive[" + c.TypeName() + "]",
		shape: shapeTag("RangeInclusive"),
		fields: []FieldCodec[RangeInclusive[T], RangeInclusive[E]]{
			Field("start", c, func(r *RangeInclusive[T]) *T { return &r.Start }, func(v *RangeInclusive[E]) *E { return &v.Start }),
			Field("end", c, func(r *RangeInclusive[T]) *T { return &r.End }, func(v *RangeInclusive[E]) *E { return &v.End }),
		},
	}
}

func RangeToInclusiveOf[T, E any](c Codec[T, E]) Codec[RangeToInclusive[T], RangeToInclusive[E]] {
	return &record[RangeToInclusive[T], RangeToInclusive[E]]{
		name:  "RangeToInclusive[" + c.TypeName() + "]",
		shape: shapeTag("RangeToInclusive"),
		fields: []FieldCodec[RangeToInclusive[T], RangeToInclusive[E]]{
			Field("end", c, func(r *RangeToInclusive[T]) *T { return &r.End }, func(v *RangeToInclusive[E]) *E { return &v.End }),
		},
	}
}

// RangeFullOf writes nothing.
func RangeFullOf() Codec[RangeFull, RangeFull] {
	return &record[RangeFull, RangeFull]{name: "RangeFull", shape: shapeTag("RangeFull")}
}
