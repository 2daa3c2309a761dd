package filter

// ApplyEdit applies a single slider edit to the live ranges, enforcing the
// capital = land + improvements coupling, and reports which mode the edit
// puts the UI in. It is pure: no I/O, no timers.
//
// Editing a component recomputes capital from both components' live values,
// so after any sequence of component edits capital.Low == land.Low +
// improvements.Low and likewise for High. Editing capital leaves the
// components untouched: decomposing a total into components is ambiguous, so
// the coupling is deliberately one-way and the equality may not hold while in
// ModeTotal.
func ApplyEdit(field Field, edit Range, live Ranges) (Ranges, Mode) {
	if edit.Low > edit.High {
		edit.Low, edit.High = edit.High, edit.Low
	}

	if field == FieldCapital {
		return live.Set(FieldCapital, edit), ModeTotal
	}

	out := live.Set(field, edit)
	out.Capital = Range{
		Low:  out.Land.Low + out.Improvements.Low,
		High: out.Land.High + out.Improvements.High,
	}
	return out, ModeComponents
}
