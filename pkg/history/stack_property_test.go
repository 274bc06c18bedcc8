package history

import (
	"testing"

	"pgregory.net/rapid"
)

// model is a reference implementation of the stack's observable shape.
type model struct {
	undo, redo []string
	limit      int
}

func (m *model) execute(label string) {
	m.undo = append(m.undo, label)
	m.redo = nil

	if len(m.undo) > m.limit {
		m.undo = m.undo[len(m.undo)-m.limit:]
	}
}

func (m *model) undoTop(ok bool) {
	if len(m.undo) == 0 {
		return
	}

	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	if ok {
		m.redo = append(m.redo, top)
	}
}

func (m *model) redoTop(ok bool) {
	if len(m.redo) == 0 {
		return
	}

	top := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	if ok {
		m.undo = append(m.undo, top)
		if len(m.undo) > m.limit {
			m.undo = m.undo[len(m.undo)-m.limit:]
		}
	}
}

func TestProperty_CommandStackMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 6).Draw(rt, "limit")
		s := NewCommandStack(WithMaxUndo(limit))
		m := &model{limit: limit}

		canUndo, canRedo := false, false

		s.OnCanUndo(func(v bool) {
			if v == canUndo {
				rt.Fatalf("canUndo notified without transition: %v", v)
			}

			canUndo = v
		})
		s.OnCanRedo(func(v bool) {
			if v == canRedo {
				rt.Fatalf("canRedo notified without transition: %v", v)
			}

			canRedo = v
		})

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := range steps {
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				cmd := newFake(rapid.StringMatching(`[a-z]{1,4}`).Draw(rt, "label"), nil)
				cmd.failExec = rapid.Float64Range(0, 1).Draw(rt, "execFailure") < 0.2
				s.Execute(cmd)

				if !cmd.failExec {
					m.execute(cmd.label)
				}
			case 1:
				ok := true
				if top, found := s.PeekUndo(); found {
					fc, _ := top.(*fakeCommand)
					fc.failUndo = rapid.Float64Range(0, 1).Draw(rt, "undoFailure") < 0.1
					ok = !fc.failUndo
				}

				s.Undo()
				m.undoTop(ok)
			case 2:
				ok := true
				if top, found := s.PeekRedo(); found {
					fc, _ := top.(*fakeCommand)
					fc.failRedo = rapid.Float64Range(0, 1).Draw(rt, "redoFailure") < 0.1
					ok = !fc.failRedo
				}

				s.Redo()
				m.redoTop(ok)
			}

			assertShape(rt, i, s, m)

			if canUndo != s.CanUndo() || canRedo != s.CanRedo() {
				rt.Fatalf("step %d: observers saw undo=%v redo=%v, stack has undo=%v redo=%v",
					i, canUndo, canRedo, s.CanUndo(), s.CanRedo())
			}
		}
	})
}

func assertShape(rt *rapid.T, step int, s *CommandStack, m *model) {
	got := labels(s.UndoCommands())
	if len(got) > m.limit {
		rt.Fatalf("step %d: undo stack has %d entries, limit %d", step, len(got), m.limit)
	}

	if !equalStrings(got, m.undo) {
		rt.Fatalf("step %d: undo stack %v, want %v", step, got, m.undo)
	}

	if gotRedo := labels(s.RedoCommands()); !equalStrings(gotRedo, m.redo) {
		rt.Fatalf("step %d: redo stack %v, want %v", step, gotRedo, m.redo)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
