package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBindings(t *testing.T) {
	var moves [][2]int
	toggled, shots := 0, 0
	bindings := DefaultBindings("ctrl", Actions{
		ToggleVisibility: func() { toggled++ },
		TakeScreenshot:   func() { shots++ },
		Move:             func(dx, dy int) { moves = append(moves, [2]int{dx, dy}) },
	})
	require.NoError(t, Validate(bindings))

	byName := make(map[string]Binding)
	for _, b := range bindings {
		byName[b.Name] = b
	}

	tests := []struct {
		name  string
		chord string
		move  [2]int
	}{
		{"move-up", "ctrl+up", [2]int{0, -MoveStep}},
		{"move-down", "ctrl+down", [2]int{0, MoveStep}},
		{"move-left", "ctrl+left", [2]int{-MoveStep, 0}},
		{"move-right", "ctrl+right", [2]int{MoveStep, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := byName[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.chord, b.Chord())

			moves = nil
			b.Action()
			assert.Equal(t, [][2]int{tt.move}, moves)
		})
	}

	byName["toggle-visibility"].Action()
	byName["take-screenshot"].Action()
	assert.Equal(t, 1, toggled)
	assert.Equal(t, 1, shots)
}

func TestDefaultBindingsSkipsNilActions(t *testing.T) {
	bindings := DefaultBindings("cmd", Actions{ToggleVisibility: func() {}})
	require.Len(t, bindings, 1)
	assert.Equal(t, "\\+cmd", bindings[0].Chord())
}

func TestChordIgnoresOrderAndCase(t *testing.T) {
	a := Binding{Keys: []string{"Up", "CTRL"}}
	b := Binding{Keys: []string{"ctrl", "up"}}
	assert.Equal(t, a.Chord(), b.Chord())
}

func TestValidate(t *testing.T) {
	noop := func() {}

	tests := []struct {
		name     string
		bindings []Binding
		wantErr  string
	}{
		{"ok", []Binding{{Name: "a", Keys: []string{"a", "ctrl"}, Action: noop}}, ""},
		{"no keys", []Binding{{Name: "a", Action: noop}}, `binding "a" has no keys`},
		{"no action", []Binding{{Name: "a", Keys: []string{"a"}}}, `binding "a" has no action`},
		{
			"duplicate chord",
			[]Binding{
				{Name: "a", Keys: []string{"ctrl", "up"}, Action: noop},
				{Name: "b", Keys: []string{"up", "ctrl"}, Action: noop},
			},
			`chord ctrl+up bound to both "a" and "b"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.bindings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStartRejectsInvalidBindings(t *testing.T) {
	m := NewManager(nil, Binding{Name: "broken"})
	assert.Error(t, m.Start())
	m.Stop()
}
