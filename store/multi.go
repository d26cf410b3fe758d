package store

import "github.com/domino14/castleplan/experiment"

// Multi sends everything to each of its recorders in turn.
type Multi []experiment.Recorder

func (m Multi) LogParameter(name string, value any) {
	for _, r := range m {
		r.LogParameter(name, value)
	}
}

func (m Multi) LogSnapshot(s experiment.Snapshot) {
	for _, r := range m {
		r.LogSnapshot(s)
	}
}
