package store

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/domino14/castleplan/experiment"
)

type yamlRecord struct {
	Parameter *experiment.Parameter `yaml:"parameter,omitempty"`
	Snapshot  *experiment.Snapshot  `yaml:"snapshot,omitempty"`
}

// YAMLRecorder appends every parameter and snapshot to w as a separate YAML
// document.
type YAMLRecorder struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewYAMLRecorder(w io.Writer) *YAMLRecorder {
	return &YAMLRecorder{w: w}
}

func (r *YAMLRecorder) LogParameter(name string, value any) {
	r.write(yamlRecord{Parameter: &experiment.Parameter{Name: name, Value: value}})
}

func (r *YAMLRecorder) LogSnapshot(s experiment.Snapshot) {
	r.write(yamlRecord{Snapshot: &s})
}

// Err returns the first write error, if any. Writing stops after it.
func (r *YAMLRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *YAMLRecorder) write(rec yamlRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	out, err := yaml.Marshal(rec)
	if err != nil {
		r.err = fmt.Errorf("marshalling record: %w", err)
		return
	}
	if _, err := fmt.Fprintf(r.w, "---\n%s", out); err != nil {
		r.err = err
	}
}

// ReadYAML parses a stream written by a YAMLRecorder.
func ReadYAML(rd io.Reader) ([]experiment.Parameter, []experiment.Snapshot, error) {
	var params []experiment.Parameter
	var snaps []experiment.Snapshot
	dec := yaml.NewDecoder(rd)
	for {
		var rec yamlRecord
		err := dec.Decode(&rec)
		if err == io.EOF {
			return params, snaps, nil
		}
		if err != nil {
			return nil, nil, err
		}
		if rec.Parameter != nil {
			params = append(params, *rec.Parameter)
		}
		if rec.Snapshot != nil {
			snaps = append(snaps, *rec.Snapshot)
		}
	}
}
