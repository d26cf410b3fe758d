package store

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/castleplan/experiment"
)

// Publisher is the part of a NATS connection the recorder uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSRecorder publishes parameters to <prefix>.param and snapshots to
// <prefix>.snapshot as JSON.
type NATSRecorder struct {
	pub    Publisher
	prefix string
	nc     *nats.Conn
}

// DialNATS connects to the server at url.
func DialNATS(url, prefix string) (*NATSRecorder, error) {
	nc, err := nats.Connect(url, nats.Name("castleplan"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	r := NewNATSRecorder(nc, prefix)
	r.nc = nc
	return r, nil
}

func NewNATSRecorder(pub Publisher, prefix string) *NATSRecorder {
	return &NATSRecorder{pub: pub, prefix: prefix}
}

// Close flushes and closes the connection if the recorder dialed it.
func (r *NATSRecorder) Close() error {
	if r.nc == nil {
		return nil
	}
	err := r.nc.Flush()
	r.nc.Close()
	return err
}

func (r *NATSRecorder) LogParameter(name string, value any) {
	r.publish("param", experiment.Parameter{Name: name, Value: value})
}

func (r *NATSRecorder) LogSnapshot(s experiment.Snapshot) {
	r.publish("snapshot", s)
}

func (r *NATSRecorder) publish(kind string, v any) {
	subject := r.prefix + "." + kind
	data, err := json.Marshal(v)
	if err != nil {
		log.Err(err).Str("subject", subject).Msg("nats-marshal-failed")
		return
	}
	if err := r.pub.Publish(subject, data); err != nil {
		log.Err(err).Str("subject", subject).Msg("nats-publish-failed")
	}
}
