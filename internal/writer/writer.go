// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/amsky-bridge/internal/status"
)

// Fanout delivers every snapshot and property event to all sinks.
// One failing sink never blocks the others.
type Fanout struct {
	names   []string
	writers []Writer
}

// NewFanout builds an empty fanout.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a named sink.
func (f *Fanout) Add(name string, w Writer) {
	f.names = append(f.names, name)
	f.writers = append(f.writers, w)
}

// Len reports the number of sinks.
func (f *Fanout) Len() int { return len(f.writers) }

func (f *Fanout) Write(s status.Snapshot) error {
	var errs []string

	for i, w := range f.writers {
		if err := w.Write(s); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.names[i], err))
		}
	}

	return joined(errs)
}

func (f *Fanout) WriteProperty(p status.TextProperty) error {
	var errs []string

	for i, w := range f.writers {
		pw, ok := w.(PropertyWriter)
		if !ok {
			continue
		}
		if err := pw.WriteProperty(p); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.names[i], err))
		}
	}

	return joined(errs)
}

func (f *Fanout) DeleteProperty(device, name string) error {
	var errs []string

	for i, w := range f.writers {
		pw, ok := w.(PropertyWriter)
		if !ok {
			continue
		}
		if err := pw.DeleteProperty(device, name); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.names[i], err))
		}
	}

	return joined(errs)
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New("writer: " + strings.Join(errs, " | "))
}
