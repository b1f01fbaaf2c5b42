package record

import (
	"errors"

	"github.com/anisan-cli/playtrack/log"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type tee []Sink

// Tee fans every record out to all sinks. A failing sink does not stop the others.
func Tee(sinks ...Sink) Sink {
	return tee(lo.Compact(sinks))
}

func (t tee) Write(r Record) error {
	var errs []error
	for _, s := range t {
		if err := s.Write(r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t tee) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// LogSink writes records to a logrus entry at debug level.
type LogSink struct {
	Entry *logrus.Entry
}

func (l LogSink) Write(r Record) error {
	if l.Entry == nil {
		return nil
	}

	fields := logrus.Fields{
		log.FieldScope: r.Scope,
		log.FieldKind:  r.Kind,
	}

	if r.SessionID != "" {
		fields[log.FieldSession] = r.SessionID
	}

	if r.Name != "" {
		fields[log.FieldName] = r.Name
	}

	if len(r.Values) > 0 {
		fields[log.FieldValues] = r.Values
	}

	if len(r.Attrs) > 0 {
		fields[log.FieldAttrs] = r.Attrs
	}

	if len(r.Info) > 0 {
		fields[log.FieldInfo] = r.Info
	}

	l.Entry.WithFields(fields).Debug("analytics")
	return nil
}

func (LogSink) Close() error {
	return nil
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write(Record) error { return nil }
func (discard) Close() error       { return nil }
