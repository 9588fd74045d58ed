package events

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"vtts-analysis/internal/domain"

	"github.com/klauspost/compress/gzip"
)

// XMLSource streams events from a MATSim-style events document:
//
//	<events version="1.0">
//	  <event time="21600.0" type="departure" person="1" legMode="car" />
//	</events>
//
// Events of types the analysis does not use are skipped.
type XMLSource struct {
	dec     *xml.Decoder
	closers []io.Closer
}

func NewXMLSource(r io.Reader) *XMLSource {
	return &XMLSource{dec: xml.NewDecoder(r)}
}

// OpenXMLFile opens an events file. Files ending in ".gz" are decompressed.
func OpenXMLFile(path string) (*XMLSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events %q: %w", path, err)
	}

	var r io.Reader = bufio.NewReaderSize(f, 1<<16)
	closers := []io.Closer{f}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open events %q: gzip: %w", path, err)
		}
		r = gz
		closers = append([]io.Closer{gz}, closers...)
	}

	src := NewXMLSource(r)
	src.closers = closers
	return src, nil
}

func (s *XMLSource) ReadEvent(ctx context.Context) (domain.Event, error) {
	for {
		tok, err := s.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read xml events: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "event" {
			continue
		}

		rec, err := recordFromAttrs(start.Attr)
		if err != nil {
			line, _ := s.dec.InputPos()
			return nil, fmt.Errorf("read xml events: line %d: %w", line, err)
		}
		ev, err := rec.toEvent()
		if err != nil {
			line, _ := s.dec.InputPos()
			return nil, fmt.Errorf("read xml events: line %d: %w", line, err)
		}
		if ev != nil {
			return ev, nil
		}
	}
}

func (s *XMLSource) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func recordFromAttrs(attrs []xml.Attr) (eventRecord, error) {
	var rec eventRecord
	for _, a := range attrs {
		var err error
		switch a.Name.Local {
		case "time":
			rec.Time, err = parseFloatAttr("time", a.Value)
		case "type":
			rec.Type = a.Value
		case "person":
			rec.Person = a.Value
		case "legMode":
			rec.LegMode = a.Value
		case "actType":
			rec.ActType = a.Value
		case "amount":
			rec.Amount, err = parseFloatAttr("amount", a.Value)
		case "kind":
			rec.Kind = a.Value
		case "purpose":
			rec.Purpose = a.Value
		}
		if err != nil {
			return eventRecord{}, err
		}
	}
	return rec, nil
}
