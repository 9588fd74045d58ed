package events

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"vtts-analysis/internal/domain"

	"github.com/klauspost/compress/gzip"
	"github.com/segmentio/kafka-go"
)

const sampleXML = `<?xml version="1.0" encoding="utf-8"?>
<events version="1.0">
	<event time="21600.0" type="actend" person="1" link="l1" actType="home" />
	<event time="21600.0" type="departure" person="1" link="l1" legMode="car" />
	<event time="21700.0" type="left link" link="l1" vehicle="1" />
	<event time="22200.0" type="arrival" person="1" link="l2" legMode="car" />
	<event time="22200.0" type="personMoney" person="1" amount="-1.2" purpose="toll" />
	<event time="22200.0" type="personScore" person="1" amount="-0.05" kind="travelTime" />
	<event time="22200.0" type="actstart" person="1" link="l2" actType="work" />
</events>
`

func readAll(t *testing.T, src interface {
	ReadEvent(context.Context) (domain.Event, error)
}) []domain.Event {
	t.Helper()
	var out []domain.Event
	for {
		ev, err := src.ReadEvent(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, ev)
	}
}

func TestXMLSourceSkipsUnknownTypes(t *testing.T) {
	got := readAll(t, NewXMLSource(strings.NewReader(sampleXML)))

	want := []domain.Event{
		domain.ActivityEnd{Time: 21600, PersonID: "1", ActType: "home"},
		domain.Departure{Time: 21600, PersonID: "1", Mode: "car"},
		domain.Arrival{Time: 22200, PersonID: "1", Mode: "car"},
		domain.PersonMoney{Time: 22200, PersonID: "1", Amount: -1.2, Purpose: "toll"},
		domain.PersonScore{Time: 22200, PersonID: "1", Amount: -0.05, Kind: "travelTime"},
		domain.ActivityStart{Time: 22200, PersonID: "1", ActType: "work"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestXMLSourceBadAttribute(t *testing.T) {
	src := NewXMLSource(strings.NewReader(`<events><event time="abc" type="departure" person="1" legMode="car"/></events>`))
	if _, err := src.ReadEvent(context.Background()); err == nil {
		t.Fatalf("expected error for malformed time")
	}
}

func TestXMLSourceMissingPerson(t *testing.T) {
	src := NewXMLSource(strings.NewReader(`<events><event time="1" type="arrival" legMode="car"/></events>`))
	if _, err := src.ReadEvent(context.Background()); err == nil {
		t.Fatalf("expected error for missing person")
	}
}

func TestOpenXMLFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_events.xml.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sampleXML)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	src, err := OpenXMLFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer src.Close()

	if got := readAll(t, src); len(got) != 6 {
		t.Fatalf("got %d events, want 6", len(got))
	}
}

type fakeMessageReader struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeMessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		return kafka.Message{}, errors.New("read past end")
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeMessageReader) Close() error {
	f.closed = true
	return nil
}

func TestKafkaSourceStopsAtEndOffset(t *testing.T) {
	reader := &fakeMessageReader{msgs: []kafka.Message{
		{Offset: 10, Value: []byte(`{"time":100,"type":"departure","person":"7","legMode":"bike"}`)},
		{Offset: 11, Value: []byte(`{"time":150,"type":"entered link","link":"x"}`)},
		{Offset: 12, Value: []byte(`{"time":400,"type":"arrival","person":"7","legMode":"bike"}`)},
		{Offset: 13, Value: []byte(`{"time":500,"type":"departure","person":"8","legMode":"car"}`)},
	}}
	src := newKafkaSource(reader, 10, 13)

	got := readAll(t, src)
	want := []domain.Event{
		domain.Departure{Time: 100, PersonID: "7", Mode: "bike"},
		domain.Arrival{Time: 400, PersonID: "7", Mode: "bike"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %#v, want %#v", i, got[i], want[i])
		}
	}

	if err := src.Close(); err != nil || !reader.closed {
		t.Fatalf("expected reader closed, err=%v", err)
	}
}

func TestKafkaSourceDecodeError(t *testing.T) {
	src := newKafkaSource(&fakeMessageReader{msgs: []kafka.Message{{Offset: 0, Value: []byte(`{`)}}}, 0, 1)
	if _, err := src.ReadEvent(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]domain.Event{domain.Departure{Time: 1, PersonID: "a", Mode: "walk"}})
	if got := readAll(t, src); len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}

func TestXMLSourceRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"nan time", `<events><event time="NaN" type="departure" person="1" legMode="car"/></events>`},
		{"infinite time", `<events><event time="+Inf" type="arrival" person="1" legMode="car"/></events>`},
		{"infinite amount", `<events><event time="5" type="personMoney" person="1" amount="-Inf"/></events>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewXMLSource(strings.NewReader(tt.doc))
			ev, err := src.ReadEvent(context.Background())
			if err == nil {
				t.Fatalf("expected error, got event %#v", ev)
			}
			if !strings.Contains(err.Error(), "not a finite number") {
				t.Fatalf("err = %v, want non-finite rejection", err)
			}
		})
	}
}
