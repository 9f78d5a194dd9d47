package visualization

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// RenderCSV writes one row per snapshot: the number of completed steps
// followed by one proportion column per type. The first row is the seed
// state at 0 steps.
func RenderCSV(w io.Writer, chart Chart) error {
	s := chart.Series
	cw := csv.NewWriter(w)

	header := []string{"steps"}
	for k := 0; k < s.TypeCount(); k++ {
		header = append(header, chart.label(k))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := func(steps int64, props []float64) error {
		rec := make([]string, 0, len(props)+1)
		rec = append(rec, strconv.FormatInt(steps, 10))
		for _, p := range props {
			rec = append(rec, strconv.FormatFloat(p, 'g', -1, 64))
		}
		return cw.Write(rec)
	}

	if err := row(0, s.Initial); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	for _, p := range s.Points {
		if err := row(p.Completed(), p.Proportions); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DocumentPoint is one recorded snapshot in a Document.
type DocumentPoint struct {
	Step        int64     `json:"step"`
	Completed   int64     `json:"completed"`
	Proportions []float64 `json:"proportions"`
}

// Document is the JSON export of a series.
type Document struct {
	Title             string          `json:"title,omitempty"`
	Labels            []string        `json:"labels"`
	Steps             int64           `json:"steps"`
	RecordingInterval int64           `json:"recording_interval"`
	Initial           []float64       `json:"initial"`
	Points            []DocumentPoint `json:"points"`
	Final             []float64       `json:"final,omitempty"`
	FinalDegrees      []int64         `json:"final_degrees,omitempty"`
	ElapsedSeconds    float64         `json:"elapsed_seconds"`
}

// NewDocument builds the JSON representation of chart.
func NewDocument(chart Chart) Document {
	s := chart.Series
	doc := Document{
		Title:             chart.Title,
		Steps:             s.Steps,
		RecordingInterval: s.RecordingInterval,
		Initial:           s.Initial,
		Points:            make([]DocumentPoint, 0, len(s.Points)),
		Final:             s.Final,
		FinalDegrees:      s.FinalDegrees,
		ElapsedSeconds:    s.Elapsed.Seconds(),
	}
	for k := 0; k < s.TypeCount(); k++ {
		doc.Labels = append(doc.Labels, chart.label(k))
	}
	for _, p := range s.Points {
		doc.Points = append(doc.Points, DocumentPoint{Step: p.Step, Completed: p.Completed(), Proportions: p.Proportions})
	}
	return doc
}

// RenderJSON writes the series as an indented JSON document.
func RenderJSON(w io.Writer, chart Chart) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(chart)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
