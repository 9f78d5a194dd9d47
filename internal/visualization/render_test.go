package visualization

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/prefgrow/internal/simulation"
)

func testSeries() *simulation.Series {
	return &simulation.Series{
		Labels:            []string{"rock", "paper", "scissors"},
		RecordingInterval: 1000,
		Steps:             3000,
		Initial:           []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		Points: []simulation.Point{
			{Step: 0, Proportions: []float64{0.5, 0.25, 0.25}},
			{Step: 1000, Proportions: []float64{0.4, 0.3, 0.3}},
			{Step: 2000, Proportions: []float64{0.2, 0.5, 0.3}},
		},
		Final:        []float64{0.2, 0.5, 0.3},
		FinalDegrees: []int64{2401, 6003, 3602},
		Elapsed:      1500 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", FormatSVG, false},
		{"CSV", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"png", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	got := FileName("out", "rps_attachment_results", FormatSVG)
	want := filepath.Join("out", "rps_attachment_results.svg")
	if got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestRender_NilSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatSVG, Chart{}); err == nil {
		t.Fatal("expected error for nil series")
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Format("png"), Chart{Series: testSeries()}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatCSV, Chart{Series: testSeries()}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("rows = %d, want 5 (header + initial + 3 points)", len(records))
	}
	if want := []string{"steps", "rock", "paper", "scissors"}; !reflect.DeepEqual(records[0], want) {
		t.Errorf("header = %v, want %v", records[0], want)
	}

	var steps []string
	for _, rec := range records[1:] {
		steps = append(steps, rec[0])
	}
	if want := []string{"0", "1", "1001", "2001"}; !reflect.DeepEqual(steps, want) {
		t.Errorf("steps column = %v, want %v", steps, want)
	}
	if records[2][1] != "0.5" {
		t.Errorf("first point rock = %q, want 0.5", records[2][1])
	}
}

func TestRenderCSV_UnlabelledTypes(t *testing.T) {
	s := testSeries()
	s.Labels = nil

	var buf bytes.Buffer
	if err := RenderCSV(&buf, Chart{Series: s}); err != nil {
		t.Fatalf("RenderCSV() error = %v", err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "steps,type 0,type 1,type 2" {
		t.Errorf("header = %q", header)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, Chart{Title: "demo", Series: testSeries()}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Title != "demo" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Points) != 3 {
		t.Fatalf("Points = %d, want 3", len(doc.Points))
	}
	if doc.Points[1].Step != 1000 || doc.Points[1].Completed != 1001 {
		t.Errorf("Points[1] = %+v", doc.Points[1])
	}
	if doc.ElapsedSeconds != 1.5 {
		t.Errorf("ElapsedSeconds = %v, want 1.5", doc.ElapsedSeconds)
	}
	if !reflect.DeepEqual(doc.FinalDegrees, []int64{2401, 6003, 3602}) {
		t.Errorf("FinalDegrees = %v", doc.FinalDegrees)
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	chart := Chart{Title: "Results for <rps>", Series: testSeries()}
	if err := Render(&buf, FormatSVG, chart); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	checks := []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		"Results for &lt;rps&gt;",
		">1,000<",
		">rock<",
		">paper<",
		">scissors<",
		"</svg>",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if got := strings.Count(out, "<polyline"); got != 3 {
		t.Errorf("polylines = %d, want 3", got)
	}
}

func TestRenderSVG_SinglePoint(t *testing.T) {
	s := testSeries()
	s.Points = s.Points[:1]

	var buf bytes.Buffer
	if err := RenderSVG(&buf, Chart{Series: s}); err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<polyline") {
		t.Error("single point should not draw a polyline")
	}
	if got := strings.Count(out, "<circle"); got != 3 {
		t.Errorf("markers = %d, want 3", got)
	}
}

func TestRenderSVG_NoPoints(t *testing.T) {
	s := testSeries()
	s.Points = nil

	var buf bytes.Buffer
	if err := RenderSVG(&buf, Chart{Series: s}); err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "</svg>\n") {
		t.Error("expected a complete svg document")
	}
}

func TestTicks(t *testing.T) {
	tests := []struct {
		max  int64
		want []int64
	}{
		{10000, []int64{1000, 10000}},
		{99999, []int64{1000, 10000}},
		{1000000, []int64{1000, 10000, 100000, 1000000}},
		{500, []int64{1, 10, 100}},
		{0, nil},
	}
	for _, tt := range tests {
		if got := Ticks(tt.max); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Ticks(%d) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{"linux", "xdg-open", false},
		{"darwin", "open", false},
		{"windows", "cmd", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := openCommand(tt.goos, "/tmp/chart.svg")
			if (err != nil) != tt.wantErr {
				t.Fatalf("openCommand error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if filepath.Base(cmd.Args[0]) != tt.want {
				t.Errorf("command = %q, want %q", cmd.Args[0], tt.want)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "/tmp/chart.svg" {
				t.Errorf("target = %q", last)
			}
		})
	}
}
