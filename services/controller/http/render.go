package http

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"strconv"
	"strings"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
)

//go:embed page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type pageView struct {
	Temperature string
	Humidity    string
	Fan         string
	Lamp        string
}

// dataPayload fixes the field order of the /data body.
type dataPayload struct {
	Temp  json.Number `json:"temp"`
	Hum   json.Number `json:"hum"`
	Fan   bool        `json:"fan"`
	Lamp  bool        `json:"lamp"`
	Valid *bool       `json:"valid,omitempty"`
}

// RenderJSON encodes snap as {"temp":..,"hum":..,"fan":..,"lamp":..}. withValid appends the validity flag.
func RenderJSON(snap climate.Snapshot, withValid bool) ([]byte, error) {
	payload := dataPayload{
		Temp: formatValue(snap.Reading.Temperature, snap.Reading.Valid),
		Hum:  formatValue(snap.Reading.Humidity, snap.Reading.Valid),
		Fan:  snap.Actuators.Fan,
		Lamp: snap.Actuators.Lamp,
	}
	if withValid {
		valid := snap.Reading.Valid
		payload.Valid = &valid
	}
	return json.Marshal(payload)
}

// RenderHTML renders the status page for snap.
func RenderHTML(snap climate.Snapshot) ([]byte, error) {
	view := pageView{
		Temperature: string(formatValue(snap.Reading.Temperature, snap.Reading.Valid)),
		Humidity:    string(formatValue(snap.Reading.Humidity, snap.Reading.Valid)),
		Fan:         onOff(snap.Actuators.Fan),
		Lamp:        onOff(snap.Actuators.Lamp),
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatValue keeps at least one fractional digit for measurements (32 -> 32.0)
// and prints sentinels as plain integers (-99).
func formatValue(v float64, valid bool) json.Number {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if valid && !strings.Contains(s, ".") {
		s += ".0"
	}
	return json.Number(s)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
