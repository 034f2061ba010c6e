package geofence

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrMissingColumns = errors.New("boundary csv needs Latitude and Longitude columns")

// ParseBoundaryCSV reads a boundary file with a header row containing
// Latitude and Longitude (case-insensitive). Rows are numbered in file order;
// rows where either value is empty or not a number are skipped.
func ParseBoundaryCSV(r io.Reader) ([]BoundaryPoint, error) {
	// Excel 由来の BOM 付き UTF-8 / UTF-16 を吸収する
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingColumns
		}
		return nil, fmt.Errorf("read boundary header: %w", err)
	}
	latCol, lngCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "latitude", "lat":
			latCol = i
		case "longitude", "lng", "lon":
			lngCol = i
		}
	}
	if latCol < 0 || lngCol < 0 {
		return nil, ErrMissingColumns
	}

	var out []BoundaryPoint
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read boundary row: %w", err)
		}
		if latCol >= len(rec) || lngCol >= len(rec) {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(rec[lngCol]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, BoundaryPoint{SequenceOrder: len(out), Latitude: lat, Longitude: lng})
	}
	return out, nil
}
