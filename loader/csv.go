package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"git.fiblab.net/sim/fare/fare"
)

// 距离表的列名
const (
	COLUMN_REFERENCE_STATION = "Reference Station"
	COLUMN_STATION           = "Station"
	COLUMN_ROUTE             = "Route"
	COLUMN_DISTANCE          = "Distance"
)

var COLUMNS = []string{COLUMN_REFERENCE_STATION, COLUMN_STATION, COLUMN_ROUTE, COLUMN_DISTANCE}

func LoadCSVFile(path string) ([]fare.RouteRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded %d records from %s", len(records), path)
	return records, nil
}

// ReadCSV 读取带表头的距离表，列顺序任意，允许UTF-8 BOM
func ReadCSV(r io.Reader) ([]fare.RouteRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", fare.ErrMalformedRecord)
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[strings.TrimSpace(h)] = i
	}
	for _, c := range COLUMNS {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", fare.ErrMalformedRecord, c)
		}
	}

	records := make([]fare.RouteRecord, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", fare.ErrMalformedRecord, line, err)
		}
		record, err := fare.ParseRecord(
			row[index[COLUMN_REFERENCE_STATION]],
			row[index[COLUMN_STATION]],
			row[index[COLUMN_ROUTE]],
			row[index[COLUMN_DISTANCE]],
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}
