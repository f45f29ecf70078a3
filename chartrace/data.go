package chartrace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Record 是一行输入数据.
type Record struct {
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Value    float64   `json:"value"`
}

// Dataset 是按日期分组、校验过的完整数据集.
type Dataset struct {
	Records    []Record
	Dates      []time.Time // 升序、去重
	Names      []string
	Categories map[string]string // name -> category
}

// requiredColumns 按序列出 CSV 必须包含的列。
var requiredColumns = []string{"date", "name", "category", "value"}

// ParseCSV 读取并校验 CSV 数据.
// 要求表头包含 date,name,category,value（大小写不敏感），
// 日期为 2006-01-02 格式，同一 (date, name) 组合重复视为错误。
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column %q, header must contain: %s",
				col, strings.Join(requiredColumns, ","))
		}
	}

	ds := &Dataset{Categories: make(map[string]string)}
	seen := make(map[string]bool)      // date|name -> exists
	dateSeen := make(map[string]bool)  // date string -> exists
	nameSeen := make(map[string]bool)

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		dateStr := strings.TrimSpace(row[colIndex["date"]])
		name := strings.TrimSpace(row[colIndex["name"]])
		category := strings.TrimSpace(row[colIndex["category"]])
		valueStr := strings.TrimSpace(row[colIndex["value"]])

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q, expected YYYY-MM-DD", line, dateStr)
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q", line, valueStr)
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: empty name", line)
		}

		key := dateStr + "|" + name
		if seen[key] {
			return nil, fmt.Errorf("line %d: duplicate entry for name %q on date %s", line, name, dateStr)
		}
		seen[key] = true

		ds.Records = append(ds.Records, Record{
			Date:     date,
			Name:     name,
			Category: category,
			Value:    value,
		})
		if !dateSeen[dateStr] {
			dateSeen[dateStr] = true
			ds.Dates = append(ds.Dates, date)
		}
		if !nameSeen[name] {
			nameSeen[name] = true
			ds.Names = append(ds.Names, name)
		}
		if category != "" {
			ds.Categories[name] = category
		}
	}

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("no data rows found")
	}

	sortDates(ds.Dates)
	return ds, nil
}

// ParseCSVFile 读取并校验 CSV 文件。
func ParseCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
