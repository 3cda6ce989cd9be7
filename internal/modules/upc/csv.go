package upc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"adcalc/pkg/formulas"
)

// Row is one parsed line of an Instacart Ads Manager export.
type Row struct {
	Status      string  `json:"status"`
	Product     string  `json:"product"`
	UPC         string  `json:"upc"`
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
	Units       float64 `json:"units"`
	ROAS        float64 `json:"roas"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	CTR         float64 `json:"ctr"`
	NTBPercent  float64 `json:"ntb_percent"`
}

// headerVariants maps logical column names to the header spellings seen in
// real exports. Matching is substring-based on lowercased headers.
var headerVariants = map[string][]string{
	"status":      {"status"},
	"product":     {"product", "product_name"},
	"upc":         {"upc", "upc_code"},
	"spend":       {"spend", "ad_spend"},
	"sales":       {"attributed_sales", "sales"},
	"units":       {"attributed_quantities", "units", "quantity"},
	"roas":        {"roas"},
	"impressions": {"impressions"},
	"clicks":      {"clicks"},
	"ctr":         {"ctr", "click_through_rate"},
	"ntb_percent": {"percent_ntb_attributed_sales", "ntb_percent", "ntb_%"},
}

// ParseCSV reads an Ads Manager export and returns the active rows.
// Paused/unavailable products and rows without any spend or sales are
// skipped. UPC and Product columns are required; everything else is
// best-effort.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or has no data rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	indexOf := func(name string) int {
		for _, variant := range headerVariants[name] {
			for i, h := range headers {
				if strings.Contains(h, variant) {
					return i
				}
			}
		}
		return -1
	}

	indices := map[string]int{}
	for name := range headerVariants {
		indices[name] = indexOf(name)
	}

	if indices["upc"] == -1 || indices["product"] == -1 {
		return nil, fmt.Errorf("CSV must contain UPC and Product columns")
	}

	field := func(record []string, name string) string {
		idx := indices[name]
		if idx == -1 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	number := func(record []string, name string) float64 {
		v, err := strconv.ParseFloat(field(record, name), 64)
		if err != nil {
			return 0
		}
		return v
	}

	var rows []Row
	for _, record := range records[1:] {
		upcCode := field(record, "upc")
		product := field(record, "product")
		if upcCode == "" || product == "" {
			continue
		}

		status := field(record, "status")
		if status == "" {
			status = "active"
		}
		lowered := strings.ToLower(status)
		if strings.Contains(lowered, "paused") || strings.Contains(lowered, "unavailable") {
			continue
		}

		row := Row{
			Status:      status,
			Product:     product,
			UPC:         upcCode,
			Spend:       number(record, "spend"),
			Sales:       number(record, "sales"),
			Units:       number(record, "units"),
			ROAS:        number(record, "roas"),
			Impressions: number(record, "impressions"),
			Clicks:      number(record, "clicks"),
			NTBPercent:  number(record, "ntb_percent") / 100,
		}

		// No activity, nothing to analyze
		if row.Spend == 0 && row.Sales == 0 {
			continue
		}

		// CTR from the file is a whole percentage; derive from clicks and
		// impressions when absent.
		if ctr := field(record, "ctr"); ctr != "" {
			row.CTR = number(record, "ctr") / 100
		} else if row.Clicks > 0 && row.Impressions > 0 {
			row.CTR = row.Clicks / row.Impressions
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// RowsToData converts parsed rows into SKU input records, applying the
// given default gross margin to every SKU (exports carry no margin data).
func RowsToData(rows []Row, defaultMarginPct *float64) []Data {
	data := make([]Data, len(rows))
	for i, row := range rows {
		data[i] = Data{
			ID:                 uuid.New().String(),
			UPCCode:            row.UPC,
			ProductName:        row.Product,
			UnitsSold:          formulas.Ptr(row.Units),
			AdSpend:            formulas.Ptr(row.Spend),
			AttributedSales:    formulas.Ptr(row.Sales),
			GrossMarginPercent: clone(defaultMarginPct),
		}
	}
	return data
}

func clone(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
