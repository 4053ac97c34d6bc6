// Package export сериализует каталог церквей в форматы для скачивания.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// churchRow — плоское представление церкви для табличных форматов.
type churchRow struct {
	Name             string `json:"name" yaml:"name"`
	Status           string `json:"status" yaml:"status"`
	County           string `json:"county,omitempty" yaml:"county,omitempty"`
	GatheringAddress string `json:"gatheringAddress,omitempty" yaml:"gatheringAddress,omitempty"`
	Website          string `json:"website,omitempty" yaml:"website,omitempty"`
	Phone            string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email            string `json:"email,omitempty" yaml:"email,omitempty"`
	Language         string `json:"language" yaml:"language"`
	Gatherings       string `json:"gatherings,omitempty" yaml:"gatherings,omitempty"`
	Affiliations     string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
	Latitude         string `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude        string `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

var csvHeader = []string{
	"Name", "Status", "County", "Gathering Address", "Website", "Phone",
	"Email", "Language", "Gatherings", "Affiliations", "Latitude", "Longitude",
}

// flatten приводит церкви к плоским строкам в детерминированном порядке:
// сначала по округу, затем по имени.
func flatten(churches []*models.Church) []churchRow {
	sorted := make([]*models.Church, len(churches))
	copy(sorted, churches)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := derefOr(sorted[i].CountyName, ""), derefOr(sorted[j].CountyName, "")
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Name < sorted[j].Name
	})

	rows := make([]churchRow, 0, len(sorted))
	for _, c := range sorted {
		gatherings := make([]string, 0, len(c.Gatherings))
		for _, g := range c.Gatherings {
			gatherings = append(gatherings, g.Time)
		}
		affiliations := make([]string, 0, len(c.Affiliations))
		for _, a := range c.Affiliations {
			affiliations = append(affiliations, a.Name)
		}
		rows = append(rows, churchRow{
			Name:             c.Name,
			Status:           string(c.Status),
			County:           derefOr(c.CountyName, ""),
			GatheringAddress: derefOr(c.GatheringAddress, ""),
			Website:          derefOr(c.Website, ""),
			Phone:            derefOr(c.Phone, ""),
			Email:            derefOr(c.Email, ""),
			Language:         c.Language,
			Gatherings:       strings.Join(gatherings, "; "),
			Affiliations:     strings.Join(affiliations, "; "),
			Latitude:         formatCoord(c.Latitude),
			Longitude:        formatCoord(c.Longitude),
		})
	}
	return rows
}

// JSON сериализует каталог в JSON.
func JSON(churches []*models.Church) ([]byte, error) {
	data, err := json.MarshalIndent(flatten(churches), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal churches to JSON: %w", err)
	}
	return data, nil
}

// YAML сериализует каталог в YAML.
func YAML(churches []*models.Church) ([]byte, error) {
	data, err := yaml.Marshal(flatten(churches))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal churches to YAML: %w", err)
	}
	return data, nil
}

// CSV сериализует каталог в CSV с заголовочной строкой.
func CSV(churches []*models.Church) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range flatten(churches) {
		record := []string{
			r.Name, r.Status, r.County, r.GatheringAddress, r.Website, r.Phone,
			r.Email, r.Language, r.Gatherings, r.Affiliations, r.Latitude, r.Longitude,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX сериализует каталог в книгу Excel с одним листом.
func XLSX(churches []*models.Church) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Churches"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, r := range flatten(churches) {
		values := []string{
			r.Name, r.Status, r.County, r.GatheringAddress, r.Website, r.Phone,
			r.Email, r.Language, r.Gatherings, r.Affiliations, r.Latitude, r.Longitude,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatCoord(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
