// Package export writes catalog reports for partner and back-office use.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/keurcoiff/keurcoiff/internal/models"
)

const catalogSheet = "Salons"

// WriteCatalog writes the given salons to an xlsx workbook at path, one
// row per salon. Unpublished salons are included; the status column
// tells them apart.
func WriteCatalog(path string, salons []*models.Salon) error {
	f := excelize.NewFile()
	index, err := f.NewSheet(catalogSheet)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(catalogSheet)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"ID", "Nom", "Quartier", "Ville", "Adresse",
		"Note", "Avis", "Prix min (FCFA)", "Services", "Statut",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, s := range salons {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			s.ID, s.Name, s.Location.Quarter, s.Location.City, s.Location.Address,
			s.Rating.Average, s.Rating.Count, s.CheapestPrice(),
			serviceNames(s), statusLabel(s),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func serviceNames(s *models.Salon) string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.Name)
	}
	return strings.Join(names, ", ")
}

func statusLabel(s *models.Salon) string {
	switch {
	case !s.IsActive:
		return "inactif"
	case !s.IsVerified:
		return "en attente"
	default:
		return "publié"
	}
}

// ReadCatalogNames reads back salon names from a workbook written by
// WriteCatalog. Used to sanity-check exports.
func ReadCatalogNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(catalogSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", catalogSheet)
	}

	var names []string
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		names = append(names, row[1])
	}
	return names, nil
}
