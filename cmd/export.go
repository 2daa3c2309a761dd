package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/property"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export property records to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		district, _ := cmd.Flags().GetString("district")

		store, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		var records []property.Record
		if district != "" {
			records, err = store.ListByDistrict(ctx, district)
		} else {
			records, err = store.ListAll(ctx)
		}
		if err != nil {
			return eris.Wrap(err, "export: list records")
		}

		if err := writeWorkbook(out, records); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", out),
			zap.Int("records", len(records)),
		)
		fmt.Printf("Wrote %d records to %s\n", len(records), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "properties.xlsx", "output file path")
	exportCmd.Flags().String("district", "", "restrict to one district")
	rootCmd.AddCommand(exportCmd)
}

var exportHeader = []string{
	"object_id", "property_no", "address", "street", "locality", "postcode",
	"land_value", "capital_value", "improvements_value",
	"land_use", "property_type", "survey_area", "district", "valuation_date",
}

func writeWorkbook(path string, records []property.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Properties")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetInt64(rec.ObjectID)
		row.AddCell().SetString(rec.PropertyNo)
		row.AddCell().SetString(rec.Address)
		row.AddCell().SetString(rec.Street)
		row.AddCell().SetString(rec.Locality)
		row.AddCell().SetString(rec.Postcode)
		row.AddCell().SetFloat(rec.LandValue)
		row.AddCell().SetFloat(rec.CapitalValue)
		row.AddCell().SetFloat(rec.ImprovementsValue)
		row.AddCell().SetString(rec.LandUse)
		row.AddCell().SetString(rec.PropertyType)
		if rec.SurveyArea != nil {
			row.AddCell().SetFloat(*rec.SurveyArea)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(rec.District)
		if rec.ValuationDate != nil {
			row.AddCell().SetString(rec.ValuationDate.Format("2006-01-02"))
		} else {
			row.AddCell().SetString("")
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
