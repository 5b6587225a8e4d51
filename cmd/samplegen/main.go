// Генератор демонстрационных книг Excel для приемника отчетов.
// Создает по одной книге каждой известной формы с правдоподобными данными.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

// defectColumn колонка дефекта с верхней границей суточного количества
type defectColumn struct {
	header string
	maxQty int
}

// inspectionForm форма отчета контроля: имя файла и набор колонок
type inspectionForm struct {
	fileName     string
	qtyHeader    string
	withReceived bool
	withAccepted bool
	dateLayout   string
	defects      []defectColumn
}

// inspectionForms формы этапов контроля; производственные формы отдельно
var inspectionForms = []inspectionForm{
	{
		fileName:     "Assembly Rejection Report %d.xlsx",
		qtyHeader:    "Inspected Qty",
		withReceived: true,
		withAccepted: true,
		dateLayout:   "2.1.2006",
		defects: []defectColumn{
			{"Coag", 40},
			{"Raised Wire", 25},
			{"Surface", 30},
			{"Webbing", 15},
			{"Other", 10},
		},
	},
	{
		fileName:     "Visual Inspection Report %d.xlsx",
		qtyHeader:    "Visual Qty",
		withAccepted: true,
		dateLayout:   "2006-01-02",
		defects: []defectColumn{
			{"Coag", 35},
			{"Raised Wire", 20},
			{"Black Mark", 15},
			{"Pin Hole", 10},
			{"Thin", 10},
			{"Other", 8},
		},
	},
	{
		fileName:     "Balloon Valve Integrity %d.xlsx",
		qtyHeader:    "Inspected Qty",
		withAccepted: true,
		dateLayout:   "2006-01-02",
		defects: []defectColumn{
			{"Leakage", 25},
			{"Valve Defect", 15},
			{"Balloon Defect", 12},
			{"Other", 6},
		},
	},
	{
		fileName:     "Shopfloor Rejection Report %d.xlsx",
		qtyHeader:    "Checked",
		withReceived: true,
		dateLayout:   "2.1.2006",
		defects: []defectColumn{
			{"Coag", 30},
			{"Surface", 25},
			{"Dirty", 12},
			{"Sticky", 10},
			{"Other", 8},
		},
	},
}

// products ассортимент для пономенклатурной производственной формы
var products = []string{
	"Latex Balloon 9 inch",
	"Latex Balloon 12 inch",
	"Printed Balloon 10 inch",
}

func main() {
	var (
		outDir = flag.String("out", "./samples", "Output directory for generated workbooks")
		year   = flag.Int("year", time.Now().Year(), "Calendar year of the generated data")
		months = flag.Int("months", 3, "Number of months of inspection data starting from January")
		seed   = flag.Int64("seed", 0, "Random seed, same seed gives same workbooks")
	)
	flag.Parse()

	if *months < 1 || *months > 12 {
		fmt.Println("Usage: samplegen [-out <dir>] [-year <yyyy>] [-months 1..12] [-seed <n>]")
		os.Exit(1)
	}

	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	type generated struct {
		name string
		rows int
	}
	var results []generated

	// Годовая производственная сводка: одна строка на месяц
	name := fmt.Sprintf("Yearly Production Commulative %d.xlsx", *year)
	rows, err := generateYearlyProduction(filepath.Join(*outDir, name), *year)
	if err != nil {
		log.Fatalf("Failed to generate %s: %v", name, err)
	}
	results = append(results, generated{name, rows})

	// Пономенклатурная сводка: строка на месяц и изделие
	name = fmt.Sprintf("Commulative %d.xlsx", *year)
	rows, err = generateProductProduction(filepath.Join(*outDir, name), *year)
	if err != nil {
		log.Fatalf("Failed to generate %s: %v", name, err)
	}
	results = append(results, generated{name, rows})

	// Отчеты этапов контроля: лист на месяц, строка на день
	for _, form := range inspectionForms {
		name = fmt.Sprintf(form.fileName, *year)
		rows, err = generateInspection(filepath.Join(*outDir, name), *year, *months, form)
		if err != nil {
			log.Fatalf("Failed to generate %s: %v", name, err)
		}
		results = append(results, generated{name, rows})
	}

	fmt.Printf("\n=== Generated Workbooks ===\n")
	total := 0
	for _, r := range results {
		fmt.Printf("%-45s %5d rows\n", r.name, r.rows)
		total += r.rows
	}
	fmt.Printf("\nTotal: %d workbooks, %d data rows in %s\n", len(results), total, *outDir)
}

// generateYearlyProduction пишет годовую сводку: Month, Production, Dispatch
func generateYearlyProduction(path string, year int) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, fmt.Sprintf("%d", year)); err != nil {
		return 0, err
	}
	sheet = fmt.Sprintf("%d", year)

	headers := []interface{}{"Month", "Production", "Dispatch", "Remarks"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return 0, err
	}

	rows := 0
	for m := time.January; m <= time.December; m++ {
		produced := gofakeit.Number(800000, 1200000)
		dispatched := produced - gofakeit.Number(0, produced/10)
		remark := ""
		if gofakeit.Bool() && m == time.December {
			remark = "year end stock adjusted"
		}
		row := []interface{}{m.String(), produced, dispatched, remark}
		cell := fmt.Sprintf("A%d", rows+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return 0, err
		}
		rows++
	}

	return rows, f.SaveAs(path)
}

// generateProductProduction пишет сводку по изделиям: Month, Product, Production, Dispatch
func generateProductProduction(path string, year int) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, fmt.Sprintf("Production %d", year)); err != nil {
		return 0, err
	}
	sheet = fmt.Sprintf("Production %d", year)

	headers := []interface{}{"Month", "Product", "Production", "Dispatch"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return 0, err
	}

	rows := 0
	for m := time.January; m <= time.December; m++ {
		for _, product := range products {
			produced := gofakeit.Number(200000, 450000)
			dispatched := produced - gofakeit.Number(0, produced/8)
			row := []interface{}{m.String(), product, produced, dispatched}
			cell := fmt.Sprintf("A%d", rows+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return 0, err
			}
			rows++
		}
	}

	return rows, f.SaveAs(path)
}

// generateInspection пишет отчет этапа контроля: лист на месяц, строка на день.
// Явная колонка Rejected всегда равна сумме колонок дефектов
func generateInspection(path string, year, months int, form inspectionForm) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	totalRows := 0
	for m := time.January; m <= time.Month(months); m++ {
		sheet := fmt.Sprintf("%s %d", m.String(), year)
		if m == time.January {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return 0, err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return 0, err
			}
		}

		headers := []interface{}{"Date"}
		if form.withReceived {
			headers = append(headers, "Received Qty")
		}
		headers = append(headers, form.qtyHeader)
		if form.withAccepted {
			headers = append(headers, "Accepted")
		}
		headers = append(headers, "Rejected")
		for _, d := range form.defects {
			headers = append(headers, d.header)
		}
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return 0, err
		}

		daysInMonth := time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
		rowNum := 2
		for day := 1; day <= daysInMonth; day++ {
			date := time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
			// Воскресенье выходной
			if date.Weekday() == time.Sunday {
				continue
			}

			rejected := 0
			defectQty := make([]int, len(form.defects))
			for i, d := range form.defects {
				defectQty[i] = gofakeit.Number(0, d.maxQty)
				rejected += defectQty[i]
			}
			inspected := gofakeit.Number(3000, 8000)
			accepted := inspected - rejected

			row := []interface{}{date.Format(form.dateLayout)}
			if form.withReceived {
				row = append(row, inspected+gofakeit.Number(0, 200))
			}
			row = append(row, inspected)
			if form.withAccepted {
				row = append(row, accepted)
			}
			row = append(row, rejected)
			for _, q := range defectQty {
				row = append(row, q)
			}

			cell := fmt.Sprintf("A%d", rowNum)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return 0, err
			}
			rowNum++
			totalRows++
		}
	}

	return totalRows, f.SaveAs(path)
}
