package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

type atsUsecase struct {
	repo    domain.ATSRepository
	jobRepo domain.JobRepository
}

// NewATSUsecase creates a new ATS usecase instance
func NewATSUsecase(repo domain.ATSRepository, jobRepo domain.JobRepository) domain.ATSUsecase {
	return &atsUsecase{repo: repo, jobRepo: jobRepo}
}

// Column headers with friendly names
var exportHeaders = map[string]string{
	"application_id":  "APPLICATION ID",
	"candidate_name":  "CANDIDATE",
	"candidate_email": "EMAIL",
	"status":          "STATUS",
	"resume_url":      "RESUME",
	"applied_at":      "APPLIED AT",
	"last_change_at":  "LAST UPDATE",
	"interviews":      "INTERVIEWS",
}

// Export renders the applicants of an owned job as xlsx or csv.
func (u *atsUsecase) Export(ctx context.Context, actor domain.Principal, req domain.ATSExportRequest) (*domain.ExportFile, error) {
	job, err := u.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, toAppError(err, "Job not found")
	}
	if !job.OwnedBy(actor) {
		return nil, apperror.Forbidden("You don't have permission to export this job")
	}

	columns, err := exportColumns(req.Columns)
	if err != nil {
		return nil, err
	}

	rows, err := u.repo.ListApplicantRows(ctx, job.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	stamp := time.Now().Format("20060102_150405")
	switch req.Format {
	case domain.ExportCSV:
		data, err := exportCSV(rows, columns)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ExportFile{
			Filename:    fmt.Sprintf("job_%d_applicants_%s.csv", job.ID, stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case domain.ExportXLSX, "":
		data, err := exportExcel(rows, columns)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ExportFile{
			Filename:    fmt.Sprintf("job_%d_applicants_%s.xlsx", job.ID, stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", req.Format))
	}
}

// exportColumns validates and de-duplicates the requested columns; none means all.
func exportColumns(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return domain.ExportableColumns, nil
	}

	seen := make(map[string]bool)
	columns := make([]string, 0, len(requested))
	for _, col := range requested {
		if _, ok := exportHeaders[col]; !ok {
			return nil, apperror.BadRequest(fmt.Sprintf("invalid export column: %s", col))
		}
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}
	return columns, nil
}

// exportExcel generates an Excel file from applicant rows
func exportExcel(rows []domain.ApplicantRow, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applicants"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, exportHeaders[col])
	}

	// Style headers - Dark Blue background with White text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, applicantField(row, col))
		}
	}

	for i := range columns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// exportCSV generates a CSV file from applicant rows
func exportCSV(rows []domain.ApplicantRow, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			if text, ok := applicantField(row, col).(string); ok {
				record[i] = sanitizeCell(text)
			} else {
				record[i] = fmt.Sprint(applicantField(row, col))
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// sanitizeCell stops spreadsheet apps from evaluating user text as a formula.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func applicantField(r domain.ApplicantRow, field string) interface{} {
	switch field {
	case "application_id":
		return strconv.FormatInt(r.ApplicationID, 10)
	case "candidate_name":
		return r.CandidateName
	case "candidate_email":
		return r.CandidateEmail
	case "status":
		return string(r.Status)
	case "resume_url":
		return r.ResumeURL
	case "applied_at":
		return r.AppliedAt.UTC().Format(time.RFC3339)
	case "last_change_at":
		return r.LastChangeAt.UTC().Format(time.RFC3339)
	case "interviews":
		return r.Interviews
	}
	return ""
}
