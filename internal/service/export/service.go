package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/repository"
)

type Service interface {
	RegulationsCSV(ctx context.Context, w io.Writer) error
	RegulationsXLSX(ctx context.Context) (*excelize.File, error)
	ComplianceSummaryCSV(ctx context.Context, w io.Writer) error
}

type service struct {
	regRepo  repository.RegulationRepository
	compRepo repository.ComplianceRepository
}

func NewService(regRepo repository.RegulationRepository, compRepo repository.ComplianceRepository) Service {
	return &service{
		regRepo:  regRepo,
		compRepo: compRepo,
	}
}

var regulationHeader = []string{"reference", "name", "type", "status", "departments", "issue_date", "effective_date", "expiry_date", "created_at"}

func regulationRow(reg *domain.Regulation) []string {
	deptNames := make([]string, 0, len(reg.Departments))
	for _, d := range reg.Departments {
		deptNames = append(deptNames, d.Name)
	}

	return []string{
		reg.Reference,
		reg.Name,
		string(reg.Type),
		string(reg.Status),
		strings.Join(deptNames, "; "),
		formatDate(reg.IssueDate),
		formatDate(reg.EffectiveDate),
		formatDate(reg.ExpiryDate),
		reg.CreatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func (s *service) RegulationsCSV(ctx context.Context, w io.Writer) error {
	regs, err := s.regRepo.ListForExport(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(regulationHeader); err != nil {
		return err
	}
	for i := range regs {
		if err := cw.Write(regulationRow(&regs[i])); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *service) RegulationsXLSX(ctx context.Context) (*excelize.File, error) {
	regs, err := s.regRepo.ListForExport(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Regulations"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range regulationHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i := range regs {
		for col, value := range regulationRow(&regs[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func (s *service) ComplianceSummaryCSV(ctx context.Context, w io.Writer) error {
	summaries, err := s.compRepo.SummaryByDepartment(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"department", "compliant", "partially_compliant", "non_compliant", "not_applicable"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			s.DepartmentName,
			fmt.Sprintf("%d", s.Compliant),
			fmt.Sprintf("%d", s.PartiallyCompliant),
			fmt.Sprintf("%d", s.NonCompliant),
			fmt.Sprintf("%d", s.NotApplicable),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
