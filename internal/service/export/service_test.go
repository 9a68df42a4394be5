package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/mocks"
	"compliance-platform/internal/service/export"
	"compliance-platform/internal/workflow"
)

func sampleRegulations() []domain.Regulation {
	issue := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []domain.Regulation{
		{
			ID:          uuid.New(),
			Reference:   "REG-2024-001",
			Name:        "Capital Adequacy Rule",
			Type:        domain.TypeRegulation,
			Status:      workflow.StatusFullyApproved,
			IssueDate:   &issue,
			CreatedAt:   issue,
			Departments: []domain.Department{
				{Name: "Finance"},
				{Name: "Risk"},
			},
		},
		{
			ID:        uuid.New(),
			Reference: "REG-2024-002",
			Name:      "Outsourcing Guideline",
			Type:      domain.TypeGuideline,
			Status:    workflow.StatusDraft,
			CreatedAt: issue,
		},
	}
}

func TestService_RegulationsCSV(t *testing.T) {
	ctx := context.Background()
	regRepo := new(mocks.RegulationRepository)
	svc := export.NewService(regRepo, new(mocks.ComplianceRepository))

	regRepo.On("ListForExport", ctx).Return(sampleRegulations(), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.RegulationsCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "reference", records[0][0])
	assert.Equal(t, "REG-2024-001", records[1][0])
	assert.Equal(t, "Finance; Risk", records[1][4])
	assert.Equal(t, "2024-01-15", records[1][5])
	assert.Equal(t, "", records[2][5], "missing dates render as empty strings")
}

func TestService_RegulationsXLSX(t *testing.T) {
	ctx := context.Background()
	regRepo := new(mocks.RegulationRepository)
	svc := export.NewService(regRepo, new(mocks.ComplianceRepository))

	regRepo.On("ListForExport", ctx).Return(sampleRegulations(), nil)

	f, err := svc.RegulationsXLSX(ctx)
	require.NoError(t, err)

	header, err := f.GetCellValue("Regulations", "A1")
	require.NoError(t, err)
	assert.Equal(t, "reference", header)

	ref, err := f.GetCellValue("Regulations", "A2")
	require.NoError(t, err)
	assert.Equal(t, "REG-2024-001", ref)

	status, err := f.GetCellValue("Regulations", "D3")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusDraft), status)
}

func TestService_ComplianceSummaryCSV(t *testing.T) {
	ctx := context.Background()
	compRepo := new(mocks.ComplianceRepository)
	svc := export.NewService(new(mocks.RegulationRepository), compRepo)

	compRepo.On("SummaryByDepartment", ctx).Return([]domain.DepartmentComplianceSummary{
		{DepartmentName: "Finance", Compliant: 4, PartiallyCompliant: 1, NonCompliant: 2, NotApplicable: 0},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ComplianceSummaryCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"department", "compliant", "partially_compliant", "non_compliant", "not_applicable"}, records[0])
	assert.Equal(t, []string{"Finance", "4", "1", "2", "0"}, records[1])
}
