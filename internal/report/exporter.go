package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	requestSheet = "Requests"
	auditSheet   = "Audit Trail"

	exportBatchSize = 500
)

// Exporter builds the HR/finance workbook: one sheet listing every travel
// request, one sheet with the full audit trail.
type Exporter struct {
	requests port.RequestRepository
	audits   port.AuditRepository
	logger   *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(requests port.RequestRepository, audits port.AuditRepository, logger *zap.Logger) *Exporter {
	return &Exporter{
		requests: requests,
		audits:   audits,
		logger:   logger,
	}
}

// Export assembles the workbook. The caller owns the returned file and
// must Close it.
func (e *Exporter) Export(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName("Sheet1", requestSheet)
	if _, err := f.NewSheet(auditSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create audit sheet: %w", err)
	}

	if err := e.fillRequests(ctx, f); err != nil {
		f.Close()
		return nil, err
	}

	e.logger.Info("Travel request report exported")
	return f, nil
}

func (e *Exporter) fillRequests(ctx context.Context, f *excelize.File) error {
	requestHeader := []interface{}{
		"ID", "Owner", "Origin", "Destination", "Start", "End",
		"Purpose", "Modes", "Status", "Stage", "Version", "Stage Entered", "Created",
	}
	if err := f.SetSheetRow(requestSheet, "A1", &requestHeader); err != nil {
		return fmt.Errorf("failed to write request header: %w", err)
	}

	auditHeader := []interface{}{
		"Request ID", "Actor", "Role", "Action",
		"From Stage", "From Status", "To Stage", "To Status",
		"Version", "Comment", "Timestamp",
	}
	if err := f.SetSheetRow(auditSheet, "A1", &auditHeader); err != nil {
		return fmt.Errorf("failed to write audit header: %w", err)
	}

	requestRow, auditRow := 2, 2
	offset := 0

	for {
		batch, err := e.requests.List(ctx, exportBatchSize, offset)
		if err != nil {
			return fmt.Errorf("failed to list requests for export: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, req := range batch {
			row := []interface{}{
				req.ID,
				req.OwnerID,
				req.Origin,
				req.Destination,
				req.StartDate.Format("2006-01-02"),
				req.EndDate.Format("2006-01-02"),
				req.Purpose,
				strings.Join(req.Modes, ", "),
				req.Status.String(),
				req.Stage.String(),
				req.Version,
				req.StageEnteredAt.Format("2006-01-02 15:04:05"),
				req.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			cell, err := excelize.CoordinatesToCellName(1, requestRow)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(requestSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write request row: %w", err)
			}
			requestRow++

			entries, err := e.audits.ListByRequest(ctx, req.ID)
			if err != nil {
				return fmt.Errorf("failed to list audit entries for export: %w", err)
			}
			for _, entry := range entries {
				auditValues := []interface{}{
					entry.RequestID,
					entry.ActorID,
					entry.ActorRole.String(),
					entry.Action.String(),
					entry.FromStage.String(),
					entry.FromStatus.String(),
					entry.ToStage.String(),
					entry.ToStatus.String(),
					entry.Version,
					entry.Comment,
					entry.Timestamp.Format("2006-01-02 15:04:05"),
				}
				cell, err := excelize.CoordinatesToCellName(1, auditRow)
				if err != nil {
					return err
				}
				if err := f.SetSheetRow(auditSheet, cell, &auditValues); err != nil {
					return fmt.Errorf("failed to write audit row: %w", err)
				}
				auditRow++
			}
		}

		offset += len(batch)
	}
}
