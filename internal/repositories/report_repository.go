package repositories

import (
	"context"
	"fmt"
	"greenquest/internal/database"
	"greenquest/internal/models"
	"time"

	"go.uber.org/zap"
)

type reportRepository struct {
	*BaseRepository
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.Manager, logger *zap.Logger) ReportRepository {
	return &reportRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const reportSelectColumns = `
	r.id, r.user_id, r.collector_id, r.location, r.waste_type, r.amount,
	r.status, r.image_url, r.image_public_id, r.verification_result,
	r.created_at, r.updated_at, r.completed_at,
	u.username, c.username AS collector_username`

const reportJoins = `
	FROM reports r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN users c ON c.id = r.collector_id`

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create creates a new waste report
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (user_id, location, waste_type, amount, status, image_url, image_public_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}

	err := r.QueryRowContext(ctx, query,
		report.UserID,
		report.Location,
		report.WasteType,
		report.Amount,
		report.Status,
		report.ImageURL,
		report.ImagePublicID,
		report.CreatedAt,
		report.UpdatedAt,
	).Scan(&report.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create report",
			zap.Error(err),
			zap.Int64("user_id", report.UserID),
			zap.String("waste_type", report.WasteType),
		)
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetByID retrieves a report by ID with reporter and collector info
func (r *reportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1", reportSelectColumns, reportJoins)

	report := &models.Report{}
	err := r.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.UserID,
		&report.CollectorID,
		&report.Location,
		&report.WasteType,
		&report.Amount,
		&report.Status,
		&report.ImageURL,
		&report.ImagePublicID,
		&report.VerificationResult,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.CompletedAt,
		&report.Username,
		&report.CollectorUsername,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		r.GetLogger().Error("Failed to get report by ID", zap.Error(err), zap.Int64("report_id", id))
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// Update updates a report's mutable fields
func (r *reportRepository) Update(ctx context.Context, report *models.Report) error {
	query := `
		UPDATE reports
		SET location = $2, waste_type = $3, amount = $4, image_url = $5,
		    image_public_id = $6, verification_result = $7, updated_at = $8
		WHERE id = $1`

	report.UpdatedAt = time.Now()

	result, err := r.ExecContext(ctx, query,
		report.ID,
		report.Location,
		report.WasteType,
		report.Amount,
		report.ImageURL,
		report.ImagePublicID,
		report.VerificationResult,
		report.UpdatedAt,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update report", zap.Error(err), zap.Int64("report_id", report.ID))
		return fmt.Errorf("failed to update report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found: %d", report.ID)
	}

	return nil
}

// Delete removes a report
func (r *reportRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM reports WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id)
	if err != nil {
		r.GetLogger().Error("Failed to delete report", zap.Error(err), zap.Int64("report_id", id))
		return fmt.Errorf("failed to delete report: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found: %d", id)
	}

	return nil
}

// ===============================
// STATUS MANAGEMENT
// ===============================

// UpdateStatus sets a report's status. The completed_at timestamp is
// only written when the transition reaches the completed state.
func (r *reportRepository) UpdateStatus(ctx context.Context, reportID int64, status string, completedAt *time.Time) error {
	query := `
		UPDATE reports
		SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = $4
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query, reportID, status, completedAt, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to update report status",
			zap.Error(err),
			zap.Int64("report_id", reportID),
			zap.String("status", status),
		)
		return fmt.Errorf("failed to update report status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found: %d", reportID)
	}

	return nil
}

// AssignCollector attaches a collector to a pending report
func (r *reportRepository) AssignCollector(ctx context.Context, reportID, collectorID int64) error {
	query := `
		UPDATE reports
		SET collector_id = $2, status = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query, reportID, collectorID, models.ReportStatusAssigned, time.Now())
	if err != nil {
		r.GetLogger().Error("Failed to assign collector",
			zap.Error(err),
			zap.Int64("report_id", reportID),
			zap.Int64("collector_id", collectorID),
		)
		return fmt.Errorf("failed to assign collector: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found: %d", reportID)
	}

	return nil
}

// ===============================
// LISTING & FILTERING
// ===============================

// List retrieves reports with pagination
func (r *reportRepository) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return r.listReports(ctx, params, "", nil)
}

// GetByUserID retrieves reports submitted by a user
func (r *reportRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return r.listReports(ctx, params, "WHERE r.user_id = $1", []interface{}{userID})
}

// GetByCollectorID retrieves reports assigned to a collector
func (r *reportRepository) GetByCollectorID(ctx context.Context, collectorID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return r.listReports(ctx, params, "WHERE r.collector_id = $1", []interface{}{collectorID})
}

// GetByStatus retrieves reports in a given lifecycle state
func (r *reportRepository) GetByStatus(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Report], error) {
	return r.listReports(ctx, params, "WHERE r.status = $1", []interface{}{status})
}

func (r *reportRepository) listReports(ctx context.Context, params models.PaginationParams, where string, args []interface{}) (*models.PaginatedResponse[*models.Report], error) {
	params = r.NormalizePagination(params)

	countWhere := where
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports r %s", countWhere)
	total, err := r.GetTotalCount(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	query := fmt.Sprintf("SELECT %s %s %s", reportSelectColumns, reportJoins, where)
	// Sort columns are on the reports table; qualify to avoid join ambiguity.
	sortParams := params
	sortParams.Sort = "r." + params.Sort
	clause, pageArgs := r.OrderLimitOffset(sortParams, len(args)+1)
	query += clause
	args = append(args, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report := &models.Report{}
		err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.CollectorID,
			&report.Location,
			&report.WasteType,
			&report.Amount,
			&report.Status,
			&report.ImageURL,
			&report.ImagePublicID,
			&report.VerificationResult,
			&report.CreatedAt,
			&report.UpdatedAt,
			&report.CompletedAt,
			&report.Username,
			&report.CollectorUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return &models.PaginatedResponse[*models.Report]{
		Data:       reports,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

// ===============================
// PROGRESS AGGREGATION INPUTS
// ===============================

// SumCompletedAmountByUser totals the waste amount across a user's
// completed reports.
func (r *reportRepository) SumCompletedAmountByUser(ctx context.Context, userID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM reports
		WHERE user_id = $1 AND status = $2`

	var total float64
	err := r.QueryRowContext(ctx, query, userID, models.ReportStatusCompleted).Scan(&total)
	if err != nil {
		r.GetLogger().Error("Failed to sum completed amounts", zap.Error(err), zap.Int64("user_id", userID))
		return 0, fmt.Errorf("failed to sum completed amounts: %w", err)
	}
	return total, nil
}

// CountCompletedByUser counts a user's completed reports as submitter
func (r *reportRepository) CountCompletedByUser(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reports WHERE user_id = $1 AND status = $2`

	var count int
	err := r.QueryRowContext(ctx, query, userID, models.ReportStatusCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed reports: %w", err)
	}
	return count, nil
}

// CountCompletedByCollector counts completed pickups fulfilled by a collector
func (r *reportRepository) CountCompletedByCollector(ctx context.Context, collectorID int64) (int, error) {
	query := `SELECT COUNT(*) FROM reports WHERE collector_id = $1 AND status = $2`

	var count int
	err := r.QueryRowContext(ctx, query, collectorID, models.ReportStatusCompleted).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed pickups: %w", err)
	}
	return count, nil
}
