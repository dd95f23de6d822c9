// Package reporthdl - Handler cho Monthly Report: CRUD + các thao tác
// chuyển trạng thái của máy trạng thái báo cáo.
package reporthdl

import (
	"fmt"

	basehdl "ambassador_hub/internal/api/base/handler"
	reportdto "ambassador_hub/internal/api/report/dto"
	reportmodels "ambassador_hub/internal/api/report/models"
	reportsvc "ambassador_hub/internal/api/report/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/logger"
	"ambassador_hub/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MonthlyReportHandler xử lý request cho monthly_reports.
type MonthlyReportHandler struct {
	*basehdl.BaseHandler[reportmodels.MonthlyReport, reportdto.MonthlyReportCreateInput, reportdto.MonthlyReportUpdateInput]
	Svc *reportsvc.MonthlyReportService
}

// NewMonthlyReportHandler tạo mới MonthlyReportHandler.
func NewMonthlyReportHandler() (*MonthlyReportHandler, error) {
	svc, err := reportsvc.NewMonthlyReportService()
	if err != nil {
		return nil, fmt.Errorf("tạo MonthlyReportService: %w", err)
	}
	return &MonthlyReportHandler{
		BaseHandler: basehdl.NewBaseHandler[reportmodels.MonthlyReport, reportdto.MonthlyReportCreateInput, reportdto.MonthlyReportUpdateInput](svc),
		Svc:         svc,
	}, nil
}

// parseReportID đọc và kiểm tra :id từ URI.
func (h *MonthlyReportHandler) parseReportID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := h.GetIDFromContext(c)
	if !primitive.IsValidObjectID(id) {
		return primitive.NilObjectID, common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", id))
	}
	return utility.String2ObjectID(id), nil
}

// HandleCreate tạo báo cáo mới ở trạng thái draft.
// POST /monthly-report/create
func (h *MonthlyReportHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reportdto.MonthlyReportCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		report := reportmodels.MonthlyReport{
			AuthorID:   input.AuthorID,
			AuthorName: input.AuthorName,
			Region:     input.Region,
			Period:     input.Period,
			Payload:    input.Payload,
		}
		created, err := h.Svc.Create(c.Context(), report)
		if err == nil {
			logger.LogCRUD("create", "monthly_report", created.ID.Hex(), c, nil)
		}
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleUpdateDraft cho tác giả sửa payload khi báo cáo còn draft.
// PUT /monthly-report/:id/draft
func (h *MonthlyReportHandler) HandleUpdateDraft(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input struct {
			Version    int64                      `json:"version" validate:"required,min=1"`
			AuthorName string                     `json:"authorName"`
			Payload    reportmodels.ReportPayload `json:"payload"`
		}
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Svc.UpdateDraft(c.Context(), id, h.GetActorID(c), input.Version, input.AuthorName, input.Payload)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSubmit submit báo cáo (draft → submitted).
// POST /monthly-report/:id/submit
func (h *MonthlyReportHandler) HandleSubmit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reportdto.SubmitInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Svc.Submit(c.Context(), id, h.GetActorID(c), input.Version)
		if err == nil {
			logger.LogTransition("submit", updated.ID.Hex(), reportmodels.ReportStatusDraft, updated.Status, c, nil)
		}
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleClaim cho reviewer nhận xử lý báo cáo (submitted → under_review).
// POST /monthly-report/:id/claim
func (h *MonthlyReportHandler) HandleClaim(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reportdto.ClaimInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Svc.ClaimForReview(c.Context(), id, h.GetActorID(c), input.Version)
		if err == nil {
			logger.LogTransition("claim", updated.ID.Hex(), reportmodels.ReportStatusSubmitted, updated.Status, c, nil)
		}
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDecide ra quyết định cho báo cáo (approved / rejected / revision_requested).
// POST /monthly-report/:id/decide
func (h *MonthlyReportHandler) HandleDecide(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reportdto.DecideInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Svc.Decide(c.Context(), id, h.GetActorID(c), input.Outcome, input.Feedback, input.Rating, input.Version)
		if err == nil {
			logger.LogTransition("decide", updated.ID.Hex(), "", updated.Status, c, map[string]interface{}{
				"outcome": input.Outcome,
			})
		}
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleResubmit cho tác giả nộp lại sau revision_requested.
// POST /monthly-report/:id/resubmit
func (h *MonthlyReportHandler) HandleResubmit(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input reportdto.ResubmitInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Svc.ResubmitAfterRevision(c.Context(), id, h.GetActorID(c), input.Payload, input.Version)
		if err == nil {
			logger.LogTransition("resubmit", updated.ID.Hex(), reportmodels.ReportStatusRevisionRequested, updated.Status, c, nil)
		}
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleQuery danh sách báo cáo theo bộ lọc của Query/Filter Layer.
// GET /monthly-report/query
func (h *MonthlyReportHandler) HandleQuery(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reportdto.ReportQueryInput
		if err := h.ParseRequestQuery(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Svc.Query(c.Context(), input)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleSoftDelete xóa mềm một báo cáo.
// DELETE /monthly-report/:id/soft
func (h *MonthlyReportHandler) HandleSoftDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.parseReportID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		deleted, err := h.Svc.SoftDelete(c.Context(), id)
		if err == nil {
			logger.LogCRUD("soft_delete", "monthly_report", deleted.ID.Hex(), c, nil)
		}
		h.HandleResponse(c, deleted, err)
		return nil
	})
}
