// Package exporthdl - Handler cho domain Export: yêu cầu export, hủy job, tra cứu.
package exporthdl

import (
	"fmt"

	basehdl "ambassador_hub/internal/api/base/handler"
	exportdto "ambassador_hub/internal/api/export/dto"
	exportmodels "ambassador_hub/internal/api/export/models"
	exportsvc "ambassador_hub/internal/api/export/service"
	"ambassador_hub/internal/common"
	"ambassador_hub/internal/logger"
	"ambassador_hub/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportJobHandler xử lý request cho export_jobs.
type ExportJobHandler struct {
	*basehdl.BaseHandler[exportmodels.ExportJob, exportdto.ExportJobCreateInput, exportdto.ExportJobUpdateInput]
	Svc *exportsvc.ExportJobService
}

// NewExportJobHandler tạo mới ExportJobHandler.
func NewExportJobHandler() (*ExportJobHandler, error) {
	svc, err := exportsvc.NewExportJobService()
	if err != nil {
		return nil, fmt.Errorf("tạo ExportJobService: %w", err)
	}
	return &ExportJobHandler{
		BaseHandler: basehdl.NewBaseHandler[exportmodels.ExportJob, exportdto.ExportJobCreateInput, exportdto.ExportJobUpdateInput](svc),
		Svc:         svc,
	}, nil
}

// parseJobID đọc và kiểm tra param :id.
func (h *ExportJobHandler) parseJobID(c fiber.Ctx) (primitive.ObjectID, error) {
	id := h.GetIDFromContext(c)
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", id))
	}
	return objID, nil
}

// HandleRequestExport tạo job export mới cho một báo cáo.
// POST /export-job/request
func (h *ExportJobHandler) HandleRequestExport(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input exportdto.ExportJobCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		targetID, err := primitive.ObjectIDFromHex(input.TargetReportID)
		if err != nil {
			h.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("targetReportId '%s' không đúng định dạng ObjectID", input.TargetReportID)))
			return nil
		}

		job, err := h.Svc.RequestExport(c.Context(), targetID, input.TargetReportType, input.Format, h.GetActorID(c))
		if err == nil {
			logger.LogCRUD("create", "export_job", job.ID.Hex(), c, map[string]interface{}{
				"targetReportId":   input.TargetReportID,
				"targetReportType": input.TargetReportType,
				"format":           input.Format,
			})
		}
		h.HandleResponse(c, job, err)
		return nil
	})
}

// HandleCancel hủy một job đang pending hoặc processing.
// POST /export-job/:id/cancel
func (h *ExportJobHandler) HandleCancel(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		jobID, err := h.parseJobID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		job, err := h.Svc.Cancel(c.Context(), jobID)
		if err == nil {
			logger.LogCRUD("cancel", "export_job", jobID.Hex(), c, nil)
		}
		h.HandleResponse(c, job, err)
		return nil
	})
}

// HandleQuery liệt kê job theo bộ lọc đơn giản, có phân trang.
// GET /export-job/query
func (h *ExportJobHandler) HandleQuery(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input exportdto.ExportJobQueryInput
		if err := h.ParseRequestQuery(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		filter := bson.M{}
		if input.Status != "" {
			filter["status"] = input.Status
		}
		if input.RequestedBy != "" {
			filter["requestedBy"] = input.RequestedBy
		}

		page := utility.P2Int64(input.Page)
		limit := utility.P2Int64(input.Limit)
		if page <= 0 {
			page = 1
		}
		if limit <= 0 {
			limit = 10
		}

		result, err := h.Svc.FindWithPagination(c.Context(), filter, page, limit, nil)
		h.HandleResponse(c, result, err)
		return nil
	})
}
