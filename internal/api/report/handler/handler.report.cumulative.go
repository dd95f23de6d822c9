// Package reporthdl - Handler cho Cumulative Report: CRUD đọc + generate/send.
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

// CumulativeReportHandler xử lý request cho cumulative_reports.
type CumulativeReportHandler struct {
	*basehdl.BaseHandler[reportmodels.CumulativeReport, reportdto.CumulativeReportCreateInput, reportdto.CumulativeReportUpdateInput]
	Svc *reportsvc.CumulativeReportService
}

// NewCumulativeReportHandler tạo mới CumulativeReportHandler.
func NewCumulativeReportHandler(narrator reportsvc.Narrator) (*CumulativeReportHandler, error) {
	svc, err := reportsvc.NewCumulativeReportService(narrator)
	if err != nil {
		return nil, fmt.Errorf("tạo CumulativeReportService: %w", err)
	}
	return &CumulativeReportHandler{
		BaseHandler: basehdl.NewBaseHandler[reportmodels.CumulativeReport, reportdto.CumulativeReportCreateInput, reportdto.CumulativeReportUpdateInput](svc),
		Svc:         svc,
	}, nil
}

// HandleGenerate tổng hợp báo cáo vùng cho một (region, period).
// POST /cumulative-report/generate
func (h *CumulativeReportHandler) HandleGenerate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input reportdto.GenerateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		generated, err := h.Svc.Generate(c.Context(), input.Region, input.PeriodKey)
		if err == nil {
			logger.LogCRUD("generate", "cumulative_report", generated.ID.Hex(), c, map[string]interface{}{
				"region":    input.Region,
				"periodKey": input.PeriodKey,
			})
		}
		h.HandleResponse(c, generated, err)
		return nil
	})
}

// HandleSend gửi báo cáo tổng hợp đến danh sách người nhận.
// POST /cumulative-report/:id/send
func (h *CumulativeReportHandler) HandleSend(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id := h.GetIDFromContext(c)
		if !primitive.IsValidObjectID(id) {
			h.HandleResponse(c, nil, common.WithDetails(common.ErrInvalidFormat, fmt.Sprintf("ID '%s' không đúng định dạng ObjectID", id)))
			return nil
		}

		var input reportdto.SendInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		sent, err := h.Svc.Send(c.Context(), utility.String2ObjectID(id), input.Recipients, h.GetActorID(c))
		if err == nil {
			logger.LogTransition("send", sent.ID.Hex(), reportmodels.CumulativeStatusReady, sent.Status, c, map[string]interface{}{
				"recipientCount": len(input.Recipients),
			})
		}
		h.HandleResponse(c, sent, err)
		return nil
	})
}
