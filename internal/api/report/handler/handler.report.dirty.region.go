// Package reporthdl - Handler CRUD cho Dirty Region (chỉ đọc qua router).
package reporthdl

import (
	"fmt"

	basehdl "ambassador_hub/internal/api/base/handler"
	reportdto "ambassador_hub/internal/api/report/dto"
	reportmodels "ambassador_hub/internal/api/report/models"
	reportsvc "ambassador_hub/internal/api/report/service"
)

// DirtyRegionHandler xử lý CRUD cho dirty region (dirty_regions).
type DirtyRegionHandler struct {
	*basehdl.BaseHandler[reportmodels.DirtyRegion, reportdto.DirtyRegionCreateInput, reportdto.DirtyRegionUpdateInput]
}

// NewDirtyRegionHandler tạo mới DirtyRegionHandler.
func NewDirtyRegionHandler() (*DirtyRegionHandler, error) {
	svc, err := reportsvc.NewDirtyRegionService()
	if err != nil {
		return nil, fmt.Errorf("tạo DirtyRegionService: %w", err)
	}
	return &DirtyRegionHandler{
		BaseHandler: basehdl.NewBaseHandler[reportmodels.DirtyRegion, reportdto.DirtyRegionCreateInput, reportdto.DirtyRegionUpdateInput](svc),
	}, nil
}
