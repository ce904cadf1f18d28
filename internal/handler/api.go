package handler

import (
	"go.uber.org/zap"

	"github.com/tradelog/internal/db"
	"github.com/tradelog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *db.DB
	logger       *zap.Logger
	categories   *service.CategoryService
	trades       *service.TradeService
	failureCases *service.FailureCaseService
	reviews      *service.DailyReviewService
	funds        *service.DailyFundService
	systems      *service.ReferenceService
	restrictions *service.ReferenceService
	uploads      *service.UploadService
}

// NewAPI constructs a handler set with shared services.
// uploads 可以为 nil，此时上传相关接口返回 503。
func NewAPI(handle *db.DB, uploads *service.UploadService, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	gdb := handle.Gorm
	return &API{
		db:           handle,
		logger:       logger,
		categories:   service.NewCategoryService(gdb),
		trades:       service.NewTradeService(gdb),
		failureCases: service.NewFailureCaseService(gdb),
		reviews:      service.NewDailyReviewService(gdb),
		funds:        service.NewDailyFundService(gdb),
		systems:      service.NewTradingSystemService(gdb),
		restrictions: service.NewTradingRestrictionService(gdb),
		uploads:      uploads,
	}
}
