package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"time-tracker/internal/dto"
	"time-tracker/internal/model"
	"time-tracker/internal/service"
	"time-tracker/pkg/response"
)

// 面向客户端的提示文案
const (
	MsgInvalidTimeRequest = "The request must have a EmployeId, Date and Type"
	MsgTimeNotFound       = "Time not found."
	MsgTimeConflict       = "Time was modified by another request."
	MsgInvalidIfMatch     = "Invalid If-Match header."
	MsgInvalidBody        = "Invalid request body."
)

// TimeEntryHandler 打卡模块 HTTP 处理器
type TimeEntryHandler struct {
	timeSvc service.TimeEntryService
}

// NewTimeEntryHandler 创建 TimeEntryHandler
func NewTimeEntryHandler(timeSvc service.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{timeSvc: timeSvc}
}

// CreateTime 创建打卡记录
// POST /time
func (h *TimeEntryHandler) CreateTime(c *gin.Context) {
	var req dto.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, MsgInvalidTimeRequest)
		return
	}

	entry, err := h.timeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTimeError(c, err)
		return
	}

	c.Header("ETag", entry.ETag)
	response.OK(c, "New time stored in table.", entry)
}

// GetAllTime 获取全部打卡记录
// GET /time
func (h *TimeEntryHandler) GetAllTime(c *gin.Context) {
	entries, err := h.timeSvc.List(c.Request.Context())
	if err != nil {
		h.handleTimeError(c, err)
		return
	}

	response.OK(c, "Retrieved all time", entries)
}

// GetTimeByID 获取打卡记录详情
// GET /time/:id
func (h *TimeEntryHandler) GetTimeByID(c *gin.Context) {
	id := c.Param("id")

	entry, err := h.timeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTimeError(c, err)
		return
	}

	c.Header("ETag", entry.ETag)
	response.OK(c, fmt.Sprintf("Retrieved time: %s", id), entry)
}

// UpdateTime 更新打卡记录（仅 date）
// PUT /time/:id
func (h *TimeEntryHandler) UpdateTime(c *gin.Context) {
	id := c.Param("id")

	ifMatch, ok := parseIfMatch(c)
	if !ok {
		return
	}

	// 空请求体等价于空补丁
	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, MsgInvalidBody)
		return
	}

	entry, err := h.timeSvc.Update(c.Request.Context(), id, &req, ifMatch)
	if err != nil {
		h.handleTimeError(c, err)
		return
	}

	c.Header("ETag", entry.ETag)
	response.OK(c, fmt.Sprintf("time: %s Update in table", id), entry)
}

// DeleteTime 删除打卡记录，返回被删除的记录
// DELETE /time/:id
func (h *TimeEntryHandler) DeleteTime(c *gin.Context) {
	id := c.Param("id")

	ifMatch, ok := parseIfMatch(c)
	if !ok {
		return
	}

	entry, err := h.timeSvc.Delete(c.Request.Context(), id, ifMatch)
	if err != nil {
		h.handleTimeError(c, err)
		return
	}

	response.OK(c, fmt.Sprintf("Deleted time: %s", id), entry)
}

// parseIfMatch 解析可选的 If-Match 头；未提供时返回零值令牌
// 格式非法时写入 400 响应并返回 false，调用方应直接 return
func parseIfMatch(c *gin.Context) (model.ETag, bool) {
	raw := c.GetHeader("If-Match")
	if raw == "" {
		return model.ETag{}, true
	}
	etag, err := model.ParseETag(raw)
	if err != nil {
		response.BadRequest(c, MsgInvalidIfMatch)
		return model.ETag{}, false
	}
	return etag, true
}

// handleTimeError 统一处理打卡模块业务错误
func (h *TimeEntryHandler) handleTimeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTimeRequest):
		response.BadRequest(c, MsgInvalidTimeRequest)
	case errors.Is(err, service.ErrTimeNotFound):
		response.BadRequest(c, MsgTimeNotFound)
	case errors.Is(err, service.ErrTimeConflict):
		response.Conflict(c, MsgTimeConflict)
	case errors.Is(err, service.ErrStoreUnavailable):
		_ = c.Error(err)
		response.ServiceUnavailable(c)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
