package handler

import (
	"errors"
	"strconv"

	"pokerpot/internal/config"
	"pokerpot/internal/repository"
	"pokerpot/internal/service"
	"pokerpot/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	profileService     *service.ProfileService
	deviceService      *service.DeviceService
	poolService        *service.PoolService
	memberService      *service.MemberService
	settingsService    *service.SettingsService
	transactionService *service.TransactionService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		profileService:     service.NewProfileService(db, cfg),
		deviceService:      service.NewDeviceService(db),
		poolService:        service.NewPoolService(db, cfg),
		memberService:      service.NewMemberService(db, cfg),
		settingsService:    service.NewSettingsService(db, cfg),
		transactionService: service.NewTransactionService(db, rdb, cfg),
	}
}

// writeServiceError 错误种类到传输层状态码的映射
// not-found → 404，凭证类 → 401，请求不合法 → 400，其余 → 500
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPoolNotFound):
		response.NotFound(c, response.CodePoolNotFound, "奖池不存在")
	case errors.Is(err, repository.ErrPoolSettingsNotFound):
		response.NotFound(c, response.CodePoolSettingsNotFound, "奖池设置不存在")
	case errors.Is(err, repository.ErrProfileNotFound):
		response.NotFound(c, response.CodeUserNotFound, "用户不存在")
	case errors.Is(err, repository.ErrEmailNotFound):
		response.NotFound(c, response.CodeEmailNotFound, "邮箱未注册")
	case errors.Is(err, repository.ErrDeviceNotFound):
		response.NotFound(c, response.CodeNotFound, "设备不存在")
	case errors.Is(err, repository.ErrTransactionNotFound):
		response.NotFound(c, response.CodeTransactionNotFound, "交易流水不存在")
	case errors.Is(err, repository.ErrEmailExists):
		response.BusinessError(c, response.CodeEmailAlreadyExists, "邮箱已被注册")
	case errors.Is(err, service.ErrInvalidPassword):
		response.Unauthorized(c, response.CodeInvalidPassword, "奖池密码错误")
	case errors.Is(err, service.ErrInvalidCredential):
		response.Unauthorized(c, response.CodeInvalidCredential, "邮箱或密码错误")
	case errors.Is(err, service.ErrInvalidTransactionType):
		response.BusinessError(c, response.CodeInvalidTransaction, "无法识别的交易类型")
	case errors.Is(err, service.ErrUnknownSettingsField):
		response.BusinessError(c, response.CodeUnknownSettingsField, err.Error())
	case errors.Is(err, service.ErrInvalidSettingsValue):
		response.BusinessError(c, response.CodeInvalidSettingsValue, err.Error())
	case errors.Is(err, service.ErrPoolExpired):
		response.BusinessError(c, response.CodePoolExpired, "奖池已过期，不能恢复")
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 用户相关接口
// ============================================================

// Signup 注册
// POST /api/v1/user/signup
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	auth, err := h.profileService.Signup(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, auth)
}

// Login 登录
// POST /api/v1/user/login
func (h *Handler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	auth, err := h.profileService.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, auth)
}

// GetProfile 查询用户资料
// GET /api/v1/user/detail?profile_id=xxx
func (h *Handler) GetProfile(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Query("profile_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "profile_id 参数错误")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"profile_id": profile.ID,
		"email":      profile.Email,
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
	})
}

// ============================================================
// 设备相关接口
// ============================================================

// RegisterDevice 注册设备
// POST /api/v1/device/register
func (h *Handler) RegisterDevice(c *gin.Context) {
	device, err := h.deviceService.Register(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"device_id": device.ID,
	})
}

// ============================================================
// 奖池相关接口
// ============================================================

// CreatePool 创建奖池
// POST /api/v1/pool/create
func (h *Handler) CreatePool(c *gin.Context) {
	var req service.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	view, err := h.poolService.Create(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, view)
}

// GetPool 查询奖池完整视图
// GET /api/v1/pool/detail?pool_id=xxx
func (h *Handler) GetPool(c *gin.Context) {
	poolID := c.Query("pool_id")
	if poolID == "" {
		response.ParamError(c, "pool_id 参数不能为空")
		return
	}

	view, err := h.poolService.GetByID(c.Request.Context(), poolID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, view)
}

// ListPoolsByUser 查询用户加入的奖池
// GET /api/v1/pool/list/user?profile_id=xxx&expired=false&offset=0&per_page=10
func (h *Handler) ListPoolsByUser(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Query("profile_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "profile_id 参数错误")
		return
	}

	expired, _ := strconv.ParseBool(c.DefaultQuery("expired", "false"))
	itemOffset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	views, err := h.poolService.GetByUserID(c.Request.Context(), profileID, expired, itemOffset, perPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":     views,
		"offset":   itemOffset,
		"per_page": perPage,
	})
}

// ListPoolsByDevice 查询设备创建的奖池
// GET /api/v1/pool/list/device?device_id=xxx&offset=0&per_page=10
func (h *Handler) ListPoolsByDevice(c *gin.Context) {
	deviceID, err := strconv.ParseInt(c.Query("device_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "device_id 参数错误")
		return
	}

	itemOffset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	views, err := h.poolService.GetByDeviceID(c.Request.Context(), deviceID, itemOffset, perPage)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":     views,
		"offset":   itemOffset,
		"per_page": perPage,
	})
}

// JoinPool 加入奖池
// POST /api/v1/pool/join
func (h *Handler) JoinPool(c *gin.Context) {
	var req service.JoinPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.memberService.Join(c.Request.Context(), &req); err != nil {
		writeServiceError(c, err)
		return
	}

	count, err := h.memberService.Count(c.Request.Context(), req.PoolID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"pool_id":      req.PoolID,
		"member_count": count,
	})
}

// UpdateSettings 批量修改奖池设置
// POST /api/v1/pool/settings/update
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	view, err := h.settingsService.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, view)
}

// ============================================================
// 交易相关接口
// ============================================================

// CreateTransaction 买入/提取
// POST /api/v1/pool/transaction
//
// 【关键点】记账是整个系统最核心的操作，需要保证：
// 1. 原子性：流水插入、余额更新、过期标记同时成功或同时失败
// 2. 并发安全：分布式锁 + 乐观锁防止并发提取超扣
// 3. 截断语义：提取超过剩余可提取时按剩余值入账，返回实际金额
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.transactionService.CreateTransaction(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// GetTransaction 按流水号查询交易
// GET /api/v1/pool/transaction/detail?transaction_no=xxx
func (h *Handler) GetTransaction(c *gin.Context) {
	transactionNo := c.Query("transaction_no")
	if transactionNo == "" {
		response.ParamError(c, "transaction_no 参数不能为空")
		return
	}

	trans, err := h.transactionService.GetByTransactionNo(c.Request.Context(), transactionNo)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, trans)
}

// ListUserTransactions 查询用户的流水记录
// GET /api/v1/user/transactions?profile_id=xxx&page=1&page_size=10
func (h *Handler) ListUserTransactions(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Query("profile_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "profile_id 参数错误")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	transactions, total, err := h.transactionService.ListByProfileID(c.Request.Context(), profileID, page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":  transactions,
		"total": total,
		"page":  page,
	})
}
