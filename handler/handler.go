package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gehunter2001-alt/ruStore/database"
	"github.com/gehunter2001-alt/ruStore/model"
)

// Response 统一响应格式
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// CreateTaskRequest 创建任务请求体
type CreateTaskRequest struct {
	Title string         `json:"title" example:"检查燃气灶"`
	Icon  model.IconCode `json:"icon" example:"3"`
}

// UpdateTaskRequest 编辑任务请求体。
// 只能改标题和图标，完成状态走 toggle 接口，ID 不可变。
type UpdateTaskRequest struct {
	Title *string         `json:"title,omitempty" example:"关好阳台窗户"`
	Icon  *model.IconCode `json:"icon,omitempty" example:"2"`
}

// ErrorInfo 错误信息
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler 处理器结构体
type Handler struct {
	store *database.TaskStore
}

// 超时配置
const (
	DefaultTimeout = 10 * time.Second // 默认超时
	ListTimeout    = 5 * time.Second  // 列表查询超时
	CreateTimeout  = 3 * time.Second  // 创建超时
	UpdateTimeout  = 3 * time.Second  // 编辑超时
	ToggleTimeout  = 3 * time.Second  // 勾选/取消勾选超时
	DeleteTimeout  = 2 * time.Second  // 删除超时
	ResetTimeout   = 3 * time.Second  // 手动重置超时
	StatsTimeout   = 5 * time.Second  // 统计查询超时
)

// NewHandler 创建新的处理器
func NewHandler(store *database.TaskStore) *Handler {
	return &Handler{store: store}
}

// sendJSON 发送JSON响应
func (h *Handler) sendJSON(w http.ResponseWriter, status int, response Response) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(response); err != nil {
		// JSON编码失败，直接返回纯文本错误，不要再尝试调用sendError（会递归）
		log.Printf("Failed to encode response: %v", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error: Failed to encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// sendError 发送错误响应
func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	response := Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
	h.sendJSON(w, status, response)
}

// HealthCheck 健康检查
// @Summary 健康检查
// @Description 返回应用当前健康状态
// @Tags health
// @Produce json
// @Success 200 {object} handler.Response
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := Response{
		Success: true,
		Data: map[string]interface{}{
			"status":    "ok",
			"timestamp": "server-time",
		},
		Message: "服务运行正常",
	}
	h.sendJSON(w, http.StatusOK, response)
}

// ListTasks 获取任务清单(带超时控制)
// @Summary 获取任务清单
// @Description 返回完整的任务清单（保持存储顺序）和上次重置日期
// @Tags tasks
// @Produce json
// @Success 200 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	// 创建带超时的 Context
	ctx, cancel := context.WithTimeout(r.Context(), ListTimeout)
	defer cancel()

	tasks, err := h.store.Load(ctx)
	if err != nil {
		// 区分超时错误和其他错误
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("ListTasks timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "查询超时，请稍后重试")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("ListTasks canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to list tasks: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "查询失败")
		return
	}

	lastReset, err := h.store.LastResetDate(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("ListTasks timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "查询超时，请稍后重试")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("ListTasks canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to read last reset date: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "查询失败")
		return
	}

	response := Response{
		Success: true,
		Data: map[string]interface{}{
			"tasks":           tasks,
			"total":           len(tasks),
			"last_reset_date": lastReset,
		},
		Message: "获取任务清单成功",
	}
	h.sendJSON(w, http.StatusOK, response)
}

// CreateTask 创建任务(带超时控制)
// @Summary 创建任务
// @Description 新任务追加到清单末尾，初始未完成
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body handler.CreateTaskRequest true "任务内容"
// @Success 201 {object} handler.Response
// @Failure 400 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), CreateTimeout)
	defer cancel()

	defer r.Body.Close()

	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 限制1MB

	// 解析请求体
	var req CreateTaskRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "INVALID_JSON", fmt.Sprintf("JSON解析失败: %v", err))
		return
	}

	// 验证数据（校验不通过时存储不会被触碰）
	task, err := model.NewTask(req.Title, req.Icon)
	if err != nil {
		if errors.Is(err, model.ErrEmptyTitle) {
			h.sendError(w, http.StatusBadRequest, "VALIDATION_ERROR", "标题不能为空")
			return
		}
		if errors.Is(err, model.ErrInvalidIcon) {
			h.sendError(w, http.StatusBadRequest, "VALIDATION_ERROR", "图标编码无效")
			return
		}
		h.sendError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.store.CreateTask(ctx, *task); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("CreateTask timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "创建超时，请稍后重试")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("CreateTask canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to create task: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "创建失败")
		return
	}

	response := Response{
		Success: true,
		Data:    task,
		Message: "创建任务成功",
	}

	h.sendJSON(w, http.StatusCreated, response)
}

// UpdateTask 编辑任务(带超时控制)
// @Summary 编辑任务
// @Description 根据 ID 修改任务的标题或图标，完成状态保持不变
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "任务ID"
// @Param task body handler.UpdateTaskRequest true "任务更新内容"
// @Success 200 {object} handler.Response
// @Failure 400 {object} handler.Response
// @Failure 404 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks/{id} [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), UpdateTimeout)
	defer cancel()

	defer r.Body.Close()

	if r.Method != http.MethodPut {
		h.sendError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.sendError(w, http.StatusBadRequest, "INVALID_ID", "无效的ID")
		return
	}

	var req UpdateTaskRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "INVALID_JSON", fmt.Sprintf("JSON解析失败: %v", err))
		return
	}

	// 验证数据（校验不通过时存储不会被触碰）
	if req.Title != nil {
		if err := model.ValidateTitle(*req.Title); err != nil {
			h.sendError(w, http.StatusBadRequest, "VALIDATION_ERROR", "标题不能为空")
			return
		}
	}
	if req.Icon != nil && !req.Icon.Valid() {
		h.sendError(w, http.StatusBadRequest, "VALIDATION_ERROR", "图标编码无效")
		return
	}

	task, err := h.store.UpdateTask(ctx, id, database.TaskPatch{
		Title: req.Title,
		Icon:  req.Icon,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("UpdateTask timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "编辑超时，请稍后重试")
			return
		}
		if errors.Is(err, database.ErrTaskNotFound) {
			h.sendError(w, http.StatusNotFound, "NOT_FOUND", "任务不存在")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("UpdateTask canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to update task: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "编辑失败")
		return
	}

	response := Response{
		Success: true,
		Data:    task,
		Message: "编辑任务成功",
	}

	h.sendJSON(w, http.StatusOK, response)
}

// ToggleTask 勾选/取消勾选任务(带超时控制)
// @Summary 切换任务完成状态
// @Description 根据 ID 翻转任务的完成标记并立即落盘
// @Tags tasks
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} handler.Response
// @Failure 400 {object} handler.Response
// @Failure 404 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks/{id}/toggle [post]
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ToggleTimeout)
	defer cancel()

	id := r.PathValue("id")
	if id == "" {
		h.sendError(w, http.StatusBadRequest, "INVALID_ID", "无效的ID")
		return
	}

	task, err := h.store.ToggleTask(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("ToggleTask timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "操作超时，请稍后重试")
			return
		}
		if errors.Is(err, database.ErrTaskNotFound) {
			h.sendError(w, http.StatusNotFound, "NOT_FOUND", "任务不存在")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("ToggleTask canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to toggle task: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "操作失败")
		return
	}

	response := Response{
		Success: true,
		Data:    task,
		Message: "切换完成状态成功",
	}

	h.sendJSON(w, http.StatusOK, response)
}

// DeleteTask 删除任务(带超时控制)
// @Summary 删除任务
// @Description 根据 ID 从清单中移除任务，其余任务顺序不变
// @Tags tasks
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} handler.Response
// @Failure 400 {object} handler.Response
// @Failure 404 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks/{id} [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), DeleteTimeout)
	defer cancel()

	defer r.Body.Close()

	if r.Method != http.MethodDelete {
		h.sendError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.sendError(w, http.StatusBadRequest, "INVALID_ID", "无效的ID")
		return
	}

	if err := h.store.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("DeleteTask timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "删除超时，请稍后重试")
			return
		}
		if errors.Is(err, database.ErrTaskNotFound) {
			h.sendError(w, http.StatusNotFound, "NOT_FOUND", "任务不存在")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("DeleteTask canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to delete task: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "删除失败")
		return
	}

	response := Response{
		Success: true,
		Message: "删除任务成功",
	}

	h.sendJSON(w, http.StatusOK, response)
}

// ResetTasks 手动重置清单(带超时控制)
// @Summary 手动重置清单
// @Description 跳过日期检查，清空所有完成标记并把重置日期盖到今天
// @Tags tasks
// @Produce json
// @Success 200 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks/reset [post]
func (h *Handler) ResetTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ResetTimeout)
	defer cancel()

	today := model.Today()

	tasks, err := h.store.ManualReset(ctx, today)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("ResetTasks timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "重置超时，请稍后重试")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("ResetTasks canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to reset tasks: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "重置失败")
		return
	}

	response := Response{
		Success: true,
		Data: map[string]interface{}{
			"tasks":           tasks,
			"last_reset_date": today,
		},
		Message: "清单已重置",
	}

	h.sendJSON(w, http.StatusOK, response)
}

// GetStats 获取统计信息(带超时控制)
// @Summary 获取清单统计
// @Description 返回清单总数、已完成、未完成数量和上次重置日期
// @Tags tasks
// @Produce json
// @Success 200 {object} handler.Response
// @Failure 500 {object} handler.Response
// @Router /tasks/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), StatsTimeout)
	defer cancel()

	stats, err := h.store.GetStats(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Printf("GetStats timeout: %v", err)
			h.sendError(w, http.StatusRequestTimeout, "TIMEOUT", "统计查询超时，请稍后重试")
			return
		}
		if errors.Is(err, context.Canceled) {
			log.Printf("GetStats canceled: %v", err)
			// 客户端取消请求,不需要响应
			return
		}
		log.Printf("Failed to get stats: %v", err)
		h.sendError(w, http.StatusInternalServerError, "DATABASE_ERROR", "获取统计信息失败")
		return
	}

	response := Response{
		Success: true,
		Data:    stats,
		Message: "获取统计信息成功",
	}

	h.sendJSON(w, http.StatusOK, response)
}

// ListIcons 获取固定图标集
// @Summary 获取图标集
// @Description 返回可选的固定图标集，顺序与编码一致
// @Tags icons
// @Produce json
// @Success 200 {object} handler.Response
// @Router /icons [get]
func (h *Handler) ListIcons(w http.ResponseWriter, r *http.Request) {
	icons := model.AllIcons()

	response := Response{
		Success: true,
		Data: map[string]interface{}{
			"icons": icons,
			"total": len(icons),
		},
		Message: "获取图标集成功",
	}

	h.sendJSON(w, http.StatusOK, response)
}
