package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gehunter2001-alt/ruStore/model"
)

var (
	// ErrCorruptSnapshot 已存储的任务快照无法解析或校验不通过
	ErrCorruptSnapshot = errors.New("任务快照已损坏")
	// ErrTaskNotFound 操作引用的任务 ID 不在当前清单中
	ErrTaskNotFound = errors.New("任务不存在")
)

// TaskStore 任务清单存储，负责快照的读写和各项变更操作。
// 所有变更操作内部互斥串行执行：先全量落盘，再接受下一个动作，
// 所以任何时刻存储里都是一份完整一致的清单。
type TaskStore struct {
	db *DB

	mu        sync.Mutex
	resetOnce sync.Once
}

// NewTaskStore 创建任务清单存储
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// decodeSnapshot 解析任务快照并校验记录完整性。
// 解析失败或校验不通过一律归入 ErrCorruptSnapshot（包装具体原因），
// 调用方据此回退到默认清单。
func decodeSnapshot(raw string) ([]model.Task, error) {
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("%w：%v", ErrCorruptSnapshot, err)
	}
	// JSON null 解码到切片不报错，只会留下 nil，需要单独判掉；
	// 空清单的合法快照是 "[]"，解码后是非 nil 空切片，不受影响
	if tasks == nil {
		return nil, fmt.Errorf("%w：值不是任务数组", ErrCorruptSnapshot)
	}

	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("%w：第 %d 条记录缺少 id", ErrCorruptSnapshot, i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w：id %s 重复", ErrCorruptSnapshot, t.ID)
		}
		seen[t.ID] = true

		if !t.Icon.Valid() {
			return nil, fmt.Errorf("%w：任务 %s 的图标编码 %d 超出图标集", ErrCorruptSnapshot, t.ID, int(t.Icon))
		}
	}

	return tasks, nil
}

// encodeSnapshot 序列化任务清单。
// 编码是确定性的且保持清单顺序，同一清单两次编码字节完全相同。
func encodeSnapshot(tasks []model.Task) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("序列化任务快照失败：%w", err)
	}
	return string(b), nil
}

// Load 读取当前任务清单：
//   - 存储中没有快照（首次启动）→ 返回内置默认清单；
//   - 快照损坏 → 记录日志后同样回退到默认清单。
//
// 读取本身不落盘，默认清单会随下一次成功的变更或重置写回存储。
func (s *TaskStore) Load(ctx context.Context) ([]model.Task, error) {
	raw, ok, err := s.db.Get(ctx, KeyTasks)
	if err != nil {
		return nil, err
	}
	if !ok {
		return model.DefaultTasks(), nil
	}

	tasks, err := decodeSnapshot(raw)
	if err != nil {
		log.Printf("任务快照损坏，回退到默认清单：%v", err)
		return model.DefaultTasks(), nil
	}

	return tasks, nil
}

// Save 全量写回任务清单，覆盖之前的快照
func (s *TaskStore) Save(ctx context.Context, tasks []model.Task) error {
	raw, err := encodeSnapshot(tasks)
	if err != nil {
		return err
	}
	return s.db.Set(ctx, KeyTasks, raw)
}

// LastResetDate 读取上次重置日期戳，从未重置过返回空串
func (s *TaskStore) LastResetDate(ctx context.Context) (string, error) {
	date, _, err := s.db.Get(ctx, KeyLastResetDate)
	return date, err
}

// GetTask 按 ID 查找任务，找不到返回 ErrTaskNotFound
func (s *TaskStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i]
			return &t, nil
		}
	}
	return nil, ErrTaskNotFound
}

// CreateTask 把新任务追加到清单末尾并落盘
func (s *TaskStore) CreateTask(ctx context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		return err
	}

	tasks = append(tasks, task)
	return s.Save(ctx, tasks)
}

// TaskPatch 编辑任务时的可改字段，nil 表示不改动。
// 编辑只能触及标题和图标，ID 与完成状态在编辑中保持原值。
type TaskPatch struct {
	Title *string
	Icon  *model.IconCode
}

// UpdateTask 编辑任务的标题/图标并落盘，返回编辑后的任务。
// 找不到该 ID 时不产生任何写入，返回 ErrTaskNotFound。
func (s *TaskStore) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}

		if patch.Title != nil {
			tasks[i].Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Icon != nil {
			tasks[i].Icon = *patch.Icon
		}

		if err := s.Save(ctx, tasks); err != nil {
			return nil, err
		}

		t := tasks[i]
		return &t, nil
	}

	return nil, ErrTaskNotFound
}

// ToggleTask 翻转任务的完成状态并落盘，返回翻转后的任务。
// 找不到该 ID 时不产生任何写入，返回 ErrTaskNotFound。
func (s *TaskStore) ToggleTask(ctx context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}

		tasks[i].Toggle()

		if err := s.Save(ctx, tasks); err != nil {
			return nil, err
		}

		t := tasks[i]
		return &t, nil
	}

	return nil, ErrTaskNotFound
}

// DeleteTask 从清单中移除该任务并落盘，其余任务相对顺序不变。
// 找不到该 ID 时不产生任何写入，返回 ErrTaskNotFound。
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		return err
	}

	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.Save(ctx, tasks)
		}
	}

	return ErrTaskNotFound
}

// Stats 清单完成情况统计
type Stats struct {
	Total         int    `json:"total"`           // 总数量
	Done          int    `json:"done"`            // 已完成
	Pending       int    `json:"pending"`         // 未完成
	AllDone       bool   `json:"all_done"`        // 是否全部完成
	LastResetDate string `json:"last_reset_date"` // 上次重置日期，从未重置为空
}

// GetStats 统计当前清单完成情况
func (s *TaskStore) GetStats(ctx context.Context) (*Stats, error) {
	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	date, err := s.LastResetDate(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(tasks), LastResetDate: date}
	for _, t := range tasks {
		if t.Done {
			stats.Done++
		} else {
			stats.Pending++
		}
	}
	stats.AllDone = stats.Total > 0 && stats.Done == stats.Total

	return stats, nil
}
