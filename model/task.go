package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyTitle 标题为空（或只有空白字符）
	ErrEmptyTitle = errors.New("任务标题不能为空")
	// ErrInvalidIcon 图标编码不在固定图标集范围内
	ErrInvalidIcon = errors.New("图标编码超出图标集范围")
)

// Task 表示清单中的一条核对项。
// 四个字段就是完整的持久化记录，序列化时字段顺序固定，
// 保证同一列表两次序列化得到完全相同的字节。
type Task struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Icon  IconCode `json:"icon"`
	Done  bool     `json:"done"`
}

// NewTask 创建一条新的核对项（生成新 ID，初始未完成）
func NewTask(title string, icon IconCode) (*Task, error) {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if !icon.Valid() {
		return nil, ErrInvalidIcon
	}
	return &Task{
		ID:    uuid.NewString(),
		Title: title,
		Icon:  icon,
		Done:  false,
	}, nil
}

// Toggle 翻转完成状态
func (t *Task) Toggle() {
	t.Done = !t.Done
}

// ValidateTitle 校验标题非空。创建和编辑入口都要先过这一关，
// 存储层本身不做校验。
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// DefaultTasks 返回内置默认清单：六条常见的出门前核对项。
// 首次启动或快照损坏回退时使用。ID 固定以便排查问题，
// 每次调用返回新的切片，调用方可以放心修改。
func DefaultTasks() []Task {
	return []Task{
		{ID: "default-1", Title: "关掉电熨斗", Icon: IconIron},
		{ID: "default-2", Title: "锁好房门", Icon: IconDoor},
		{ID: "default-3", Title: "关好窗户", Icon: IconWindow},
		{ID: "default-4", Title: "关闭燃气灶", Icon: IconStove},
		{ID: "default-5", Title: "关掉电灯", Icon: IconLight},
		{ID: "default-6", Title: "关紧水龙头", Icon: IconFaucet},
	}
}
