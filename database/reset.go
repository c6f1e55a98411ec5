package database

import (
	"context"

	"github.com/gehunter2001-alt/ruStore/model"
)

// RunStartupReset 进程启动时的每日重置检查。
// 同一进程内只会真正检查一次：跨过午夜的长会话不会在中途重置，
// 要到下次启动才生效。重复调用是安全的空操作。
func (s *TaskStore) RunStartupReset(ctx context.Context, today string) (applied bool, err error) {
	s.resetOnce.Do(func() {
		applied, err = s.ApplyDailyReset(ctx, today)
	})
	return applied, err
}

// ApplyDailyReset 按每日重置规则处理清单：
// 上次重置日期缺失或不等于 today 时，清空所有完成标记，
// 并在同一事务中写回清单和新日期戳；否则不产生任何写入。
func (s *TaskStore) ApplyDailyReset(ctx context.Context, today string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastReset, err := s.LastResetDate(ctx)
	if err != nil {
		return false, err
	}

	tasks, err := s.Load(ctx)
	if err != nil {
		return false, err
	}

	cleared, applied := model.ApplyDailyReset(tasks, lastReset, today)
	if !applied {
		return false, nil
	}

	if err := s.saveWithResetDate(ctx, cleared, today); err != nil {
		return false, err
	}
	return true, nil
}

// ManualReset 手动重置：跳过日期比较，无条件清空所有完成标记，
// 并把日期戳盖到 today。连续执行多次结果相同。
func (s *TaskStore) ManualReset(ctx context.Context, today string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	cleared := model.ClearDone(tasks)
	if err := s.saveWithResetDate(ctx, cleared, today); err != nil {
		return nil, err
	}
	return cleared, nil
}

// saveWithResetDate 在同一事务中写回任务快照和日期戳（全有或全无）
func (s *TaskStore) saveWithResetDate(ctx context.Context, tasks []model.Task, date string) error {
	raw, err := encodeSnapshot(tasks)
	if err != nil {
		return err
	}

	return s.db.SetMany(ctx, []Pair{
		{Key: KeyTasks, Value: raw},
		{Key: KeyLastResetDate, Value: date},
	})
}
