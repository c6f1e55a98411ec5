package model

import "time"

// DateLayout 日期戳格式：本地日历日，不含时间和时区
const DateLayout = "2006-01-02"

// Today 返回本地时区的当天日期戳
func Today() string {
	return time.Now().Format(DateLayout)
}

// ResetDue 判断是否到了每日重置的时机：
// 从未重置过（日期戳为空），或上次重置不在今天。
// 只做精确的字符串比较，跨时区等边界一律按本地日历日处理。
func ResetDue(lastResetDate, today string) bool {
	if lastResetDate == "" {
		return true
	}
	return lastResetDate != today
}

// ApplyDailyReset 应用每日重置规则。
// 需要重置时返回一份所有任务都未完成的新列表和 true；
// 不需要时原样返回传入的列表和 false，调用方此时不应产生任何写入。
func ApplyDailyReset(tasks []Task, lastResetDate, today string) ([]Task, bool) {
	if !ResetDue(lastResetDate, today) {
		return tasks, false
	}
	return ClearDone(tasks), true
}

// ClearDone 返回一份所有任务 done=false 的拷贝。
// 任务顺序、ID、标题、图标都保持不变，原列表不受影响。
func ClearDone(tasks []Task) []Task {
	cleared := make([]Task, len(tasks))
	copy(cleared, tasks)
	for i := range cleared {
		cleared[i].Done = false
	}
	return cleared
}
