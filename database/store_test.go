package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gehunter2001-alt/ruStore/model"
)

func newTestStore(t *testing.T) *TaskStore {
	t.Helper()
	return NewTaskStore(newTestDB(t))
}

// rawSnapshot 直接读底层 KV 里的任务快照，用来断言"有没有发生写入"
func rawSnapshot(t *testing.T, s *TaskStore) (string, bool) {
	t.Helper()

	raw, ok, err := s.db.Get(context.Background(), KeyTasks)
	require.NoError(t, err)
	return raw, ok
}

func seedTasks(t *testing.T, s *TaskStore, tasks []model.Task) {
	t.Helper()
	require.NoError(t, s.Save(context.Background(), tasks))
}

func TestLoadFirstRunReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	tasks, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	for _, task := range tasks {
		assert.False(t, task.Done)
	}

	// 读取本身不落盘
	_, ok := rawSnapshot(t, store)
	assert.False(t, ok)
}

func TestLoadCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	corrupt := []string{
		"{not json",                           // 不是合法 JSON
		`{"id":"a"}`,                          // 不是数组
		"null",                                // JSON null 解码到切片不报错，也不是数组
		`[{"title":"没有 id","icon":0}]`,        // 记录缺少 id
		`[{"id":"a","icon":0},{"id":"a"}]`,    // id 重复
		`[{"id":"a","title":"x","icon":99}]`,  // 图标编码超出图标集
		`[{"id":"a","title":"x","icon":-1}]`,  // 图标编码为负
	}

	for _, raw := range corrupt {
		store := newTestStore(t)
		ctx := context.Background()

		require.NoError(t, store.db.Set(ctx, KeyTasks, raw))

		tasks, err := store.Load(ctx)
		require.NoError(t, err, "raw=%s", raw)
		assert.Len(t, tasks, 6, "raw=%s", raw)
	}
}

func TestDecodeSnapshot(t *testing.T) {
	tasks, err := decodeSnapshot(`[]`)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = decodeSnapshot(`[{"id":"a","title":"锁门","icon":1,"done":true}]`)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].ID)
	assert.True(t, tasks[0].Done)

	_, err = decodeSnapshot("{broken")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	_, err = decodeSnapshot("null")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	_, err = decodeSnapshot(`[{"title":"缺 id"}]`)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	_, err = decodeSnapshot(`[{"id":"a"},{"id":"a"}]`)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	_, err = decodeSnapshot(`[{"id":"a","icon":8}]`)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestSaveLoadRoundTripIsStable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron, Done: true},
		{ID: "b", Title: "锁好房门", Icon: model.IconDoor},
	})
	first, ok := rawSnapshot(t, store)
	require.True(t, ok)

	// 读出再写回，快照字节不变
	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, tasks))

	second, ok := rawSnapshot(t, store)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestCreateTaskAppendsToEnd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := model.NewTask("Check stove", model.IconStove)
	require.NoError(t, err)
	require.NoError(t, store.CreateTask(ctx, *task))

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 7)

	// 默认清单在前，新任务在末尾
	last := tasks[6]
	assert.Equal(t, task.ID, last.ID)
	assert.Equal(t, "Check stove", last.Title)
	assert.Equal(t, model.IconStove, last.Icon)
	assert.False(t, last.Done)

	// 创建会把默认清单一并落盘
	_, ok := rawSnapshot(t, store)
	assert.True(t, ok)
}

func TestCreateTaskIDsStayUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		task, err := model.NewTask("重复标题", model.IconKey)
		require.NoError(t, err)
		require.NoError(t, store.CreateTask(ctx, *task))
	}

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 11)

	seen := make(map[string]bool)
	for _, task := range tasks {
		require.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestUpdateTaskPatchesTitleAndIcon(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "t1", Title: "关掉电灯", Icon: model.IconLight, Done: true},
		{ID: "t2", Title: "锁好房门", Icon: model.IconDoor},
	})

	title := "关掉主卧的灯"
	icon := model.IconPlug
	updated, err := store.UpdateTask(ctx, "t1", TaskPatch{Title: &title, Icon: &icon})
	require.NoError(t, err)

	// 编辑只改标题和图标，ID 和完成状态保持原值
	assert.Equal(t, "t1", updated.ID)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, icon, updated.Icon)
	assert.True(t, updated.Done)

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, title, tasks[0].Title)
	assert.True(t, tasks[0].Done)
	assert.Equal(t, "锁好房门", tasks[1].Title)
}

func TestUpdateTaskNilFieldsKeepValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "t1", Title: "关掉电灯", Icon: model.IconLight},
	})

	icon := model.IconKey
	updated, err := store.UpdateTask(ctx, "t1", TaskPatch{Icon: &icon})
	require.NoError(t, err)

	assert.Equal(t, "关掉电灯", updated.Title)
	assert.Equal(t, icon, updated.Icon)
}

func TestUpdateTaskMissingIDIsNoWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "t1", Title: "关掉电灯", Icon: model.IconLight},
	})
	before, _ := rawSnapshot(t, store)

	title := "不应生效"
	_, err := store.UpdateTask(ctx, "ghost", TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	after, _ := rawSnapshot(t, store)
	assert.Equal(t, before, after)
}

func TestToggleTaskPersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "t1", Title: "关掉电灯", Icon: model.IconLight},
	})

	toggled, err := store.ToggleTask(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, tasks[0].Done)

	// 再翻转一次回到未完成
	toggled, err = store.ToggleTask(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, toggled.Done)
}

func TestToggleTaskMissingIDIsNoWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "t1", Title: "关掉电灯", Icon: model.IconLight},
	})
	before, _ := rawSnapshot(t, store)

	_, err := store.ToggleTask(ctx, "ghost")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	after, _ := rawSnapshot(t, store)
	assert.Equal(t, before, after)
}

func TestDeleteTaskKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron},
		{ID: "b", Title: "锁好房门", Icon: model.IconDoor},
		{ID: "c", Title: "关好窗户", Icon: model.IconWindow},
	})

	require.NoError(t, store.DeleteTask(ctx, "b"))

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "c", tasks[1].ID)
}

func TestDeleteAllTasksLeavesEmptyList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron},
		{ID: "b", Title: "锁好房门", Icon: model.IconDoor},
	})

	require.NoError(t, store.DeleteTask(ctx, "a"))
	require.NoError(t, store.DeleteTask(ctx, "b"))

	// 清空是合法状态：快照是 "[]"，不会被当作损坏回退到默认清单
	raw, ok := rawSnapshot(t, store)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)

	tasks, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDeleteTaskMissingIDIsNoWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron},
	})
	before, _ := rawSnapshot(t, store)

	assert.ErrorIs(t, store.DeleteTask(ctx, "ghost"), ErrTaskNotFound)

	after, _ := rawSnapshot(t, store)
	assert.Equal(t, before, after)
}

func TestGetTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron, Done: true},
	})

	task, err := store.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "关掉电熨斗", task.Title)
	assert.True(t, task.Done)

	_, err = store.GetTask(ctx, "ghost")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron, Done: true},
		{ID: "b", Title: "锁好房门", Icon: model.IconDoor},
		{ID: "c", Title: "关好窗户", Icon: model.IconWindow, Done: true},
	})

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Done)
	assert.Equal(t, 1, stats.Pending)
	assert.False(t, stats.AllDone)
	assert.Empty(t, stats.LastResetDate)
}

func TestGetStatsAllDone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedTasks(t, store, []model.Task{
		{ID: "a", Title: "关掉电熨斗", Icon: model.IconIron, Done: true},
	})

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.AllDone)
}
