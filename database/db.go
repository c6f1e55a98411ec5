package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// 键值命名空间中仅有的两个键。
// 任务清单整体序列化为一个 JSON 数组存在 KeyTasks 下，
// 上次重置日期以 "2006-01-02" 字符串存在 KeyLastResetDate 下。
const (
	KeyTasks         = "tasks"
	KeyLastResetDate = "last_reset_date"
)

// DB 基于 SQLite 的键值存储。
// 对上层只暴露不透明的字符串键值接口，不理解值的内容。
type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return db, nil
}

// initSchema 初始化键值表
func (db *DB) initSchema() error {
	schema := `
  	CREATE TABLE IF NOT EXISTS kv_store (
  		key TEXT PRIMARY KEY,
  		value TEXT NOT NULL,
  		updated_at DATETIME NOT NULL
  	);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	return nil
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get 读取一个键的值。键不存在返回 ok=false，不算错误
func (db *DB) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE key = ?`, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取键 %s 失败：%w", key, err)
	}

	return value, true, nil
}

// Set 写入一个键的值，整值覆盖。
// 单条 UPSERT 语句天然原子，读方永远不会看到半新半旧的值。
func (db *DB) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := db.conn.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("写入键 %s 失败：%w", key, err)
	}

	return nil
}

// Pair 一次事务中要写入的一个键值对
type Pair struct {
	Key   string
	Value string
}

// SetMany 在同一事务中写入多个键（全有或全无）。
// 重置需要同时落下任务快照和日期戳，靠它保证两者不会只写一半。
// 注意：使用命名返回值 (err error)，让 defer 能访问到错误
func (db *DB) SetMany(ctx context.Context, pairs []Pair) (err error) {
	if len(pairs) == 0 {
		return nil
	}

	// 开启事务（使用 BeginTx 支持 Context）
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败：%w", err)
	}

	// 使用 defer 确保事务被处理
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("事务回滚失败：%v（原始错误：%v）", rbErr, err)
			}
		}
	}()

	now := time.Now().UTC()

	for _, p := range pairs {
		// 这里不能使用 := 接收返回值
		// 因为 err := 会遮蔽外层的命名返回值 err，导致 defer func() 无法正常回滚
		_, err = tx.ExecContext(ctx, `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, p.Key, p.Value, now)

		if err != nil {
			return fmt.Errorf("写入键 %s 失败：%w", p.Key, err)
		}
	}

	// 提交事务
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败：%w", err)
	}

	return nil
}
