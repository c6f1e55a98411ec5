package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

func main() {
	baseURL := "http://localhost:7789"

	// 等待服务器启动
	time.Sleep(2 * time.Second)

	fmt.Println("=== 每日清单 API 测试 ===\n")

	// 测试1: 健康检查
	fmt.Println("1. 测试健康检查端点 /health")
	TestEndpoint(baseURL, "GET", "/health", nil)

	// 测试2: 获取任务清单（首次启动应返回六条默认任务）
	fmt.Println("\n2. 测试获取任务清单 /api/tasks")
	TestEndpoint(baseURL, "GET", "/api/tasks", nil)

	// 测试3: 创建新任务
	fmt.Println("\n3. 测试创建新任务")
	taskData := map[string]interface{}{
		"title": "检查燃气灶",
		"icon":  3,
	}
	jsonData, _ := json.Marshal(taskData)
	body := TestEndpoint(baseURL, "POST", "/api/tasks", jsonData)

	// 从创建响应里取出新任务的 ID
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.Data.ID == "" {
		fmt.Println("❌ 无法解析新任务 ID，跳过后续测试")
		return
	}

	// 测试4: 勾选刚创建的任务
	fmt.Println("\n4. 测试勾选任务")
	TestEndpoint(baseURL, "POST", "/api/tasks/"+created.Data.ID+"/toggle", nil)

	// 测试5: 获取统计信息
	fmt.Println("\n5. 测试获取统计信息")
	TestEndpoint(baseURL, "GET", "/api/tasks/stats", nil)

	// 测试6: 获取图标集
	fmt.Println("\n6. 测试获取图标集")
	TestEndpoint(baseURL, "GET", "/api/icons", nil)

	// 测试7: 再次获取任务清单
	fmt.Println("\n7. 再次获取任务清单")
	TestEndpoint(baseURL, "GET", "/api/tasks", nil)

	fmt.Println("\n=== 测试完成 ===")
}

func TestEndpoint(baseURL, method, endpoint string, data []byte) []byte {
	var req *http.Request
	var err error

	url := baseURL + endpoint

	if data != nil {
		req, err = http.NewRequest(method, url, bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, url, nil)
	}

	if err != nil {
		fmt.Printf("❌ 创建请求失败: %v\n", err)
		return nil
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)

	if err != nil {
		fmt.Printf("❌ 请求失败: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	fmt.Printf("✅ %s %s - Status: %d\n", method, endpoint, resp.StatusCode)
	fmt.Printf("Response: %s\n", string(body))
	return body
}
