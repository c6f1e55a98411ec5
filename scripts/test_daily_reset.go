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
	// 验证手动重置流程：勾选几条任务后重置，所有任务应回到未完成
	baseURL := "http://localhost:7789"

	fmt.Println("=== 测试手动重置流程 ===\n")

	// 1. 获取当前清单
	testEndpoint(baseURL, "GET", "/api/tasks", nil)

	// 2. 创建一条任务并勾选
	taskData := map[string]interface{}{
		"title": "测试用任务",
		"icon":  7,
	}
	jsonData, _ := json.Marshal(taskData)
	body := testEndpoint(baseURL, "POST", "/api/tasks", jsonData)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.Data.ID == "" {
		fmt.Println("❌ 无法解析新任务 ID")
		return
	}
	testEndpoint(baseURL, "POST", "/api/tasks/"+created.Data.ID+"/toggle", nil)

	// 3. 重置前的统计（done 应大于 0）
	testEndpoint(baseURL, "GET", "/api/tasks/stats", nil)

	// 4. 手动重置
	testEndpoint(baseURL, "POST", "/api/tasks/reset", nil)

	// 5. 重置后的统计（done 应为 0，last_reset_date 应为今天）
	testEndpoint(baseURL, "GET", "/api/tasks/stats", nil)

	// 6. 再次重置，结果应该和第一次相同
	testEndpoint(baseURL, "POST", "/api/tasks/reset", nil)
	testEndpoint(baseURL, "GET", "/api/tasks/stats", nil)

	fmt.Println("\n=== 测试完成 ===")
}

func testEndpoint(baseURL, method, endpoint string, data []byte) []byte {
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
	if len(body) < 500 {
		fmt.Printf("Response: %s\n", string(body))
	} else {
		fmt.Printf("Response: [Response too large: %d bytes]\n", len(body))
	}
	fmt.Println("---")
	return body
}
